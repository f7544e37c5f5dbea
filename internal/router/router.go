package router

import (
	"net/http"

	"github.com/antonminaichev/storefront/internal/address"
	"github.com/antonminaichev/storefront/internal/cart"
	"github.com/antonminaichev/storefront/internal/logger"
	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/order"
	"github.com/antonminaichev/storefront/internal/product"
	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/user"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	User    *user.Handler
	Product *product.Handler
	Cart    *cart.Handler
	Order   *order.Handler
	Address *address.Handler
}

type Config struct {
	JWTSecret      []byte
	Users          middleware.UserFinder
	AllowedOrigins []string
}

func NewRouter(h Handlers, cfg Config) chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.GzipHandler)

	auth := middleware.JWTMiddleware(cfg.JWTSecret, cfg.Users)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.User.Register)
			r.Post("/login", h.User.Login)
			r.Post("/logout", h.User.Logout)
			r.With(auth).Get("/profile", h.User.Profile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.ListProducts)
			r.Group(func(r chi.Router) {
				r.Use(auth, middleware.AdminOnly)
				r.Get("/export", h.Product.ExportProducts)
				r.Post("/", h.Product.CreateProduct)
				r.Put("/{id}", h.Product.UpdateProduct)
				r.Delete("/{id}", h.Product.DeleteProduct)
			})
			r.Get("/{id}", h.Product.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.Cart.GetCart)
			r.Get("/summary", h.Cart.Summary)
			r.Post("/add", h.Cart.AddToCart)
			r.Put("/update", h.Cart.UpdateCartItem)
			r.Delete("/remove/{productId}", h.Cart.RemoveFromCart)
			r.Delete("/clear", h.Cart.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.Order.ListOrders)
			r.Post("/", h.Order.CreateOrder)
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/all", h.Order.ListAllOrders)
				r.Put("/{id}/status", h.Order.UpdateOrderStatus)
				r.Put("/{id}/tracking", h.Order.UpdateDeliveryTracking)
			})
			r.Get("/{id}", h.Order.GetOrder)
			r.Put("/{id}/cancel", h.Order.CancelOrder)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.Address.ListAddresses)
			r.Post("/", h.Address.CreateAddress)
			r.Put("/{id}", h.Address.UpdateAddress)
			r.Delete("/{id}", h.Address.DeleteAddress)
			r.Put("/{id}/default", h.Address.SetDefaultAddress)
		})
	})

	return r
}
