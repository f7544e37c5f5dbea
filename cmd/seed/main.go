// Command seed fills an empty catalog with sample products and can promote
// an account to admin.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/antonminaichev/storefront/internal/logger"
	"github.com/antonminaichev/storefront/internal/product"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/storage/mongo"
	"github.com/antonminaichev/storefront/internal/storage/postgres"
	"github.com/antonminaichev/storefront/internal/types/user"
	usersvc "github.com/antonminaichev/storefront/internal/user"
	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type config struct {
	DatabaseURI  string `env:"DATABASE_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"storefront"`
}

func main() {
	_ = godotenv.Load()
	_ = logger.Initialize("INFO")
	if err := run(os.Args[1:]); err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
}

func run(args []string) error {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		return err
	}
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "Database connection string")
	adminEmail := fs.String("admin", "", "Email of the account to promote to admin")
	adminPassword := fs.String("password", "", "Password used when the admin account does not exist yet")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store storage.Storage
	var err error
	if strings.HasPrefix(cfg.DatabaseURI, "mongodb") {
		store, err = mongo.New(ctx, cfg.DatabaseURI, cfg.DatabaseName)
	} else {
		store, err = postgres.NewPostgresStorage(ctx, cfg.DatabaseURI)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := seedCatalog(ctx, product.NewService(store))
	if err != nil {
		return err
	}
	logger.Log.Info("catalog seeded", zap.Int("inserted", n))

	if *adminEmail == "" {
		return nil
	}
	return promote(ctx, store, *adminEmail, *adminPassword)
}

// seedCatalog inserts the sample products only into an empty catalog.
func seedCatalog(ctx context.Context, svc *product.Service) (int, error) {
	existing, err := svc.List(ctx, "")
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, p := range sampleProducts {
		if _, err := svc.Create(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(sampleProducts), nil
}

func promote(ctx context.Context, store storage.Storage, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := store.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		if password == "" {
			return errors.New("account does not exist; pass -password to create it")
		}
		u, err = usersvc.NewService(store, nil, 0).Register(ctx, "Admin User", email, password)
	}
	if err != nil {
		return err
	}
	if err := store.SetUserRole(ctx, u.ID, user.RoleAdmin); err != nil {
		return err
	}
	logger.Log.Info("admin ready", zap.String("email", email))
	return nil
}
