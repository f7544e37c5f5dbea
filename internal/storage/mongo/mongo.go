// Package mongo is the default document store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/address"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	client    *mongo.Client
	users     *mongo.Collection
	products  *mongo.Collection
	carts     *mongo.Collection
	orders    *mongo.Collection
	addresses *mongo.Collection
}

var _ storage.Storage = (*Store)(nil)

func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	s := &Store{
		client:    client,
		users:     db.Collection("users"),
		products:  db.Collection("products"),
		carts:     db.Collection("carts"),
		orders:    db.Collection("orders"),
		addresses: db.Collection("addresses"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.carts, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.orders, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.addresses, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}}}},
		{s.products, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			return fmt.Errorf("create index on %s: %w", ix.coll.Name(), err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// translate maps driver errors onto the storage sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, c *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := c.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func replaceByID(ctx context.Context, c *mongo.Collection, id string, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// Users

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	_, err := s.users.InsertOne(ctx, u)
	return translate(err)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return findOne[user.User](ctx, s.users, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	return findOne[user.User](ctx, s.users, bson.M{"_id": id})
}

func (s *Store) SetUserRole(ctx context.Context, id string, role user.Role) error {
	res, err := s.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementOrderStats(ctx context.Context, userID string, total float64) error {
	res, err := s.users.UpdateByID(ctx, userID, bson.M{
		"$inc": bson.M{"orderCount": 1, "totalSpent": total},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Products

func (s *Store) ListProducts(ctx context.Context, category string) ([]product.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	return findAll[product.Product](ctx, s.products, filter, newestFirst)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return findOne[product.Product](ctx, s.products, bson.M{"_id": id})
}

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	_, err := s.products.InsertOne(ctx, p)
	return translate(err)
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	return replaceByID(ctx, s.products, p.ID, p)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Carts

func (s *Store) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	return findOne[cart.Cart](ctx, s.carts, bson.M{"user": userID})
}

func (s *Store) SaveCart(ctx context.Context, c *cart.Cart) error {
	_, err := s.carts.ReplaceOne(ctx, bson.M{"user": c.UserID}, c, options.Replace().SetUpsert(true))
	return translate(err)
}

// ClearCart empties an existing cart and does nothing when there is none.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.carts.UpdateOne(ctx, bson.M{"user": userID}, bson.M{
		"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now().UTC()},
	})
	return err
}

// Orders

func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return findOne[order.Order](ctx, s.orders, bson.M{"_id": id})
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	_, err := s.orders.InsertOne(ctx, o)
	return translate(err)
}

func (s *Store) UpdateOrder(ctx context.Context, o *order.Order) error {
	return replaceByID(ctx, s.orders, o.ID, o)
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return findAll[order.Order](ctx, s.orders, bson.M{"user": userID}, newestFirst)
}

func (s *Store) ListOrders(ctx context.Context) ([]order.Order, error) {
	return findAll[order.Order](ctx, s.orders, bson.M{}, newestFirst)
}

// Addresses

func (s *Store) ListAddresses(ctx context.Context, userID string) ([]address.Address, error) {
	return findAll[address.Address](ctx, s.addresses, bson.M{"user": userID}, newestFirst)
}

func (s *Store) GetAddress(ctx context.Context, id, userID string) (*address.Address, error) {
	return findOne[address.Address](ctx, s.addresses, bson.M{"_id": id, "user": userID})
}

func (s *Store) CreateAddress(ctx context.Context, a *address.Address) error {
	_, err := s.addresses.InsertOne(ctx, a)
	return translate(err)
}

func (s *Store) UpdateAddress(ctx context.Context, a *address.Address) error {
	res, err := s.addresses.ReplaceOne(ctx, bson.M{"_id": a.ID, "user": a.UserID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAddress(ctx context.Context, id, userID string) error {
	res, err := s.addresses.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) ClearDefaultAddress(ctx context.Context, userID string) error {
	_, err := s.addresses.UpdateMany(ctx, bson.M{"user": userID, "isDefault": true}, bson.M{
		"$set": bson.M{"isDefault": false},
	})
	return err
}
