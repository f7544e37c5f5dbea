// Package postgres stores users relationally and the other entities as
// JSONB documents next to the columns they are queried by.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/address"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

type PostgresStorage struct {
	db *sql.DB
}

var _ storage.Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	// проверяем, что БД жива
	if err := s.db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            order_count INT NOT NULL DEFAULT 0,
            total_spent DOUBLE PRECISION NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            category TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            doc JSONB NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS carts (
            user_id TEXT PRIMARY KEY,
            doc JSONB NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            doc JSONB NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS orders_user_idx ON orders (user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS addresses (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            doc JSONB NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS addresses_user_idx ON addresses (user_id)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// affected turns a zero row count into ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func getDoc[T any](ctx context.Context, db *sql.DB, q string, args ...any) (*T, error) {
	var raw []byte
	if err := db.QueryRowContext(ctx, q, args...).Scan(&raw); err != nil {
		return nil, translate(err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &v, nil
}

func listDocs[T any](ctx context.Context, db *sql.DB, q string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

// Users

func (s *PostgresStorage) CreateUser(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (id,name,email,password_hash,role,order_count,total_spent,created_at,updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.OrderCount, u.TotalSpent, u.CreatedAt, u.UpdatedAt)
	return translate(err)
}

const userColumns = `id,name,email,password_hash,role,order_count,total_spent,created_at,updated_at`

func (s *PostgresStorage) findUser(ctx context.Context, where string, arg any) (*user.User, error) {
	u := &user.User{}
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + where + `=$1`
	if err := s.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.OrderCount, &u.TotalSpent, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *PostgresStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findUser(ctx, "email", email)
}

func (s *PostgresStorage) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	return s.findUser(ctx, "id", id)
}

func (s *PostgresStorage) SetUserRole(ctx context.Context, id string, role user.Role) error {
	return affected(s.db.ExecContext(ctx,
		`UPDATE users SET role=$1, updated_at=$2 WHERE id=$3`, role, time.Now().UTC(), id))
}

func (s *PostgresStorage) IncrementOrderStats(ctx context.Context, userID string, total float64) error {
	return affected(s.db.ExecContext(ctx, `
        UPDATE users
        SET order_count = order_count + 1,
            total_spent = total_spent + $1,
            updated_at = $2
        WHERE id = $3`, total, time.Now().UTC(), userID))
}

// Products

func (s *PostgresStorage) ListProducts(ctx context.Context, category string) ([]product.Product, error) {
	if category == "" {
		return listDocs[product.Product](ctx, s.db, `SELECT doc FROM products ORDER BY created_at DESC`)
	}
	return listDocs[product.Product](ctx, s.db,
		`SELECT doc FROM products WHERE category=$1 ORDER BY created_at DESC`, category)
}

func (s *PostgresStorage) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return getDoc[product.Product](ctx, s.db, `SELECT doc FROM products WHERE id=$1`, id)
}

func (s *PostgresStorage) CreateProduct(ctx context.Context, p *product.Product) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO products (id,category,created_at,doc) VALUES ($1,$2,$3,$4)`,
		p.ID, p.Category, p.CreatedAt, doc)
	return translate(err)
}

func (s *PostgresStorage) UpdateProduct(ctx context.Context, p *product.Product) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	return affected(s.db.ExecContext(ctx,
		`UPDATE products SET category=$1, doc=$2 WHERE id=$3`, p.Category, doc, p.ID))
}

func (s *PostgresStorage) DeleteProduct(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id))
}

// Carts

func (s *PostgresStorage) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	return getDoc[cart.Cart](ctx, s.db, `SELECT doc FROM carts WHERE user_id=$1`, userID)
}

func (s *PostgresStorage) SaveCart(ctx context.Context, c *cart.Cart) error {
	doc, err := encode(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO carts (user_id, doc) VALUES ($1,$2)
        ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc`, c.UserID, doc)
	return err
}

// ClearCart empties an existing cart and does nothing when there is none.
func (s *PostgresStorage) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE carts
        SET doc = jsonb_set(jsonb_set(doc, '{items}', '[]'::jsonb), '{updatedAt}', to_jsonb($1::text))
        WHERE user_id = $2`, time.Now().UTC().Format(time.RFC3339Nano), userID)
	return err
}

// Orders

func (s *PostgresStorage) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return getDoc[order.Order](ctx, s.db, `SELECT doc FROM orders WHERE id=$1`, id)
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, o *order.Order) error {
	doc, err := encode(o)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (id,user_id,created_at,doc) VALUES ($1,$2,$3,$4)`,
		o.ID, o.UserID, o.CreatedAt, doc)
	return translate(err)
}

func (s *PostgresStorage) UpdateOrder(ctx context.Context, o *order.Order) error {
	doc, err := encode(o)
	if err != nil {
		return err
	}
	return affected(s.db.ExecContext(ctx, `UPDATE orders SET doc=$1 WHERE id=$2`, doc, o.ID))
}

func (s *PostgresStorage) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return listDocs[order.Order](ctx, s.db,
		`SELECT doc FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStorage) ListOrders(ctx context.Context) ([]order.Order, error) {
	return listDocs[order.Order](ctx, s.db, `SELECT doc FROM orders ORDER BY created_at DESC`)
}

// Addresses

func (s *PostgresStorage) ListAddresses(ctx context.Context, userID string) ([]address.Address, error) {
	return listDocs[address.Address](ctx, s.db,
		`SELECT doc FROM addresses WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStorage) GetAddress(ctx context.Context, id, userID string) (*address.Address, error) {
	return getDoc[address.Address](ctx, s.db,
		`SELECT doc FROM addresses WHERE id=$1 AND user_id=$2`, id, userID)
}

func (s *PostgresStorage) CreateAddress(ctx context.Context, a *address.Address) error {
	doc, err := encode(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO addresses (id,user_id,created_at,doc) VALUES ($1,$2,$3,$4)`,
		a.ID, a.UserID, a.CreatedAt, doc)
	return translate(err)
}

func (s *PostgresStorage) UpdateAddress(ctx context.Context, a *address.Address) error {
	doc, err := encode(a)
	if err != nil {
		return err
	}
	return affected(s.db.ExecContext(ctx,
		`UPDATE addresses SET doc=$1 WHERE id=$2 AND user_id=$3`, doc, a.ID, a.UserID))
}

func (s *PostgresStorage) DeleteAddress(ctx context.Context, id, userID string) error {
	return affected(s.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id=$1 AND user_id=$2`, id, userID))
}

func (s *PostgresStorage) ClearDefaultAddress(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
        UPDATE addresses
        SET doc = jsonb_set(doc, '{isDefault}', 'false'::jsonb)
        WHERE user_id = $1 AND (doc->>'isDefault')::boolean`, userID)
	return err
}
