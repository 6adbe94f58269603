package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	ImageURLs   []string
}

// Apply inserts a demo catalog for manual testing. Idempotent: products are
// keyed by name and only inserted when missing.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Name:        "Classic Crew Tee",
			Description: "Soft midweight cotton crew neck",
			PriceCents:  1999,
			ImageURLs:   []string{"https://img.tshirtshop.test/classic-crew.jpg"},
		},
		{
			Name:        "Vintage Logo Tee",
			Description: "Washed-out print on heavyweight cotton",
			PriceCents:  2499,
			ImageURLs:   []string{"https://img.tshirtshop.test/vintage-logo.jpg", "https://img.tshirtshop.test/vintage-logo-back.jpg"},
		},
		{
			Name:        "Pocket Tee",
			Description: "Chest pocket, relaxed fit",
			PriceCents:  2299,
			ImageURLs:   []string{"https://img.tshirtshop.test/pocket.jpg"},
		},
		{
			Name:        "Premium Heavyweight Tee",
			Description: "Boxy cut, 240gsm organic cotton",
			PriceCents:  3499,
			ImageURLs:   []string{"https://img.tshirtshop.test/heavyweight.jpg"},
		},
	}

	for _, p := range products {
		if err := ensureProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("ensure product %q: %w", p.Name, err)
		}
	}
	return nil
}

func ensureProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1`, p.Name).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err := pool.QueryRow(ctx, `
INSERT INTO products (name, description, price_cents)
VALUES ($1, $2, $3)
RETURNING id::text
`, p.Name, p.Description, p.PriceCents).Scan(&id); err != nil {
		return err
	}

	for i, url := range p.ImageURLs {
		if _, err := pool.Exec(ctx, `
INSERT INTO product_images (product_id, url, is_primary)
VALUES ($1, $2, $3)
`, id, url, i == 0); err != nil {
			return err
		}
	}
	return nil
}
