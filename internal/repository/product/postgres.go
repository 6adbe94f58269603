package product

import (
	"context"
	"errors"
	"io"
	"log"

	"tshirtshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(description, ''), price_cents, created_at, updated_at
FROM products
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}

	for i := range result {
		images, err := r.imagesFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Images = images
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(description, ''), price_cents, created_at, updated_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrProductNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	images, err := r.imagesFor(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO products (name, description, price_cents)
VALUES ($1, NULLIF($2, ''), $3)
RETURNING id::text, created_at, updated_at
`
	var p domain.Product
	p.Name = in.Name
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	if err := tx.QueryRow(ctx, q, in.Name, in.Description, in.PriceCents).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", in.Name, err)
		return nil, err
	}

	for i, url := range in.ImageURLs {
		var img domain.ProductImage
		img.ProductID = p.ID
		img.URL = url
		img.IsPrimary = i == 0
		if err := tx.QueryRow(ctx, `
INSERT INTO product_images (product_id, url, is_primary)
VALUES ($1, $2, $3)
RETURNING id::text
`, p.ID, url, img.IsPrimary).Scan(&img.ID); err != nil {
			return nil, err
		}
		p.Images = append(p.Images, img)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", p.ID, p.Name)
	return &p, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = COALESCE($2, name),
    description = COALESCE($3, description),
    price_cents = COALESCE($4, price_cents),
    updated_at = now()
WHERE id = $1
RETURNING id::text
`
	var updated string
	err := r.pool.QueryRow(ctx, q, id, in.Name, in.Description, in.PriceCents).Scan(&updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", id, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) imagesFor(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	const q = `
SELECT id::text, product_id::text, url, is_primary
FROM product_images
WHERE product_id = $1
ORDER BY is_primary DESC, id
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
