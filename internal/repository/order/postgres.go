package order

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

const orderColumns = `
id::text, user_id, status,
shipping_full_name, shipping_line1, shipping_line2, shipping_city,
shipping_state_or_province, shipping_postal_code, shipping_country, shipping_phone,
subtotal_cents, shipping_cents, total_cents, payment_ref, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (
    id, user_id, status,
    shipping_full_name, shipping_line1, shipping_line2, shipping_city,
    shipping_state_or_province, shipping_postal_code, shipping_country, shipping_phone,
    subtotal_cents, shipping_cents, total_cents
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	if _, err := tx.Exec(ctx, q,
		in.ID,
		in.UserID,
		string(domain.StatusPending),
		in.Shipping.FullName,
		in.Shipping.Line1,
		in.Shipping.Line2,
		in.Shipping.City,
		in.Shipping.StateOrProvince,
		in.Shipping.PostalCode,
		in.Shipping.Country,
		in.Shipping.Phone,
		in.SubtotalCents,
		in.ShippingCents,
		in.TotalCents,
	); err != nil {
		r.logger.Printf("order repo: create id=%s error=%v", in.ID, err)
		return nil, err
	}

	for _, line := range in.Lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (id, order_id, product_id, quantity, price_cents_at_order, product_name_at_order)
VALUES ($1, $2, $3, $4, $5, $6)
`, line.ID, in.ID, line.ProductID, line.Quantity, line.PriceCentsAtOrder, line.ProductNameAtOrder); err != nil {
			r.logger.Printf("order repo: create line order_id=%s product_id=%s error=%v", in.ID, line.ProductID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s lines=%d total_cents=%d", in.ID, len(in.Lines), in.TotalCents)
	return r.GetByID(ctx, in.ID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	ord, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("order repo: get id=%s not found", id)
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	lines, err := r.linesFor(ctx, ord.ID)
	if err != nil {
		return nil, err
	}
	ord.Lines = lines
	return ord, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY created_at DESC
`
	return r.list(ctx, q)
}

func (r *postgresRepo) UpdateStatusLocked(ctx context.Context, orderID string, decide TransitionFunc) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	next, paymentRef, err := decide(domain.OrderStatus(current))
	if err != nil {
		return nil, err
	}

	if string(next) != current || paymentRef != nil {
		if _, err := tx.Exec(ctx, `
UPDATE orders
SET status = $2, payment_ref = COALESCE($3, payment_ref), updated_at = now()
WHERE id = $1
`, orderID, string(next), paymentRef); err != nil {
			r.logger.Printf("order repo: transition id=%s %s->%s error=%v", orderID, current, next, err)
			return nil, err
		}
		r.logger.Printf("order repo: transition id=%s %s->%s", orderID, current, next)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := r.linesFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (r *postgresRepo) linesFor(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, quantity, price_cents_at_order, product_name_at_order
FROM order_lines
WHERE order_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.PriceCentsAtOrder, &line.ProductNameAtOrder); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var ord domain.Order
	var status string
	if err := row.Scan(
		&ord.ID,
		&ord.UserID,
		&status,
		&ord.Shipping.FullName,
		&ord.Shipping.Line1,
		&ord.Shipping.Line2,
		&ord.Shipping.City,
		&ord.Shipping.StateOrProvince,
		&ord.Shipping.PostalCode,
		&ord.Shipping.Country,
		&ord.Shipping.Phone,
		&ord.SubtotalCents,
		&ord.ShippingCents,
		&ord.TotalCents,
		&ord.PaymentRef,
		&ord.CreatedAt,
		&ord.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ord.Status = domain.OrderStatus(status)
	return &ord, nil
}
