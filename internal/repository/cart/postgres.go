package cart

import (
	"context"
	"errors"

	"tshirtshop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, userID *string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
RETURNING ` + cartColumns + `
`
	row := r.pool.QueryRow(ctx, q, userID)
	cart, err := scanCart(row)
	if err != nil {
		// The partial unique index on user_id rejects a second cart for the
		// same user; the winner's cart is the one to use.
		if userID != nil && isUniqueViolation(err) {
			return r.GetByUser(ctx, *userID)
		}
		return nil, err
	}
	cart.Lines = []domain.CartLine{}
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`
	return r.fetchCart(ctx, q, id)
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1
`
	return r.fetchCart(ctx, q, userID)
}

func (r *postgresRepo) UpsertLine(ctx context.Context, cartID, productID string, delta int) error {
	const q = `
INSERT INTO cart_lines (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity,
    updated_at = now()
`
	if _, err := r.pool.Exec(ctx, q, cartID, productID, delta); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	const q = `
UPDATE cart_lines
SET quantity = $3, updated_at = now()
WHERE cart_id = $1 AND product_id = $2
`
	cmd, err := r.pool.Exec(ctx, q, cartID, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) DeleteLine(ctx context.Context, cartID, productID string) error {
	const q = `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`
	cmd, err := r.pool.Exec(ctx, q, cartID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) AdoptGuest(ctx context.Context, cartID, userID string) error {
	const q = `
UPDATE carts
SET user_id = $2, updated_at = now()
WHERE id = $1 AND user_id IS NULL
`
	cmd, err := r.pool.Exec(ctx, q, cartID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

func (r *postgresRepo) MergeInto(ctx context.Context, userCartID, guestCartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock the guest cart row so two concurrent merges cannot both fold its
	// lines in. A missing row means the other merge already won.
	var guestID string
	err = tx.QueryRow(ctx, `SELECT id::text FROM carts WHERE id = $1 AND user_id IS NULL FOR UPDATE`, guestCartID).Scan(&guestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrCartNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, quantity)
SELECT $1, product_id, quantity
FROM cart_lines
WHERE cart_id = $2
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity,
    updated_at = now()
`, userCartID, guestCartID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, guestCartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, userCartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...interface{}) (*domain.Cart, error) {
	row := r.pool.QueryRow(ctx, cartQuery, args...)
	cart, err := scanCart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT cl.id::text, cl.cart_id::text, cl.product_id::text, cl.quantity, p.name, p.price_cents,
       (SELECT pi.url FROM product_images pi
        WHERE pi.product_id = p.id
        ORDER BY pi.is_primary DESC, pi.id
        LIMIT 1)
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY cl.created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.Quantity,
			&line.ProductName,
			&line.PriceCents,
			&line.ImageURL,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *postgresRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
