package cart

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the cart storage layer. carts has a unique
// user_id; cart_items has a unique (cart_id, product_id, size, color) so the
// merge-by-identity rule holds at the schema level.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	c := &Cart{UserID: userID, Items: []*Item{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, image, price, quantity, size, color
		FROM cart_items WHERE cart_id=$1 ORDER BY created_at ASC`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Image,
			&item.Price, &item.Quantity, &item.Size, &item.Color); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	return c, rows.Err()
}

func (r *postgresRepo) GetItem(ctx context.Context, userID, productID uuid.UUID, size, color string) (*Item, error) {
	item := &Item{}
	err := r.db.QueryRowContext(ctx, `
		SELECT ci.id, ci.product_id, ci.name, ci.image, ci.price, ci.quantity, ci.size, ci.color
		FROM cart_items ci
		JOIN carts c ON ci.cart_id = c.id
		WHERE c.user_id=$1 AND ci.product_id=$2 AND ci.size=$3 AND ci.color=$4`,
		userID, productID, size, color).
		Scan(&item.ID, &item.ProductID, &item.Name, &item.Image,
			&item.Price, &item.Quantity, &item.Size, &item.Color)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, userID uuid.UUID, item *Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, uuid.New(), userID)
	if err != nil {
		return fmt.Errorf("create cart: %w", err)
	}

	// Row lock serializes concurrent mutations of the same user's cart.
	var cartID uuid.UUID
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE user_id=$1 FOR UPDATE`, userID).Scan(&cartID); err != nil {
		return fmt.Errorf("lock cart: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, name, image, price, quantity, size, color)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (cart_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		item.ID, cartID, item.ProductID, item.Name, item.Image,
		item.Price, item.Quantity, item.Size, item.Color)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE carts SET updated_at=NOW() WHERE id=$1`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// IncrementQuantity relies on the conditional update for correctness under
// concurrency: two racing increments each bump the row by exactly one, and
// the WHERE clause stops the row at the ceiling no matter how the writes
// interleave.
func (r *postgresRepo) IncrementQuantity(ctx context.Context, itemID uuid.UUID, max int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = quantity + 1 WHERE id=$1 AND quantity < $2`,
		itemID, max)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.boundError(ctx, itemID, ErrMaxQuantity)
	}
	return nil
}

func (r *postgresRepo) DecrementQuantity(ctx context.Context, itemID uuid.UUID, min int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = quantity - 1 WHERE id=$1 AND quantity > $2`,
		itemID, min)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.boundError(ctx, itemID, ErrMinimumReached)
	}
	return nil
}

// boundError tells apart "line vanished" from "line hit the bound" after a
// conditional update touched zero rows.
func (r *postgresRepo) boundError(ctx context.Context, itemID uuid.UUID, atBound error) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cart_items WHERE id=$1)`, itemID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrItemNotFound
	}
	return atBound
}

func (r *postgresRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var qty int
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM cart_items WHERE id=$1 RETURNING quantity`, itemID).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}
