package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the ledger's storage layer. All stock
// mutations are conditional row updates, so two concurrent reservations can
// never both claim the last unit.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int, size, color string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1`, qty, productID)
	if err != nil {
		return fmt.Errorf("reserve product stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}

	if size != "" && color != "" {
		res, err = tx.ExecContext(ctx, `
			UPDATE product_sizes ps SET stock = ps.stock - $1
			FROM product_colors pc
			WHERE ps.color_id = pc.id AND pc.product_id = $2
			  AND pc.color_name = $3 AND ps.label = $4 AND ps.stock >= $1`,
			qty, productID, color, size)
		if err != nil {
			return fmt.Errorf("reserve variant stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			exists, err := r.variantExists(ctx, tx, productID, size, color)
			if err != nil {
				return err
			}
			if exists {
				return ErrInsufficientStock
			}
			// No matching variant: legacy data where variant metadata lags
			// behind cart input. Only the product-level stock moves.
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) Release(ctx context.Context, productID uuid.UUID, qty int, size, color string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2`, qty, productID)
	if err != nil {
		return fmt.Errorf("release product stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if size != "" && color != "" {
		// Zero rows here means the variant does not exist; that mirrors the
		// permissive fallback on the reserve side.
		_, err = tx.ExecContext(ctx, `
			UPDATE product_sizes ps SET stock = ps.stock + $1
			FROM product_colors pc
			WHERE ps.color_id = pc.id AND pc.product_id = $2
			  AND pc.color_name = $3 AND ps.label = $4`,
			qty, productID, color, size)
		if err != nil {
			return fmt.Errorf("release variant stock: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) Stock(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := r.db.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id=$1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return stock, err
}

func (r *postgresRepo) SetStock(ctx context.Context, productID uuid.UUID, stock int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock=$1, updated_at=NOW() WHERE id=$2`, stock, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) variantExists(ctx context.Context, tx *sql.Tx, productID uuid.UUID, size, color string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM product_sizes ps
			JOIN product_colors pc ON ps.color_id = pc.id
			WHERE pc.product_id = $1 AND pc.color_name = $2 AND ps.label = $3)`,
		productID, color, size).Scan(&exists)
	return exists, err
}
