package wishlist

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the wishlist storage layer. wishlist_items
// has a unique (user_id, product_id, size, color) so adds are idempotent.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*Wishlist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, image, price, size, color, added_at
		FROM wishlist_items WHERE user_id=$1 ORDER BY added_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	w := &Wishlist{UserID: userID, Items: []*Item{}}
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Name, &item.Image,
			&item.Price, &item.Size, &item.Color, &item.AddedAt); err != nil {
			return nil, err
		}
		w.Items = append(w.Items, item)
	}
	return w, rows.Err()
}

func (r *postgresRepo) AddItem(ctx context.Context, userID uuid.UUID, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id, name, image, price, size, color)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, product_id, size, color) DO NOTHING`,
		item.ID, userID, item.ProductID, item.Name, item.Image,
		item.Price, item.Size, item.Color)
	return err
}

func (r *postgresRepo) FindItem(ctx context.Context, userID, productID uuid.UUID, size, color string) (*Item, error) {
	query := `
		SELECT id, product_id, name, image, price, size, color, added_at
		FROM wishlist_items WHERE user_id=$1 AND product_id=$2`
	args := []interface{}{userID, productID}
	if size != "" && color != "" {
		query += ` AND size=$3 AND color=$4`
		args = append(args, size, color)
	}
	query += ` ORDER BY added_at ASC LIMIT 1`

	item := &Item{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&item.ID, &item.ProductID, &item.Name, &item.Image,
			&item.Price, &item.Size, &item.Color, &item.AddedAt)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID uuid.UUID, size, color string) error {
	query := `DELETE FROM wishlist_items WHERE user_id=$1 AND product_id=$2`
	args := []interface{}{userID, productID}
	switch {
	case size != "" && color != "":
		query += ` AND size=$3 AND color=$4`
		args = append(args, size, color)
	case size != "":
		query += ` AND size=$3`
		args = append(args, size)
	case color != "":
		query += ` AND color=$3`
		args = append(args, color)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveByID(ctx context.Context, itemID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE id=$1`, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE user_id=$1`, userID)
	return err
}
