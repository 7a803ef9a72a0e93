package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// Create inserts the order and all its items inside a single transaction.
func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, user_id, status, payment_method, payment_id, payment_status,
		   ship_address, ship_city, ship_country, ship_phone,
		   item_price, tax, shipping_charges, total_amount, notes, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		o.ID, o.UserID, o.Status, o.PaymentMethod, o.Payment.ID, o.Payment.Status,
		o.Shipping.Address, o.Shipping.City, o.Shipping.Country, o.Shipping.Phone,
		o.ItemPrice, o.Tax, o.ShippingCharges, o.TotalAmount, o.Notes, o.PaidAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
			  (id, order_id, product_id, name, image, price, quantity, size, color)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, o.ID, item.ProductID, item.Name, item.Image,
			item.Price, item.Quantity, item.Size, item.Color)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+` WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return r.queryOrders(ctx, selectOrder+` WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]*Order, error) {
	return r.queryOrders(ctx, selectOrder + ` ORDER BY created_at DESC`)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status=$1, delivered_at=COALESCE($2, delivered_at), updated_at=NOW()
		WHERE id=$3`, status, deliveredAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

const selectOrder = `
	SELECT id, user_id, status, payment_method, payment_id, payment_status,
	       ship_address, ship_city, ship_country, ship_phone,
	       item_price, tax, shipping_charges, total_amount, notes,
	       paid_at, delivered_at, created_at, updated_at
	FROM orders`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var paidAt, deliveredAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.Payment.ID, &o.Payment.Status,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.Country, &o.Shipping.Phone,
		&o.ItemPrice, &o.Tax, &o.ShippingCharges, &o.TotalAmount, &o.Notes,
		&paidAt, &deliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		o.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.Items, err = r.listItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID uuid.UUID) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, name, image, price, quantity, size, color
		FROM order_items WHERE order_id=$1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Item{}
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.Image, &item.Price, &item.Quantity, &item.Size, &item.Color); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
