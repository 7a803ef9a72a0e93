package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/velorahq/velora-backend/internal/media"
)

type postgresRepo struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for i := range p.Images {
		if err := insertImage(ctx, tx, p.ID, nil, &p.Images[i]); err != nil {
			return err
		}
	}

	for ci := range p.Colors {
		c := &p.Colors[ci]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_colors (id, product_id, color_id, color_name, color_code)
			VALUES ($1, $2, $3, $4, $5)`,
			c.ID, p.ID, c.ColorID, c.ColorName, c.ColorCode,
		)
		if err != nil {
			return err
		}
		for _, s := range c.Sizes {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO product_sizes (color_id, label, price, stock, discount_percent, discount_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				c.ID, s.Label, s.Price, s.Stock, s.DiscountPercent, s.DiscountPrice,
			)
			if err != nil {
				return err
			}
		}
		for ii := range c.Images {
			if err := insertImage(ctx, tx, p.ID, &c.ID, &c.Images[ii]); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertImage(ctx context.Context, tx *sql.Tx, productID uuid.UUID, colorID *uuid.UUID, img *media.Image) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO product_images
			(id, product_id, color_id, filename, original_name, local_path, remote_id, remote_url,
			 url, storage_type, migration_status, bytes, width, height, format, uploaded_at, remote_uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		img.ID, productID, colorID, img.Filename, img.OriginalName, img.LocalPath, img.RemoteID,
		img.RemoteURL, img.URL, img.StorageType, img.Migration, img.Bytes, img.Width, img.Height,
		img.Format, img.UploadedAt, img.RemoteUploadedAt,
	)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, stock, category_id, created_at, updated_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*Product{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, categoryID *uuid.UUID) ([]Product, error) {
	query := `
		SELECT id, name, description, price, stock, category_id, created_at, updated_at
		FROM products`
	args := []any{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := r.loadChildren(ctx, refs); err != nil {
		return nil, err
	}
	return products, nil
}

// loadChildren fills colors, sizes and images for the given products in
// three batched queries.
func (r *postgresRepo) loadChildren(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	type ownedColor struct {
		productID uuid.UUID
		color     *Color
	}
	colorByID := make(map[uuid.UUID]*Color)
	var colors []ownedColor
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, color_id, color_name, color_code
		FROM product_colors WHERE product_id = ANY($1)
		ORDER BY color_name`, pq.Array(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		c := &Color{}
		var productID uuid.UUID
		if err := rows.Scan(&c.ID, &productID, &c.ColorID, &c.ColorName, &c.ColorCode); err != nil {
			rows.Close()
			return err
		}
		colorByID[c.ID] = c
		colors = append(colors, ownedColor{productID: productID, color: c})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT ps.color_id, ps.label, ps.price, ps.stock, ps.discount_percent, ps.discount_price
		FROM product_sizes ps
		JOIN product_colors pc ON pc.id = ps.color_id
		WHERE pc.product_id = ANY($1)
		ORDER BY ps.label`, pq.Array(ids))
	if err != nil {
		return err
	}
	for rows.Next() {
		var colorID uuid.UUID
		var s Size
		if err := rows.Scan(&colorID, &s.Label, &s.Price, &s.Stock, &s.DiscountPercent, &s.DiscountPrice); err != nil {
			rows.Close()
			return err
		}
		if c, ok := colorByID[colorID]; ok {
			c.Sizes = append(c.Sizes, s)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT id, product_id, color_id, filename, original_name, local_path, remote_id, remote_url,
		       url, storage_type, migration_status, bytes, width, height, format, uploaded_at, remote_uploaded_at
		FROM product_images WHERE product_id = ANY($1)
		ORDER BY uploaded_at`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var img media.Image
		var productID uuid.UUID
		var colorID uuid.NullUUID
		var remoteAt sql.NullTime
		if err := rows.Scan(&img.ID, &productID, &colorID, &img.Filename, &img.OriginalName,
			&img.LocalPath, &img.RemoteID, &img.RemoteURL, &img.URL, &img.StorageType,
			&img.Migration, &img.Bytes, &img.Width, &img.Height, &img.Format,
			&img.UploadedAt, &remoteAt); err != nil {
			return err
		}
		if remoteAt.Valid {
			img.RemoteUploadedAt = &remoteAt.Time
		}
		if colorID.Valid {
			if c, ok := colorByID[colorID.UUID]; ok {
				c.Images = append(c.Images, img)
				continue
			}
		}
		byID[productID].Images = append(byID[productID].Images, img)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, oc := range colors {
		p := byID[oc.productID]
		p.Colors = append(p.Colors, *oc.color)
	}
	return nil
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, updated_at = NOW()
		WHERE id = $6`,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
