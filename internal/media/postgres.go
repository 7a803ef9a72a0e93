package media

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository persists migration outcomes to the product_images
// table shared with the product module.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) MarkMigrating(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE product_images SET migration_status='migrating'
		WHERE filename=$1 AND migration_status='pending'`, filename)
	return err
}

func (r *postgresRepo) MarkMigrated(ctx context.Context, filename string, asset *RemoteAsset) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE product_images
		SET remote_id=$1, remote_url=$2, width=$3, height=$4, format=$5,
		    storage_type='hybrid', migration_status='completed', remote_uploaded_at=NOW()
		WHERE filename=$6`,
		asset.ID, asset.URL, asset.Width, asset.Height, asset.Format, filename)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("image %s not found", filename)
	}
	return nil
}

func (r *postgresRepo) MarkFailed(ctx context.Context, filename string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE product_images SET storage_type='local', migration_status='failed'
		WHERE filename=$1`, filename)
	return err
}
