package media

import "context"

// Repository persists the outcome of background replication. Records are
// matched by their generated local filename, which is unique per upload.
type Repository interface {
	// MarkMigrating flags a record as having an in-flight remote upload.
	MarkMigrating(ctx context.Context, filename string) error

	// MarkMigrated stores the remote identifiers on the matching record and
	// advances it to hybrid storage with a completed migration.
	MarkMigrated(ctx context.Context, filename string, asset *RemoteAsset) error

	// MarkFailed records that replication failed; the local copy stays
	// authoritative and the status is visible to pollers.
	MarkFailed(ctx context.Context, filename string) error
}
