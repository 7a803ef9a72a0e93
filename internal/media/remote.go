package media

import "context"

// RemoteAsset is what the remote object store reports after a successful
// upload.
type RemoteAsset struct {
	ID     string
	URL    string
	Width  int
	Height int
	Format string
	Bytes  int64
}

// RemoteStore is the durable, eventually-consistent object store the
// uploader replicates into. Both operations are expected to fail from time
// to time (rate limits, outages); callers treat failures as routine.
type RemoteStore interface {
	Upload(ctx context.Context, data []byte, folder, name string) (*RemoteAsset, error)
	Delete(ctx context.Context, id string) error
}
