package media

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StorageType describes where an image's bytes currently live.
type StorageType string

const (
	StorageLocal  StorageType = "local"
	StorageRemote StorageType = "remote"
	StorageHybrid StorageType = "hybrid"
	StorageLegacy StorageType = "legacy"
)

// MigrationStatus tracks the progress of an image's remote replication.
type MigrationStatus string

const (
	MigrationPending     MigrationStatus = "pending"
	MigrationMigrating   MigrationStatus = "migrating"
	MigrationCompleted   MigrationStatus = "completed"
	MigrationFailed      MigrationStatus = "failed"
	MigrationNotRequired MigrationStatus = "not_required"
)

// Image is one uploaded asset. A freshly accepted image has only its local
// fields set; the uploader fills the remote fields exactly once in the
// background. Legacy records carry a bare URL and nothing else.
type Image struct {
	ID           uuid.UUID       `json:"id,omitempty"`
	Filename     string          `json:"filename,omitempty"`
	OriginalName string          `json:"original_name,omitempty"`
	LocalPath    string          `json:"local_path,omitempty"`
	RemoteID     string          `json:"remote_id,omitempty"`
	RemoteURL    string          `json:"remote_url,omitempty"`
	URL          string          `json:"url,omitempty"`
	StorageType  StorageType     `json:"storage_type,omitempty"`
	Migration    MigrationStatus `json:"migration_status,omitempty"`

	Bytes  int64  `json:"bytes,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Format string `json:"format,omitempty"`

	UploadedAt       time.Time  `json:"uploaded_at,omitempty"`
	RemoteUploadedAt *time.Time `json:"remote_uploaded_at,omitempty"`

	// DisplayURL is filled by the resolver on read paths; never persisted.
	DisplayURL string `json:"display_url,omitempty"`
}

// Valid reports whether the record points at at least one copy of the bytes.
// A record with neither a local path nor any URL is corrupt.
func (img *Image) Valid() bool {
	return img.LocalPath != "" || img.RemoteURL != "" || img.URL != ""
}

// imageAlias prevents UnmarshalJSON recursion.
type imageAlias Image

// UnmarshalJSON accepts either a structured image object or a bare URL
// string. Older records stored images as plain strings; they are normalized
// here, at the decoding boundary, so the rest of the system only ever sees
// one shape.
func (img *Image) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*img = Image{
			URL:         url,
			StorageType: StorageLegacy,
			Migration:   MigrationNotRequired,
		}
		return nil
	}
	var alias imageAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*img = Image(alias)
	return nil
}
