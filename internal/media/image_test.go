package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalBareStringBecomesLegacy(t *testing.T) {
	var img Image
	require.NoError(t, json.Unmarshal([]byte(`"https://old.example.com/a.jpg"`), &img))

	assert.Equal(t, "https://old.example.com/a.jpg", img.URL)
	assert.Equal(t, StorageLegacy, img.StorageType)
	assert.Equal(t, MigrationNotRequired, img.Migration)
	assert.True(t, img.Valid())
}

func TestUnmarshalStructuredObject(t *testing.T) {
	payload := `{
		"filename": "abc.jpg",
		"local_path": "/uploads/products/abc.jpg",
		"storage_type": "local",
		"migration_status": "pending"
	}`
	var img Image
	require.NoError(t, json.Unmarshal([]byte(payload), &img))

	assert.Equal(t, "abc.jpg", img.Filename)
	assert.Equal(t, "/uploads/products/abc.jpg", img.LocalPath)
	assert.Equal(t, StorageLocal, img.StorageType)
	assert.Equal(t, MigrationPending, img.Migration)
}

func TestUnmarshalMixedArray(t *testing.T) {
	payload := `[
		"https://old.example.com/a.jpg",
		{"local_path": "/uploads/products/b.jpg", "storage_type": "local"}
	]`
	var images []Image
	require.NoError(t, json.Unmarshal([]byte(payload), &images))
	require.Len(t, images, 2)

	assert.Equal(t, StorageLegacy, images[0].StorageType)
	assert.Equal(t, StorageLocal, images[1].StorageType)
}

func TestValidNeedsAtLeastOneLocation(t *testing.T) {
	assert.False(t, (&Image{}).Valid())
	assert.True(t, (&Image{LocalPath: "/uploads/products/a.jpg"}).Valid())
	assert.True(t, (&Image{RemoteURL: "https://res.cloudinary.com/x/a.jpg"}).Valid())
	assert.True(t, (&Image{URL: "/a.jpg"}).Valid())
}
