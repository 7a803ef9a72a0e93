package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore is the production RemoteStore backed by Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a client from a CLOUDINARY_URL style URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (c *CloudinaryStore) Upload(ctx context.Context, data []byte, folder, name string) (*RemoteAsset, error) {
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   folder,
		PublicID: name,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	return &RemoteAsset{
		ID:     res.PublicID,
		URL:    res.SecureURL,
		Width:  res.Width,
		Height: res.Height,
		Format: res.Format,
		Bytes:  int64(res.Bytes),
	}, nil
}

func (c *CloudinaryStore) Delete(ctx context.Context, id string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
