package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFiles map[string]bool

func (f fakeFiles) Exists(urlPath string) bool { return f[urlPath] }

const (
	testRemoteHost  = "res.cloudinary.com"
	testPlaceholder = "/placeholder-image.png"
)

func TestResolvePriorityOrder(t *testing.T) {
	files := fakeFiles{"/uploads/products/a.jpg": true}
	r := NewResolver(testRemoteHost, testPlaceholder, files)

	tests := []struct {
		name string
		img  *Image
		want string
	}{
		{
			name: "remote url field wins",
			img: &Image{
				URL:       "https://res.cloudinary.com/demo/a.jpg",
				RemoteURL: "https://res.cloudinary.com/demo/other.jpg",
				LocalPath: "/uploads/products/a.jpg",
			},
			want: "https://res.cloudinary.com/demo/a.jpg",
		},
		{
			name: "remote_url field when url is not remote",
			img: &Image{
				URL:       "/uploads/products/a.jpg",
				RemoteURL: "https://res.cloudinary.com/demo/a.jpg",
				LocalPath: "/uploads/products/a.jpg",
			},
			want: "https://res.cloudinary.com/demo/a.jpg",
		},
		{
			name: "local path when file exists",
			img:  &Image{LocalPath: "/uploads/products/a.jpg"},
			want: "/uploads/products/a.jpg",
		},
		{
			name: "legacy url when local file is gone",
			img:  &Image{LocalPath: "/uploads/products/missing.jpg", URL: "/old/a.jpg"},
			want: "/old/a.jpg",
		},
		{
			name: "placeholder when nothing resolves",
			img:  &Image{LocalPath: "/uploads/products/missing.jpg"},
			want: testPlaceholder,
		},
		{
			name: "nil image",
			img:  nil,
			want: testPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.img))
		})
	}
}

func TestResolveNeverReturnsEmpty(t *testing.T) {
	r := NewResolver(testRemoteHost, testPlaceholder, fakeFiles{})
	assert.NotEmpty(t, r.Resolve(&Image{}))
	assert.NotEmpty(t, r.Resolve(nil))
}

func TestResolveAllFillsDisplayURL(t *testing.T) {
	files := fakeFiles{"/uploads/products/a.jpg": true}
	r := NewResolver(testRemoteHost, testPlaceholder, files)

	images := []Image{
		{LocalPath: "/uploads/products/a.jpg"},
		{URL: "https://res.cloudinary.com/demo/b.jpg"},
		{},
	}
	urls := r.ResolveAll(images)
	require.Len(t, urls, 3)

	assert.Equal(t, "/uploads/products/a.jpg", images[0].DisplayURL)
	assert.Equal(t, "https://res.cloudinary.com/demo/b.jpg", images[1].DisplayURL)
	assert.Equal(t, testPlaceholder, images[2].DisplayURL)
}

func TestResolveWithLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads/products")
	require.NoError(t, err)

	path, err := store.Save("real.jpg", []byte("jpeg bytes"))
	require.NoError(t, err)

	r := NewResolver(testRemoteHost, testPlaceholder, store)
	assert.Equal(t, path, r.Resolve(&Image{LocalPath: path}))
	assert.Equal(t, testPlaceholder, r.Resolve(&Image{LocalPath: "/uploads/products/gone.jpg"}))
}
