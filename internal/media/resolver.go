package media

import "strings"

// FileChecker reports whether a locally stored file is still present.
type FileChecker interface {
	Exists(urlPath string) bool
}

// Resolver maps an image record to the single best URL to serve right now.
// It is pure: it reads record fields plus a local existence check and never
// writes, so it is safe on every read path concurrently with the uploader.
type Resolver struct {
	remoteHost  string
	placeholder string
	files       FileChecker
}

// NewResolver builds a resolver. remoteHost identifies URLs that belong to
// the configured remote image host (e.g. "res.cloudinary.com").
func NewResolver(remoteHost, placeholder string, files FileChecker) *Resolver {
	return &Resolver{remoteHost: remoteHost, placeholder: placeholder, files: files}
}

// Resolve returns the best available URL, first match wins:
//  1. the generic URL field, when it points at the remote host
//  2. the remote URL field, when it points at the remote host
//  3. the local path, when the file is actually still on disk
//  4. the generic URL field, whatever host it points at
//  5. a fixed placeholder
//
// It never returns an empty string.
func (r *Resolver) Resolve(img *Image) string {
	if img == nil {
		return r.placeholder
	}
	if r.isRemote(img.URL) {
		return img.URL
	}
	if r.isRemote(img.RemoteURL) {
		return img.RemoteURL
	}
	if img.LocalPath != "" && r.files.Exists(img.LocalPath) {
		return img.LocalPath
	}
	if img.URL != "" {
		return img.URL
	}
	return r.placeholder
}

// ResolveAll fills DisplayURL on every image and returns the URLs in order.
func (r *Resolver) ResolveAll(images []Image) []string {
	urls := make([]string, len(images))
	for i := range images {
		images[i].DisplayURL = r.Resolve(&images[i])
		urls[i] = images[i].DisplayURL
	}
	return urls
}

func (r *Resolver) isRemote(url string) bool {
	return url != "" && strings.Contains(url, r.remoteHost)
}
