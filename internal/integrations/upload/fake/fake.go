package fake

import (
	"context"
	"sync"

	"github.com/BearBump/PetCafe/internal/integrations/upload"
)

// Uploader keeps files in memory and hands out stable fake URLs.
type Uploader struct {
	mu      sync.Mutex
	baseURL string
	files   map[string][]byte
}

func New(baseURL string) *Uploader {
	if baseURL == "" {
		baseURL = "https://files.petcafe.local"
	}
	return &Uploader{baseURL: baseURL, files: map[string][]byte{}}
}

func (u *Uploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	url := u.baseURL + "/pets/" + upload.ObjectName(filename)
	u.files[url] = append([]byte(nil), data...)
	return url, nil
}

func (u *Uploader) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.files)
}
