package storage

import (
	"context"
	"fmt"
	"os"
)

// Publisher stores rendered output files alongside uploaded assets.
type Publisher struct {
	uploader *Uploader
}

// NewPublisher wraps an uploader for rendered outputs.
func NewPublisher(uploader *Uploader) *Publisher {
	return &Publisher{uploader: uploader}
}

// Publish uploads the file at path, verifies the object settled, and returns
// its public URL. A URL is never handed out for an object the store cannot
// see.
func (p *Publisher) Publish(ctx context.Context, name, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open rendered file: %w", err)
	}
	defer file.Close()

	key, url, err := p.uploader.Upload(ctx, name, "video/mp4", file)
	if err != nil {
		return "", err
	}

	ok, err := p.uploader.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("cannot verify rendered object %q: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("rendered object %q missing after upload", key)
	}

	return url, nil
}
