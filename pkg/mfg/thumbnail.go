package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// Job statuses reported by the API for generated artifacts.
const (
	StatusSuccess    = "SUCCESS"
	StatusFailed     = "FAILED"
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// DefaultThumbnailPath is where thumbnails are written when no path is given.
const DefaultThumbnailPath = "thumbnail.png"

// Thumbnail is the generated preview image of a component version.
type Thumbnail struct {
	Status    string `json:"status"`
	SignedURL string `json:"signedUrl"`
}

type thumbnailRoot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Thumbnail *Thumbnail `json:"thumbnail"`
}

// Thumbnail waits until the thumbnail of the design is generated.
func (c *Client) Thumbnail(ctx context.Context, key LookupKey) (*Thumbnail, error) {
	var thumb *Thumbnail
	err := poll(ctx, c.interval, func() (bool, error) {
		res, err := lookup[thumbnailRoot](ctx, c.q, key, thumbnailQuery.Request)
		if err != nil {
			return false, err
		}
		if res.Root.Thumbnail == nil {
			return false, malformed(thumbnailQuery.Name(), "thumbnail")
		}
		thumb = res.Root.Thumbnail
		switch thumb.Status {
		case StatusSuccess:
			return true, nil
		case StatusFailed:
			return false, errors.New(errors.ErrCodeProcessingFailed, "thumbnail generation failed for %s", key)
		default:
			c.logger("extracting thumbnail", "status", thumb.Status)
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return thumb, nil
}

// DownloadThumbnail waits for the thumbnail and writes it to path
// (DefaultThumbnailPath when empty).
func (c *Client) DownloadThumbnail(ctx context.Context, key LookupKey, path string) (*Download, error) {
	if path == "" {
		path = DefaultThumbnailPath
	}
	thumb, err := c.Thumbnail(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.download(ctx, thumb.SignedURL, path)
}
