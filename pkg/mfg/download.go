package mfg

import (
	"context"
	"net/url"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/httputil"
)

// tokenSource is implemented by queriers that can authorize downloads.
type tokenSource interface {
	Token() (*oauth2.Token, error)
}

// Download is the result of a file export.
type Download struct {
	Path  string // absolute path of the written file
	Bytes int64
}

// URL returns the file:// URL of the download.
func (d *Download) URL() string { return FileURL(d.Path) }

// FileURL converts an absolute path into a file:// URL.
func FileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// download fetches a signed URL to path, sending the access token when the
// querier can provide one.
func (c *Client) download(ctx context.Context, signedURL, path string) (*Download, error) {
	if signedURL == "" {
		return nil, errors.New(errors.ErrCodeMalformedResponse, "no download url")
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}

	var headers map[string]string
	if ts, ok := c.q.(tokenSource); ok {
		tok, err := ts.Token()
		if err != nil {
			return nil, err
		}
		if tok != nil {
			headers = map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}
		}
	}

	var n int64
	err = httputil.Retry(ctx, 3, c.interval, func() error {
		var err error
		n, err = httputil.Download(ctx, c.http, signedURL, abs, headers)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "download %s", filepath.Base(abs))
	}
	c.logger("downloaded", "path", abs, "bytes", n)
	return &Download{Path: abs, Bytes: n}, nil
}
