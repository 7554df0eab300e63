package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/graphql"
)

// FormatSTEP is the STEP derivative output format.
const FormatSTEP = "STEP"

// DefaultSTEPPath is where STEP exports are written when no path is given.
const DefaultSTEPPath = "geometry.stp"

// Derivative is a generated export of a component version.
type Derivative struct {
	Status       string `json:"status"`
	SignedURL    string `json:"signedUrl"`
	Progress     string `json:"progress"`
	OutputFormat string `json:"outputFormat"`
	Expires      string `json:"expires"`
}

type derivativeRoot struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Derivatives []Derivative `json:"derivatives"`
}

// Derivative requests generation of the given output format and waits
// until it is available.
func (c *Client) Derivative(ctx context.Context, key LookupKey, format string) (*Derivative, error) {
	request := func(vars map[string]any) *graphql.Request {
		vars["outputFormat"] = format
		return derivativeQuery.Request(vars)
	}

	var d *Derivative
	err := poll(ctx, c.interval, func() (bool, error) {
		res, err := lookup[derivativeRoot](ctx, c.q, key, request)
		if err != nil {
			return false, err
		}
		d = pickDerivative(res.Root.Derivatives, format)
		switch {
		case d == nil:
			c.logger("requesting derivative", "format", format)
			return false, nil
		case d.Status == StatusSuccess:
			return true, nil
		case d.Status == StatusFailed:
			return false, errors.New(errors.ErrCodeProcessingFailed, "%s generation failed for %s", format, key)
		default:
			c.logger("extracting geometry", "format", format, "status", d.Status, "progress", d.Progress)
			return false, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// DownloadSTEP exports the design as STEP and writes it to path
// (DefaultSTEPPath when empty).
func (c *Client) DownloadSTEP(ctx context.Context, key LookupKey, path string) (*Download, error) {
	if path == "" {
		path = DefaultSTEPPath
	}
	d, err := c.Derivative(ctx, key, FormatSTEP)
	if err != nil {
		return nil, err
	}
	return c.download(ctx, d.SignedURL, path)
}

func pickDerivative(ds []Derivative, format string) *Derivative {
	for i := range ds {
		if ds[i].OutputFormat == "" || ds[i].OutputFormat == format {
			return &ds[i]
		}
	}
	return nil
}
