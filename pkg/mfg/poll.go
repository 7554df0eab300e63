package mfg

import (
	"context"
	"time"
)

// poll runs check immediately and then once per interval until it reports
// done, returns an error or ctx ends.
func poll(ctx context.Context, interval time.Duration, check func() (done bool, err error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		done, err := check()
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
