// Package httputil provides HTTP utilities shared by the GraphQL transport
// and the file downloader.
//
// # Overview
//
//   - [Retry]: retry with exponential backoff for errors marked [RetryableError]
//   - [Download]: stream a (signed) URL to a file on disk
//
// # Retry
//
// [Retry] only repeats failures that the caller explicitly wrapped with
// [RetryableError] (network errors, 5xx responses). Everything else is
// returned on the first attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return doRequest(ctx)
//	})
//
// The GraphQL client runs queries with a single attempt unless retries are
// configured, so a transient failure surfaces to the caller immediately.
//
// # Download
//
// [Download] writes to a temporary file next to the destination and renames
// it into place once the body has been fully copied, so an interrupted
// download never leaves a truncated file at the destination path.
package httputil
