// Package fetch downloads live pages for auditing.
//
// The client layers resty over a go-retryablehttp round tripper, so
// transient network failures and 5xx responses are retried with backoff,
// and throttles outgoing requests with a token bucket.
//
// Example Usage:
//
//	client := fetch.NewClient(fetch.DefaultOptions())
//	body, err := client.Get(ctx, "https://example.com/")
package fetch
