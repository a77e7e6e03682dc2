// Package httputil provides the HTTP plumbing shared by remote repositories.
//
// # Client
//
// [Client] performs GET requests and classifies the response:
//
//   - 200 returns the body
//   - 404 returns [ErrNotFound]
//   - 5xx and transport failures return [ErrNetwork] marked
//     [Retryable]
//   - other statuses return [ErrNetwork]
//
// Each request is retried according to the client's [ClientOptions] and is
// reported to the HTTP hooks of package observability.
//
// # Retry
//
// [Retry] re-runs a function with exponential backoff while it fails with an
// error marked [Retryable]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// Any other error stops the loop immediately.
package httputil
