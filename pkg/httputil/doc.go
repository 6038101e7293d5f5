// Package httputil provides a file-based JSON cache and a retry helper.
//
// # Overview
//
//   - [Cache]: file-based caching of JSON-marshalable values
//   - [Retry]: retry with exponential backoff for errors marked retryable
//
// # Caching
//
// [Cache] stores each value as a JSON file in its directory (by default
// ~/.cache/stacktower/) with a TTL measured from the file's modification
// time. The TTL is passed to [NewCache]; there is no default TTL.
//
// Usage:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	var data map[string]any
//	ok, err := cache.Get("pypi:fastapi", &data) // Check cache
//	if !ok {
//	    data = fetchFromAPI()
//	    cache.Set("pypi:fastapi", data) // Store for later
//	}
//
// Cache keys should be namespaced (see [Cache.Namespace]) to avoid
// collisions.
//
// # Retry
//
// [Retry] calls fn up to a given number of attempts. Only errors wrapped
// in [RetryableError] are retried; any other error is returned at once.
// The delay starts at the given value and doubles after each failed
// attempt, with no jitter:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    return resp.Body.Close()
//	})
//
// # Defaults
//
//   - Cache directory: ~/.cache/stacktower/ (when NewCache is given "")
//   - [RetryWithBackoff]: 3 attempts, 1 second initial delay
//
// The package has no cache-clearing function; deleting the cache
// directory clears the cache.
package httputil
