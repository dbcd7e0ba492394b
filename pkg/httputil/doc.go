// Package httputil provides the HTTP plumbing shared by design tool API clients.
//
//   - [Cache]: JSON responses stored as files, one per key, with a TTL
//   - [Policy]: exponential backoff for errors marked as [RetryableError],
//     honoring the API's Retry-After hint
//
// Responses are cached under the user cache directory
// (componentscope/http) by default. Keys are namespaced per API and
// resource so a token check never collides with a file download:
//
//	c, err := httputil.NewCache("", 24*time.Hour)
//	files := c.Namespace("figma:file:")
//	var f design.File
//	if ok, _ := files.Get(key, &f); !ok {
//	    // fetch, then files.Set(key, &f)
//	}
//
// `componentscope cache clear` removes the directory contents.
package httputil
