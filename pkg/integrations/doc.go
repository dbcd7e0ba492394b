// Package integrations provides HTTP clients for design tool APIs.
//
// The [Client] type carries what every API client needs: default headers,
// status code mapping, retries with exponential backoff for transient
// failures, and an optional file-backed response cache ([httputil.Cache]).
// API-specific clients embed it; see the [figma] subpackage.
//
// # Errors
//
// Status codes map to sentinel errors:
//
//   - 401, 403: [ErrUnauthorized]
//   - 404: [ErrNotFound]
//   - 429: [ErrRateLimited], retried
//   - 5xx and transport failures: [ErrNetwork], retried
//
// Use errors.Is to test for them. Retries are limited to this boundary;
// nothing downstream of a fetched document is retried.
//
// [figma]: github.com/matzehuels/componentscope/pkg/integrations/figma
// [httputil.Cache]: github.com/matzehuels/componentscope/pkg/httputil.Cache
package integrations
