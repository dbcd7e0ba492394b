// Package figma retrieves design files from the Figma REST API.
package figma

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/componentscope/pkg/design"
	"github.com/matzehuels/componentscope/pkg/httputil"
	"github.com/matzehuels/componentscope/pkg/integrations"
)

// DefaultBaseURL is the public Figma API endpoint.
const DefaultBaseURL = "https://api.figma.com"

// TokenHeader carries the personal access token on every request.
const TokenHeader = "X-Figma-Token"

// User is the account a token belongs to.
type User struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Email  string `json:"email"`
}

// Client provides access to the Figma file API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Figma client authenticating with token. Responses are
// cached in cache when it is non-nil. An empty baseURL selects
// [DefaultBaseURL].
func NewClient(token, baseURL string, cache *httputil.Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(cache, map[string]string{TokenHeader: token}),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// FileCacheKey returns the response cache key for a file.
func FileCacheKey(key string) string { return "figma:file:" + key }

// FetchFile retrieves the full node tree of the file identified by key.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - the decoded file on success
//   - [integrations.ErrNotFound] if the file does not exist
//   - [integrations.ErrUnauthorized] if the token is rejected
//   - [integrations.ErrNetwork] for transport failures and 5xx responses
//   - [design.ErrNoDocument] if the response has no document root
func (c *Client) FetchFile(ctx context.Context, key string, refresh bool) (*design.File, error) {
	var f design.File
	err := c.Cached(ctx, FileCacheKey(key), refresh, &f, func() error {
		return c.Get(ctx, c.baseURL+"/v1/files/"+integrations.URLEncode(key), &f)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch file %s: %w", key, err)
	}
	if f.Document == nil {
		return nil, fmt.Errorf("fetch file %s: %w", key, design.ErrNoDocument)
	}
	return &f, nil
}

// FetchMe returns the user the client's token belongs to. It is never cached
// and is used to verify a token before storing it.
func (c *Client) FetchMe(ctx context.Context) (*User, error) {
	var u User
	if err := c.Get(ctx, c.baseURL+"/v1/me", &u); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return &u, nil
}
