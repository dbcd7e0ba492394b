package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// fileKeyRegex matches design file keys as they appear in share URLs.
var fileKeyRegex = regexp.MustCompile(`^[A-Za-z0-9]{8,64}$`)

// ValidateFileKey validates a design file key before it is placed in a URL
// path or a cache key.
func ValidateFileKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidFileKey, "file key cannot be empty")
	}
	if !fileKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidFileKey, "invalid file key: %q", key)
	}
	return nil
}

// ExtractFileKey accepts either a bare file key or a design tool URL of the
// form https://www.figma.com/file/<key>/... or .../design/<key>/... and
// returns the key.
func ExtractFileKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		parts := strings.Split(s, "/")
		for i, p := range parts {
			if (p == "file" || p == "design") && i+1 < len(parts) {
				key := parts[i+1]
				if idx := strings.IndexAny(key, "?#"); idx >= 0 {
					key = key[:idx]
				}
				return key, ValidateFileKey(key)
			}
		}
		return "", New(ErrCodeInvalidFileKey, "no file key in URL: %q", s)
	}
	return s, ValidateFileKey(s)
}

// ValidateCanvasIndex checks a 1-based canvas selection against the number
// of canvases available.
func ValidateCanvasIndex(n, count int) error {
	if count == 0 {
		return New(ErrCodeNoCanvas, "no canvas nodes found in document")
	}
	if n < 1 || n > count {
		return New(ErrCodeCanvasOutOfRange, "canvas %d out of range (1-%d)", n, count)
	}
	return nil
}

// ValidateRunID validates a stored run identifier.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRunID, "run id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidRunID, err, "invalid run id: %q", id)
	}
	return nil
}

// ValidateToken performs a shape check on an API token. It rejects empty
// tokens and tokens that could corrupt a request header.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return New(ErrCodeUnauthorized, "token cannot be empty")
	}
	for _, r := range token {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeUnauthorized, "token contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
