package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// shared backend keep separate result spaces:
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:design-ops:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(documentHash string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(documentHash, opts)
}
