package cache

import "strings"

// KeyTypeAnalysis prefixes analysis result keys.
const KeyTypeAnalysis = "analysis"

// AnalysisKeyOpts are the inputs besides the document that change analysis output.
type AnalysisKeyOpts struct {
	Canvas              string `json:"canvas"` // canvas node id
	LookThrough         bool   `json:"look_through,omitempty"`
	MinutesPerComponent int    `json:"minutes_per_component"`
}

// Keyer generates cache keys.
type Keyer interface {
	// AnalysisKey identifies the analysis of one canvas of a document,
	// given the hash of the document bytes.
	AnalysisKey(documentHash string, opts AnalysisKeyOpts) string
}

// DefaultKeyer hashes key inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) AnalysisKey(documentHash string, opts AnalysisKeyOpts) string {
	return hashKey(KeyTypeAnalysis, documentHash, opts)
}

// KeyType returns the type prefix of a key produced by a Keyer, ignoring any
// scope prefix. It returns "" for keys it does not recognize.
func KeyType(key string) string {
	if strings.HasPrefix(key, KeyTypeAnalysis+":") || strings.Contains(key, ":"+KeyTypeAnalysis+":") {
		return KeyTypeAnalysis
	}
	return ""
}
