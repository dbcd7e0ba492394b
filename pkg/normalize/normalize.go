// Package normalize turns human-authored component names into comparison keys.
//
// Design tools let authors type names freely, so the same logical component
// often shows up as "Botón", "boton" and "BOTON" across a file. [Normalize]
// folds those spellings onto one [Key]:
//
//   - canonical decomposition (NFD) followed by removal of combining marks,
//     so "ó" becomes "o" and "ñ" becomes "n"
//   - letters that carry a stroke instead of a combining mark ("ø", "ł",
//     "đ", "ħ") are mapped to their unmarked Latin letter
//   - Unicode case folding
//
// Keys are the only identity used to merge components by name; two names with
// equal keys always denote the same component.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is the canonical comparison form of a component name.
type Key string

// String returns the key as a plain string.
func (k Key) String() string { return string(k) }

// strokeLetters maps letters without a canonical decomposition to their base letter.
var strokeLetters = map[rune]rune{
	'ø': 'o', 'Ø': 'O',
	'ł': 'l', 'Ł': 'L',
	'đ': 'd', 'Đ': 'D',
	'ħ': 'h', 'Ħ': 'H',
}

func foldStroke(r rune) rune {
	if m, ok := strokeLetters[r]; ok {
		return m
	}
	return r
}

// Normalize returns the comparison key for name. It never fails: input that
// cannot be transformed falls back to a plain lower-cased copy.
func Normalize(name string) Key {
	// transform.Chain keeps per-call state, so build a fresh chain each time.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(foldStroke),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		return Key(strings.ToLower(name))
	}
	return Key(cases.Fold().String(stripped))
}

// Equal reports whether a and b normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
