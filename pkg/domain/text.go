package domain

import "sort"

// Language codes with first-class helpers. Any other code is accepted as a key.
const (
	LangEN = "en"
	LangFR = "fr"
)

// Text is a localized string keyed by language code (e.g. "en", "fr").
// The engine never resolves it; resolution belongs to the display layer.
type Text map[string]string

// Bilingual builds an EN/FR text pair.
func Bilingual(en, fr string) Text {
	return Text{LangEN: en, LangFR: fr}
}

// Resolve returns the value for lang, then for fallback, then the first
// non-empty value in key order. It returns "" for an empty text.
func (t Text) Resolve(lang, fallback string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	if v, ok := t[fallback]; ok && v != "" {
		return v
	}
	for _, k := range t.Languages() {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}

// Languages returns the language codes present, sorted.
func (t Text) Languages() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether no language carries a value.
func (t Text) IsEmpty() bool {
	for _, v := range t {
		if v != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. A nil text stays nil.
func (t Text) Clone() Text {
	if t == nil {
		return nil
	}
	out := make(Text, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Equal compares two texts, treating nil and empty as the same value.
func (t Text) Equal(other Text) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
