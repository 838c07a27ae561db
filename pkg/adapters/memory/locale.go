package memory

import "github.com/aretw0/parley/pkg/domain"

// Locale is a fixed ports.LocaleProvider.
type Locale string

// Language implements ports.LocaleProvider. The empty Locale reports English.
func (l Locale) Language() string {
	if l == "" {
		return domain.LangEN
	}
	return string(l)
}
