package engine

import (
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/script"
)

// Classify reports whether a choice node is evaluated (at least one option
// is correct) or neutral. A choice without isCorrect counts as incorrect.
func Classify(choices []script.Choice) domain.Classification {
	for _, c := range choices {
		if c.IsCorrect {
			return domain.Evaluated
		}
	}
	return domain.Neutral
}
