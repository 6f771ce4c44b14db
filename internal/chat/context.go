package chat

import (
	"strings"

	"github.com/docchat/docchat/internal/domain"
)

// PassageSeparator delimits retrieved passages inside the evidence block.
// The marker line is distinct enough not to collide with corpus content.
const PassageSeparator = "\n\n---\n\n"

// Assemble joins retrieved chunk texts, in the given order, into one
// evidence block. Deterministic; an empty result yields an empty string,
// which routes generation to the no-answer fallback.
func Assemble(results domain.RetrievalResult) string {
	if len(results) == 0 {
		return ""
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return strings.Join(texts, PassageSeparator)
}
