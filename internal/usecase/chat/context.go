package chat

import (
	"fmt"
	"strings"

	"github.com/mostachar-ma/mostachar/internal/domain"
)

// noContextSentinel tells the model explicitly that retrieval found nothing,
// so it answers from the greeting/no-context branch of the system prompt
// instead of inventing citations.
const noContextSentinel = "لا توجد نصوص قانونية ذات صلة."

// buildContext formats ranked passages into the grounding block for the
// prompt. Formatting is deterministic: the same results always produce
// byte-identical output, rank 1 first.
func buildContext(results []domain.RankedResult) string {
	if len(results) == 0 {
		return noContextSentinel
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf(
			"[%d] القانون: %s\n    المرجع: %s\n    النص: %s\n",
			i+1, r.Domain, r.Reference, r.Content,
		)
	}
	return strings.Join(parts, "\n")
}
