package answer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/knowledge-backend/internal/entity"
)

const (
	NotFoundAnswer = "I could not find any relevant information in the indexed documents for this question."
	RefusalPhrase  = "I’m not able to find this information in the provided documents."
	NoAnswer       = "No answer returned by the model."

	unknownSource = "unknown"
)

const groundingRules = `Answer questions ONLY using the provided context.
If the answer is not present in the context, clearly say:
"` + RefusalPhrase + `"

When you answer:
- Give a clear, concise answer.
- At the end, add a "Sources:" section with bullet points like:
  - [Doc #1] short explanation of why it was used.
Do NOT invent sources or ids that are not in the context.`

func systemPrompt(ragSystemPrompt string) string {
	base := strings.TrimSpace(ragSystemPrompt)
	if base == "" {
		return groundingRules
	}
	return base + "\n\n" + groundingRules
}

// contextBlock renders hit as the n-th (1-based) labeled block
func contextBlock(n int, hit entity.SearchHit) string {
	source := hit.Source
	if source == "" {
		source = unknownSource
	}
	return fmt.Sprintf("[Doc #%d] source=%s id=%s score=%s\n%s",
		n, source, hit.ID, strconv.FormatFloat(hit.Score, 'f', -1, 64), hit.Content)
}

func buildContext(hits []entity.SearchHit) string {
	blocks := make([]string, 0, len(hits))
	for i, h := range hits {
		blocks = append(blocks, contextBlock(i+1, h))
	}
	return strings.Join(blocks, "\n\n")
}

func userPrompt(contextText, query string) string {
	return "CONTEXT:\n" + contextText + "\n\nQUESTION:\n" + query
}
