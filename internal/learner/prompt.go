package learner

import (
	"fmt"
	"strings"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// FormatForPrompt renders a learning summary as a markdown block for
// injection into the next benchmark invocation's context. Returns the
// empty string when there is nothing to surface.
func FormatForPrompt(summary *models.LearningSummary) string {
	if summary == nil || len(summary.Reflections) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Previous Attempt Reflections\n\n")
	b.WriteString("Recent runs hit recurring failures. Apply these lessons before repeating the same mistakes:\n")

	for i, reflection := range summary.Reflections {
		b.WriteString(fmt.Sprintf("\n### Reflection %d\n", i+1))
		b.WriteString(fmt.Sprintf("**Failure category**: %s (seen %d time(s))\n",
			reflection.Category, reflection.Occurrences))
		if reflection.CorrectiveAction != "" {
			b.WriteString(fmt.Sprintf("**Corrective action**: %s\n", reflection.CorrectiveAction))
		}
	}

	return b.String()
}
