package learner

import (
	"strings"

	"github.com/OpenAgentsInc/openagents-sub011/internal/models"
)

// Classify maps an error message onto the closed failure-category set.
// Order matters: more specific signatures are checked first.
func Classify(message string) models.FailureCategory {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "type") &&
		(strings.Contains(lower, "not assignable") || strings.Contains(lower, "ts2")) {
		return models.CategoryTypeError
	}
	if strings.Contains(lower, "cannot find module") ||
		strings.Contains(lower, "import") ||
		strings.Contains(lower, "ts2307") {
		return models.CategoryImportError
	}
	if strings.Contains(lower, "syntax") ||
		strings.Contains(lower, "unexpected token") ||
		strings.Contains(lower, "parsing") {
		return models.CategorySyntaxError
	}
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") {
		return models.CategoryTimeout
	}
	if strings.Contains(lower, "test") && strings.Contains(lower, "fail") {
		return models.CategoryTestFailure
	}
	if strings.Contains(lower, "expect") &&
		(strings.Contains(lower, "fail") || strings.Contains(lower, "tobe") || strings.Contains(lower, "toequal")) {
		return models.CategoryTestFailure
	}
	if strings.Contains(lower, "build") ||
		strings.Contains(lower, "compile") ||
		strings.Contains(lower, "bundle") {
		return models.CategoryBuildError
	}
	if strings.Contains(lower, "tool") || strings.Contains(lower, "command failed") {
		return models.CategoryToolError
	}
	if strings.Contains(lower, "runtime") ||
		strings.Contains(lower, "exception") ||
		strings.Contains(lower, "error:") {
		return models.CategoryRuntime
	}

	return models.CategoryUnknown
}
