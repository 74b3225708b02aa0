package glvrd

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// ValidationResult contains the results of text validation
type ValidationResult struct {
	Valid       bool
	Issues      []string
	Suggestions []string
}

// ValidateText checks text against the limits reported by the service.
// Length is measured in UTF-16 code units, as the service counts it.
// Zero limits are treated as unknown. The client never enforces this;
// callers decide what to do with the result.
func ValidateText(text string, limits ServiceLimits) ValidationResult {
	result := ValidationResult{Valid: true}

	if strings.TrimSpace(text) == "" {
		result.Valid = false
		result.Issues = append(result.Issues, "text is empty")
		result.Suggestions = append(result.Suggestions, "provide text to proofread")
		return result
	}

	if limits.MaxTextLength > 0 {
		if n := len(utf16.Encode([]rune(text))); n > limits.MaxTextLength {
			result.Valid = false
			result.Issues = append(result.Issues, fmt.Sprintf("text too long (%d chars, maximum %d)",
				n, limits.MaxTextLength))
			result.Suggestions = append(result.Suggestions, fmt.Sprintf("split text into parts under %d characters", limits.MaxTextLength))
		}
	}

	return result
}

// ValidateHintIDs checks a hint batch against the limits
func ValidateHintIDs(ids []string, limits ServiceLimits) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(ids) == 0 {
		result.Valid = false
		result.Issues = append(result.Issues, "no hint ids")
		return result
	}

	for i, id := range ids {
		if id == "" {
			result.Valid = false
			result.Issues = append(result.Issues, fmt.Sprintf("hint id at index %d is empty", i))
		}
	}

	if limits.MaxHintsCount > 0 && len(ids) > limits.MaxHintsCount {
		result.Valid = false
		result.Issues = append(result.Issues, fmt.Sprintf("too many hint ids (%d, maximum %d)",
			len(ids), limits.MaxHintsCount))
		result.Suggestions = append(result.Suggestions, fmt.Sprintf("request at most %d hints at once", limits.MaxHintsCount))
	}

	return result
}
