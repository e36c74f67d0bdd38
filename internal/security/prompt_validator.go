package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxPromptLength = 2000

// dangerousPatterns catches shell payloads, secret-file probing and prompt
// injection. Plain tool names (git, curl, sudo) are normal helpdesk vocabulary
// and are not blocked.
var dangerousPatterns = []*regexp.Regexp{
	// Destructive commands
	regexp.MustCompile(`(?i)\brm\s+-[a-z]*r`),
	regexp.MustCompile(`(?i)\brm\s+/`),
	regexp.MustCompile(`(?i)\bmkfs(\.\w+)?\s+/dev/`),
	regexp.MustCompile(`(?i)\bdd\s+if=.*\bof=/dev/`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\};:`),
	regexp.MustCompile(`(?i)\|\s*(ba)?sh\b`),

	// File operations / path traversal
	regexp.MustCompile(`\.\.\/`),
	regexp.MustCompile(`/etc/passwd`),
	regexp.MustCompile(`/etc/shadow`),
	regexp.MustCompile(`/proc/(self|\d+)/(environ|mem|maps|cmdline)`),
	regexp.MustCompile(`id_rsa`),
	regexp.MustCompile(`\.ssh/`),
	// redirection into system paths after a shell verb
	regexp.MustCompile(`(?i)\b(echo|cat|printf|tee|sed)\b[^|;\n]*>>?\s*/(etc|bin|sbin|usr|boot|dev|root|var)\b`),

	// Code execution
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)system\s*\(`),
	regexp.MustCompile(`(?i)__import__\s*\(`),
	regexp.MustCompile(`(?i)subprocess\.`),
	regexp.MustCompile(`(?i)os\.system`),
	regexp.MustCompile(`(?i)\bpopen\b`),

	// Prompt injection
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above)\s+instructions`),
	regexp.MustCompile(`(?i)override\s+(all\s+)?(previous|prior|above)\s+instructions`),
	regexp.MustCompile(`(?i)reveal\s+(your\s+)?system\s+prompt`),
	regexp.MustCompile(`(?i)new\s+context\s*:`),
	regexp.MustCompile(`(?i)instead\s+of\s+the\s+above`),
}

var suspiciousIndicators = []string{
	"import os", "import sys", "<script",
}

// PromptValidator screens form queries before they reach an agent
type PromptValidator struct {
	maxLength int
}

// NewPromptValidator creates a validator. maxLength <= 0 uses MaxPromptLength.
func NewPromptValidator(maxLength int) *PromptValidator {
	if maxLength <= 0 {
		maxLength = MaxPromptLength
	}
	return &PromptValidator{maxLength: maxLength}
}

// ValidationResult contains validation outcome
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks a query for length and dangerous patterns
func (v *PromptValidator) Validate(prompt string) ValidationResult {
	if strings.TrimSpace(prompt) == "" {
		return ValidationResult{Valid: false, Message: "query cannot be empty"}
	}

	if n := utf8.RuneCountInString(prompt); n > v.maxLength {
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("query too long: %d chars (max %d)", n, v.maxLength),
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(prompt) {
			return ValidationResult{
				Valid:   false,
				Message: "query contains a disallowed instruction or command",
			}
		}
	}

	lower := strings.ToLower(prompt)
	for _, indicator := range suspiciousIndicators {
		if strings.Contains(lower, indicator) {
			return ValidationResult{
				Valid:   false,
				Message: fmt.Sprintf("suspicious content detected: %q", indicator),
			}
		}
	}

	return ValidationResult{Valid: true, Message: "ok"}
}
