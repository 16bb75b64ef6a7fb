// Package question produces interview questions and evaluates answers
// through the language-model capability, with deterministic fallbacks.
package question

import "strings"

// wrapperPrefixes mark conversational filler lines that models wrap around
// the actual question. Matched case-insensitively against the start of a
// line.
var wrapperPrefixes = []string{
	"sure",
	"of course",
	"certainly",
	"okay",
	"great",
	"here is",
	"here's",
	"note that",
	"note:",
	"as an interviewer",
	"as a professional",
	"let me",
	"i would ask",
	"good luck",
}

// Sanitize normalizes raw model output into a contract-safe question
// string. Wrapper lines are stripped, then the first sentence ending in a
// question mark wins; without one, the first remaining line is used. Raw
// model output is never passed through untouched.
func Sanitize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isWrapperLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	text := strings.Join(kept, " ")
	if text == "" {
		// Everything looked like wrapper; fall back to the raw first line.
		text = firstLine(raw)
	}

	if q := firstQuestionSentence(text); q != "" {
		return q
	}
	return firstLine(text)
}

func isWrapperLine(line string) bool {
	// A wrapper line never carries the question itself.
	if strings.Contains(line, "?") {
		return false
	}
	lower := strings.ToLower(line)
	for _, prefix := range wrapperPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// firstQuestionSentence returns the first sentence terminated by a question
// mark, or "" when none exists. Sentence boundaries are a coarse heuristic
// over '.', '!' and '?'.
func firstQuestionSentence(text string) string {
	start := 0
	for i, r := range text {
		switch r {
		case '?':
			return strings.TrimSpace(text[start : i+1])
		case '.', '!':
			start = i + 1
		}
	}
	return ""
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
