package review

import (
	"fmt"
	"regexp"
	"strings"
)

const maxFeedbackItems = 5

var (
	critiqueRe       = regexp.MustCompile(`(?is)## CRITIQUE\s*\n(.*?)(?:\n## |\z)`)
	feedbackRe       = regexp.MustCompile(`(?is)## FEEDBACK\s*\n(.*?)(?:\n## |\z)`)
	recommendationRe = regexp.MustCompile(`(?i)## RECOMMENDATION\s*\n\s*\[?\*{0,2}(KEEP|REGENERATE)`)
	bulletRe         = regexp.MustCompile(`^\s*(?:[-•*]|\d+\.)\s+`)
)

// parse extracts the critique, feedback bullets and recommendation from the
// LLM response. Models drift from the requested format, so every section has
// a fallback; parsing always yields a usable Result.
func parse(response string) Result {
	res := Result{
		Critique:   extractCritique(response),
		Regenerate: shouldRegenerate(response),
	}
	if m := feedbackRe.FindStringSubmatch(response); m != nil {
		for i, text := range splitBullets(m[1]) {
			res.Feedback = append(res.Feedback, FeedbackItem{
				ID:   fmt.Sprintf("feedback_%d", i),
				Text: text,
			})
		}
	}
	return res
}

func extractCritique(response string) string {
	if m := critiqueRe.FindStringSubmatch(response); m != nil {
		if critique := strings.TrimSpace(m[1]); critique != "" {
			return critique
		}
	}
	// No structured section: take the first few substantial prose lines.
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "##") || bulletRe.MatchString(line) || len(line) <= 20 {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 3 {
			break
		}
	}
	if len(lines) == 0 {
		return "Review completed, but no critique was produced."
	}
	return strings.Join(lines, " ")
}

// splitBullets splits a feedback section into items, folding continuation
// lines into the preceding bullet. Items too short to act on are dropped.
func splitBullets(text string) []string {
	var items []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		item := strings.TrimSpace(strings.Join(current, " "))
		if len(item) > 10 && !strings.HasPrefix(item, "## ") {
			items = append(items, item)
		}
		current = nil
	}
	for _, line := range strings.Split(text, "\n") {
		if bulletRe.MatchString(line) {
			flush()
			current = []string{strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(current) == 0 {
			continue
		}
		current = append(current, trimmed)
	}
	flush()
	if len(items) > maxFeedbackItems {
		items = items[:maxFeedbackItems]
	}
	return items
}

func shouldRegenerate(response string) bool {
	if m := recommendationRe.FindStringSubmatch(response); m != nil {
		return strings.EqualFold(m[1], "REGENERATE")
	}
	lower := strings.ToLower(response)
	for _, keyword := range []string{"regenerate", "rewrite", "start over", "try again", "needs significant improvement"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
