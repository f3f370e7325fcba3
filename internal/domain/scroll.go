package domain

import "strings"

// Scroll is one curated email template: metadata for filtering, a body with
// {{placeholder}} tokens (never substituted by this program), and optional
// writing guidance injected into drafting prompts.
type Scroll struct {
	ID       string
	Path     string
	Metadata Metadata
	Subject  string
	Body     string
	Guidance Guidance
}

// Metadata describes a scroll for filtering and organization.
// Tags, UseCase, Tone and Industry are required at load time.
type Metadata struct {
	Tags        []string
	UseCase     string
	Tone        string
	Industry    string
	Role        string
	Difficulty  string
	Author      string
	DateCreated string
	SuccessRate float64
	Notes       string
}

// Guidance holds per-scroll writing guidance for prompt construction.
type Guidance struct {
	AvoidPhrases     []string
	PreferredPhrases []string
	WritingTips      []string
}

// Empty reports whether the guidance block carries nothing.
func (g Guidance) Empty() bool {
	return len(g.AvoidPhrases) == 0 && len(g.PreferredPhrases) == 0 && len(g.WritingTips) == 0
}

// MatchingText returns the text a scroll is embedded under: tags and notes
// first so curator intent outweighs boilerplate, then subject and body.
func (s Scroll) MatchingText() string {
	var parts []string
	if len(s.Metadata.Tags) > 0 {
		parts = append(parts, strings.Join(s.Metadata.Tags, " "))
	}
	if s.Metadata.Notes != "" {
		parts = append(parts, s.Metadata.Notes)
	}
	if s.Subject != "" {
		parts = append(parts, "Subject: "+s.Subject)
	}
	if s.Body != "" {
		parts = append(parts, s.Body)
	}
	return strings.Join(parts, "\n\n")
}

// Filters narrows retrieval candidates by exact metadata equality.
// Zero-valued fields are not applied.
type Filters struct {
	Industry string
	Tone     string
	UseCase  string
	Role     string
}

// Empty reports whether no filter field is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Matches reports whether metadata satisfies every set filter field.
func (f Filters) Matches(m Metadata) bool {
	if f.Industry != "" && f.Industry != m.Industry {
		return false
	}
	if f.Tone != "" && f.Tone != m.Tone {
		return false
	}
	if f.UseCase != "" && f.UseCase != m.UseCase {
		return false
	}
	if f.Role != "" && f.Role != m.Role {
		return false
	}
	return true
}

// Result is the outcome of one retrieval. Accepted reports whether the best
// score cleared the similarity threshold; when false, Scroll is nil and the
// caller proceeds without style guidance.
type Result struct {
	Scroll   *Scroll
	Score    float64
	Accepted bool
}
