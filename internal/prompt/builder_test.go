package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedwig/internal/domain"
	"hedwig/internal/profile"
)

func sampleScroll() *domain.Scroll {
	return &domain.Scroll{
		ID:      "dj.yaml",
		Subject: "DJ set for a night at {{venue_name}}",
		Body:    "Hi {{booker_name}}, I'd love an opening slot.",
		Guidance: domain.Guidance{
			AvoidPhrases:     []string{"huge fan of your venue"},
			PreferredPhrases: []string{"opening slot"},
			WritingTips:      []string{"Mention a concrete date range"},
		},
	}
}

func TestBuildQueryJoinsUserMessages(t *testing.T) {
	b := NewBuilder(profile.Profile{}, "natural", "")
	q := b.BuildQuery([]string{"email a club about a dj set", "make it shorter"})
	assert.Equal(t, "email a club about a dj set\nmake it shorter", q)
}

func TestBuildDraftPromptIncludesScrollAndGuidance(t *testing.T) {
	b := NewBuilder(profile.Profile{Name: "Ada Lovelace", Title: "DJ"}, "casual", "")
	res := domain.Result{Scroll: sampleScroll(), Score: 0.91, Accepted: true}

	p := b.BuildDraftPrompt("[User request] book a dj night", res)
	assert.Contains(t, p, "Ada Lovelace")
	assert.Contains(t, p, "Write the email in English.")
	assert.Contains(t, p, ToneInstructions("casual"))
	assert.Contains(t, p, "[User request] book a dj night")
	assert.Contains(t, p, "Subject: DJ set for a night at {{venue_name}}")
	assert.Contains(t, p, "Avoid these phrases: huge fan of your venue")
	assert.Contains(t, p, "Use these phrases instead: opening slot")
	assert.Contains(t, p, "Writing tips: Mention a concrete date range")
}

func TestBuildDraftPromptWithoutScroll(t *testing.T) {
	b := NewBuilder(profile.Profile{}, "natural", "")
	p := b.BuildDraftPrompt("[User request] anything", domain.Result{})
	assert.NotContains(t, p, "Reference template")
	assert.NotContains(t, p, "Writing guidance")
}

func TestRememberPinsFirstAcceptedScroll(t *testing.T) {
	b := NewBuilder(profile.Profile{}, "natural", "")
	require.Nil(t, b.CachedScroll())

	b.Remember(domain.Result{Score: 0.4})
	assert.Nil(t, b.CachedScroll(), "rejected results must not be pinned")

	first := sampleScroll()
	b.Remember(domain.Result{Scroll: first, Score: 0.9, Accepted: true})
	require.NotNil(t, b.CachedScroll())
	assert.Equal(t, "dj.yaml", b.CachedScroll().ID)

	other := &domain.Scroll{ID: "other.yaml", Body: "different"}
	b.Remember(domain.Result{Scroll: other, Score: 0.95, Accepted: true})
	assert.Equal(t, "dj.yaml", b.CachedScroll().ID, "first pin wins for the whole conversation")
}

func TestCachedScrollBacksEmptyRetrieval(t *testing.T) {
	b := NewBuilder(profile.Profile{}, "natural", "")
	b.Remember(domain.Result{Scroll: sampleScroll(), Score: 0.9, Accepted: true})

	p := b.BuildDraftPrompt("[User feedback] shorter please", domain.Result{Score: 0.3})
	assert.Contains(t, p, "opening slot", "pinned scroll still supplies guidance")
}

func TestToneInstructions(t *testing.T) {
	known := []string{"professional", "casual", "friendly", "formal", "natural"}
	for _, tone := range known {
		assert.NotEmpty(t, ToneInstructions(tone), tone)
		assert.Equal(t, ToneInstructions(tone), ToneInstructions(strings.ToUpper(tone)))
	}
	assert.Empty(t, ToneInstructions("sarcastic"))
}
