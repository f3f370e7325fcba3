package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hedwig/internal/domain"
	"hedwig/internal/history"
	"hedwig/internal/profile"
	"hedwig/internal/prompt"
	"hedwig/internal/review"
)

type stubRetriever struct{}

func (stubRetriever) Retrieve(string, domain.Filters) (domain.Result, error) {
	return domain.Result{}, nil
}

type stubDrafter struct{}

func (stubDrafter) Draft(context.Context, string) (string, error) { return "draft", nil }

type stubReviewer struct {
	req    review.Request
	result review.Result
}

func (s *stubReviewer) Review(_ context.Context, req review.Request) (review.Result, error) {
	s.req = req
	return s.result, nil
}

func testModel(t *testing.T, reviewer Reviewer) Model {
	t.Helper()
	return New(Deps{
		Retriever:   stubRetriever{},
		Drafter:     stubDrafter{},
		Reviewer:    reviewer,
		History:     history.NewManager(0, 0, nil),
		Builder:     prompt.NewBuilder(profile.Profile{}, "natural", ""),
		ProfilePath: filepath.Join(t.TempDir(), "profile.yaml"),
	})
}

func TestReviewCommandNeedsDraft(t *testing.T) {
	m := testModel(t, &stubReviewer{})
	cmd := m.handleCommand("/review")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Nothing to review")
}

func TestReviewCommandCritiquesLastDraft(t *testing.T) {
	reviewer := &stubReviewer{result: review.Result{
		Critique: "The ask is buried.",
		Feedback: []review.FeedbackItem{{ID: "feedback_0", Text: "Move the ask up."}},
	}}
	m := testModel(t, reviewer)
	m.history.Add(history.InitialPrompt, "email a club about a dj set")
	m.lastDraft = "Hi, I'd love to play your club."
	m.filters.Industry = "Music & Entertainment"

	cmd := m.handleCommand("/review")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	msg, ok := cmd().(reviewMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, "Hi, I'd love to play your club.", reviewer.req.Email)
	assert.Equal(t, "email a club about a dj set", reviewer.req.UserContext)
	assert.Equal(t, "Music & Entertainment", reviewer.req.Industry)

	updated, _ := m.Update(msg)
	um := updated.(Model)
	assert.False(t, um.busy)
	joined := strings.Join(um.transcript, "\n")
	assert.Contains(t, joined, "The ask is buried.")
	assert.Contains(t, joined, "Move the ask up.")
	assert.Contains(t, um.status, "good to send")
}

func TestReviewRegenerateStatus(t *testing.T) {
	reviewer := &stubReviewer{result: review.Result{Critique: "Weak.", Regenerate: true}}
	m := testModel(t, reviewer)
	m.lastDraft = "draft"

	cmd := m.handleCommand("/review")
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	assert.Contains(t, updated.(Model).status, "regenerating")
}

func TestProfileCommandUpdatesAndSaves(t *testing.T) {
	m := testModel(t, &stubReviewer{})
	cmd := m.handleCommand("/profile name=Ada_Lovelace title=DJ")
	assert.Nil(t, cmd)
	assert.Equal(t, "Profile saved.", m.status)
	assert.Equal(t, "Ada Lovelace", m.prof.Name)

	saved, err := profile.Load(m.profilePath)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", saved.Name)
	assert.Equal(t, "DJ", saved.Title)
}

func TestProfileCommandRejectsUnknownField(t *testing.T) {
	m := testModel(t, &stubReviewer{})
	m.handleCommand("/profile shoe_size=42")
	assert.Contains(t, m.status, "Unknown profile field")
	_, err := os.Stat(m.profilePath)
	assert.True(t, os.IsNotExist(err), "nothing should be written for a rejected update")
}

func TestProfileCommandShowsCurrentProfile(t *testing.T) {
	m := testModel(t, &stubReviewer{})
	m.prof = profile.Profile{Name: "Ada Lovelace"}
	m.handleCommand("/profile")
	assert.Contains(t, strings.Join(m.transcript, "\n"), "Ada Lovelace")
}
