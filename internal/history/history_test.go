package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummarizer struct {
	calls int
}

func (f *fakeSummarizer) Summarize(text string, maxSentences int) (string, error) {
	f.calls++
	return fmt.Sprintf("summary#%d", f.calls), nil
}

func TestAddAndMessages(t *testing.T) {
	m := NewManager(0, 0, nil)
	assert.NotEmpty(t, m.ConversationID())

	id := m.Add(InitialPrompt, "email a club about a dj set")
	assert.NotEmpty(t, id)
	m.Add(Draft, "Hi there, ...")

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, InitialPrompt, msgs[0].Type)
	assert.Equal(t, Draft, msgs[1].Type)
	assert.False(t, msgs[0].At.IsZero())
}

func TestMessagesReturnsCopy(t *testing.T) {
	m := NewManager(0, 0, nil)
	m.Add(InitialPrompt, "original")
	msgs := m.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "original", m.Messages()[0].Content)
}

func TestUserMessagesFilterTypes(t *testing.T) {
	m := NewManager(0, 0, nil)
	m.Add(InitialPrompt, "write the first email")
	m.Add(Draft, "draft one")
	m.Add(Feedback, "make it shorter")
	m.Add(RevisedDraft, "draft two")
	m.Add(System, "note")

	assert.Equal(t, []string{"write the first email", "make it shorter"}, m.UserMessages())
}

func TestContextRendering(t *testing.T) {
	m := NewManager(0, 0, nil)
	m.Add(InitialPrompt, "write the first email")
	m.Add(Draft, "draft one")
	m.Add(Feedback, "make it shorter")

	ctx := m.Context()
	assert.Contains(t, ctx, "[User request] write the first email")
	assert.Contains(t, ctx, "[Assistant draft] draft one")
	assert.Contains(t, ctx, "[User feedback] make it shorter")
	assert.False(t, strings.HasSuffix(ctx, "\n"))
}

func TestCompactionFoldsOlderHalf(t *testing.T) {
	s := &fakeSummarizer{}
	m := NewManager(50, 4, s)
	m.Add(InitialPrompt, "one")
	m.Add(Draft, "two")
	m.Add(Feedback, "three")
	assert.Zero(t, s.calls)

	m.Add(RevisedDraft, "four")
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "summary#1", m.Summary())
	assert.Equal(t, 2, m.Len())
	assert.Contains(t, m.Context(), "Earlier in this conversation (summarized): summary#1")
}

func TestNoCompactionWithoutSummarizer(t *testing.T) {
	m := NewManager(50, 4, nil)
	for i := 0; i < 6; i++ {
		m.Add(Feedback, "msg")
	}
	assert.Equal(t, 6, m.Len())
	assert.Empty(t, m.Summary())
}

func TestTrimToMaxLen(t *testing.T) {
	m := NewManager(3, 100, nil)
	for i := 0; i < 5; i++ {
		m.Add(Feedback, fmt.Sprintf("msg %d", i))
	}
	msgs := m.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg 2", msgs[0].Content)
	assert.Equal(t, "msg 4", msgs[2].Content)
}
