package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType classifies a conversation turn.
type MessageType string

const (
	InitialPrompt MessageType = "initial_prompt"
	Draft         MessageType = "draft"
	Feedback      MessageType = "feedback"
	RevisedDraft  MessageType = "revised_draft"
	System        MessageType = "system"
)

// Message is a single entry in the conversation log.
type Message struct {
	ID      string
	Type    MessageType
	Content string
	At      time.Time
}

// Summarizer compacts a block of text down to a few sentences.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Manager keeps the conversation log for one drafting session. When the log
// grows past summarizeAfter messages the older half is compacted through the
// summarizer, and the log is trimmed to maxLen. The manager is used from the
// single TUI update loop and needs no locking.
type Manager struct {
	conversationID string
	messages       []Message
	summary        string
	maxLen         int
	summarizeAfter int
	summarizer     Summarizer
}

// NewManager creates a history manager. maxLen and summarizeAfter fall back
// to 50 and 20 when non-positive; summarizer may be nil to disable
// compaction.
func NewManager(maxLen, summarizeAfter int, s Summarizer) *Manager {
	if maxLen <= 0 {
		maxLen = 50
	}
	if summarizeAfter <= 0 {
		summarizeAfter = 20
	}
	return &Manager{
		conversationID: uuid.NewString(),
		maxLen:         maxLen,
		summarizeAfter: summarizeAfter,
		summarizer:     s,
	}
}

// ConversationID returns the id assigned to this session.
func (m *Manager) ConversationID() string { return m.conversationID }

// Add appends a message and returns its id.
func (m *Manager) Add(t MessageType, content string) string {
	msg := Message{
		ID:      uuid.NewString(),
		Type:    t,
		Content: content,
		At:      time.Now(),
	}
	m.messages = append(m.messages, msg)
	if len(m.messages) >= m.summarizeAfter {
		m.compact()
	}
	if len(m.messages) > m.maxLen {
		m.messages = m.messages[len(m.messages)-m.maxLen:]
	}
	return msg.ID
}

// Len returns the number of retained messages.
func (m *Manager) Len() int { return len(m.messages) }

// Messages returns a copy of the retained conversation log.
func (m *Manager) Messages() []Message {
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Summary returns the compacted summary of trimmed turns, if any.
func (m *Manager) Summary() string { return m.summary }

// UserMessages returns the content of the initial prompt and every feedback
// turn in chronological order. This is the retriever's query context: what
// the user asked for, refined by what they pushed back on.
func (m *Manager) UserMessages() []string {
	var out []string
	for _, msg := range m.messages {
		if msg.Type == InitialPrompt || msg.Type == Feedback {
			out = append(out, msg.Content)
		}
	}
	return out
}

// Context renders the conversation for prompt construction, oldest first,
// prefixed with the running summary when one exists.
func (m *Manager) Context() string {
	var b strings.Builder
	if m.summary != "" {
		b.WriteString("Earlier in this conversation (summarized): ")
		b.WriteString(m.summary)
		b.WriteString("\n\n")
	}
	for _, msg := range m.messages {
		fmt.Fprintf(&b, "[%s] %s\n", label(msg.Type), msg.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// compact folds the older half of the log into the running summary.
func (m *Manager) compact() {
	if m.summarizer == nil {
		return
	}
	half := len(m.messages) / 2
	if half == 0 {
		return
	}
	var b strings.Builder
	if m.summary != "" {
		b.WriteString(m.summary)
		b.WriteString(" ")
	}
	for _, msg := range m.messages[:half] {
		b.WriteString(msg.Content)
		b.WriteString(" ")
	}
	summary, err := m.summarizer.Summarize(b.String(), 5)
	if err != nil {
		return
	}
	m.summary = summary
	m.messages = append([]Message(nil), m.messages[half:]...)
}

func label(t MessageType) string {
	switch t {
	case InitialPrompt:
		return "User request"
	case Draft, RevisedDraft:
		return "Assistant draft"
	case Feedback:
		return "User feedback"
	default:
		return "System"
	}
}
