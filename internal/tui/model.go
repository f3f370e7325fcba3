package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hedwig/internal/domain"
	"hedwig/internal/history"
	"hedwig/internal/profile"
	"hedwig/internal/prompt"
	"hedwig/internal/review"
)

// Retriever is the TUI-facing subset of the retrieval engine.
type Retriever interface {
	Retrieve(query string, filters domain.Filters) (domain.Result, error)
}

// Drafter generates an email draft from a prompt.
type Drafter interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// Reviewer critiques a generated draft.
type Reviewer interface {
	Review(ctx context.Context, req review.Request) (review.Result, error)
}

// draftMsg carries a finished drafting call back into the update loop.
type draftMsg struct {
	draft string
	err   error
}

// reviewMsg carries a finished review call back into the update loop.
type reviewMsg struct {
	result review.Result
	err    error
}

// Deps are the collaborators the chat model is built from.
type Deps struct {
	Retriever   Retriever
	Drafter     Drafter
	Reviewer    Reviewer
	History     *history.Manager
	Builder     *prompt.Builder
	Profile     profile.Profile
	ProfilePath string
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	retriever   Retriever
	drafter     Drafter
	reviewer    Reviewer
	history     *history.Manager
	builder     *prompt.Builder
	prof        profile.Profile
	profilePath string

	input    textinput.Model
	viewport viewport.Model

	transcript []string
	filters    domain.Filters
	status     string
	lastDraft  string
	busy       bool
	drafted    bool
	ready      bool
}

// New creates the chat model.
func New(d Deps) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe the email you need and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		retriever:   d.Retriever,
		drafter:     d.Drafter,
		reviewer:    d.Reviewer,
		history:     d.History,
		builder:     d.Builder,
		prof:        d.Profile,
		profilePath: d.ProfilePath,
		input:       ti,
		viewport:    vp,
		status:      "Ready. Describe the email you need, or /help.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and completion events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 2 + ih + 1 // header + input frame + status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-th)
		m.viewport.SetContent(m.renderTranscript())
		return m, nil
	case draftMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		kind := history.Draft
		if m.drafted {
			kind = history.RevisedDraft
		}
		m.history.Add(kind, msg.draft)
		m.drafted = true
		m.lastDraft = msg.draft
		m.transcript = append(m.transcript, assistantStyle.Render("Hedwig:")+"\n"+msg.draft)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case reviewMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Review unavailable: " + msg.err.Error()
			return m, nil
		}
		m.transcript = append(m.transcript, renderReview(msg.result))
		if msg.result.Regenerate {
			m.status = "Review suggests regenerating; describe the changes you want."
		} else {
			m.status = "Review complete; the draft looks good to send."
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.busy {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			if strings.HasPrefix(text, "/") {
				cmd := m.handleCommand(text)
				m.viewport.SetContent(m.renderTranscript())
				return m, cmd
			}
			return m.submit(text)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit records the user turn, runs retrieval synchronously (it is
// in-memory and fast) and kicks off the drafting call as a command.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	kind := history.InitialPrompt
	if m.history.Len() > 0 {
		kind = history.Feedback
	}
	m.history.Add(kind, text)
	m.transcript = append(m.transcript, userStyle.Render("You:")+"\n"+text)

	query := m.builder.BuildQuery(m.history.UserMessages())
	res, err := m.retriever.Retrieve(query, m.filters)
	if err != nil {
		// Proceed without style guidance; retrieval failure never blocks drafting.
		m.status = "Template retrieval unavailable: " + err.Error()
		res = domain.Result{}
	} else if res.Accepted {
		m.status = fmt.Sprintf("Template: %s (similarity %.2f)", res.Scroll.ID, res.Score)
	} else {
		m.status = "No template matched closely enough; drafting without style guidance."
	}
	m.builder.Remember(res)

	draftPrompt := m.builder.BuildDraftPrompt(m.history.Context(), res)
	m.busy = true
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	d := m.drafter
	return m, func() tea.Msg {
		draft, err := d.Draft(context.Background(), draftPrompt)
		return draftMsg{draft: draft, err: err}
	}
}

func (m *Model) handleCommand(text string) tea.Cmd {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/help":
		m.transcript = append(m.transcript, systemStyle.Render(
			"Commands: /filter industry=X tone=Y use_case=Z role=R, /review, /profile [field=value ...], /reset, /help"))
	case "/reset":
		m.filters = domain.Filters{}
		m.status = "Filters cleared."
	case "/filter":
		for _, f := range fields[1:] {
			key, value, ok := strings.Cut(f, "=")
			if !ok {
				continue
			}
			value = strings.ReplaceAll(value, "_", " ")
			switch key {
			case "industry":
				m.filters.Industry = value
			case "tone":
				m.filters.Tone = value
			case "use_case":
				m.filters.UseCase = value
			case "role":
				m.filters.Role = value
			}
		}
		m.status = fmt.Sprintf("Filters: %+v", m.filters)
	case "/review":
		return m.startReview()
	case "/profile":
		m.handleProfile(fields[1:])
	default:
		m.status = "Unknown command. Try /help."
	}
	return nil
}

// startReview kicks off a critique of the most recent draft.
func (m *Model) startReview() tea.Cmd {
	if m.lastDraft == "" {
		m.status = "Nothing to review yet; draft an email first."
		return nil
	}
	req := review.Request{
		Email:       m.lastDraft,
		Scroll:      m.builder.CachedScroll(),
		UserContext: m.builder.BuildQuery(m.history.UserMessages()),
		Industry:    m.filters.Industry,
	}
	m.busy = true
	r := m.reviewer
	return func() tea.Msg {
		res, err := r.Review(context.Background(), req)
		return reviewMsg{result: res, err: err}
	}
}

// handleProfile shows the sender profile, or updates and persists it when
// field=value pairs are given.
func (m *Model) handleProfile(args []string) {
	if len(args) == 0 {
		if m.prof.Empty() {
			m.transcript = append(m.transcript, systemStyle.Render(
				"No profile set. Use /profile name=... title=... company=... email=... phone=... website=..."))
		} else {
			m.transcript = append(m.transcript, systemStyle.Render("Profile:")+"\n"+m.prof.Render())
		}
		return
	}
	changed := false
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		if m.prof.Set(key, strings.ReplaceAll(value, "_", " ")) {
			changed = true
		} else {
			m.status = "Unknown profile field: " + key
			return
		}
	}
	if !changed {
		m.status = "Nothing to update. Use /profile field=value."
		return
	}
	if err := profile.Save(m.profilePath, m.prof); err != nil {
		m.status = "Failed to save profile: " + err.Error()
		return
	}
	m.builder.SetProfile(m.prof)
	m.status = "Profile saved."
}

func renderReview(res review.Result) string {
	var sb strings.Builder
	sb.WriteString(assistantStyle.Render("Review:") + "\n" + res.Critique)
	if len(res.Feedback) > 0 {
		sb.WriteString("\n\nSuggestions:")
		for _, item := range res.Feedback {
			sb.WriteString("\n  - " + item.Text)
		}
	}
	if res.Regenerate {
		sb.WriteString("\n\nRecommendation: regenerate this draft.")
	}
	return sb.String()
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Hedwig - email drafting assistant")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.statusLine())
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) statusLine() string {
	if m.busy {
		return "Working..."
	}
	return m.status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No messages yet."
	}
	return strings.Join(m.transcript, "\n\n")
}

var (
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	systemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
