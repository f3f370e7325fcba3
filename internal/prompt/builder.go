package prompt

import (
	"strings"

	"hedwig/internal/domain"
	"hedwig/internal/profile"
)

// Builder assembles drafting prompts from the sender profile, tone settings,
// conversation context and the retrieved scroll. It caches the first accepted
// scroll of a conversation so writing guidance stays consistent across
// feedback turns even when a later retrieval surfaces a different scroll.
type Builder struct {
	profile  profile.Profile
	tone     string
	language string
	cached   *domain.Scroll
}

// NewBuilder creates a prompt builder for one conversation.
func NewBuilder(p profile.Profile, tone, language string) *Builder {
	if language == "" {
		language = "English"
	}
	return &Builder{profile: p, tone: tone, language: language}
}

// SetProfile replaces the sender profile used by subsequent prompts.
func (b *Builder) SetProfile(p profile.Profile) { b.profile = p }

// BuildQuery joins the user's messages (initial request plus feedback, in
// order) into the retrieval query context.
func (b *Builder) BuildQuery(userMessages []string) string {
	return strings.Join(userMessages, "\n")
}

// Remember pins the first accepted scroll for the conversation.
func (b *Builder) Remember(res domain.Result) {
	if b.cached == nil && res.Accepted {
		b.cached = res.Scroll
	}
}

// CachedScroll returns the pinned scroll, if any.
func (b *Builder) CachedScroll() *domain.Scroll { return b.cached }

// BuildDraftPrompt composes the full LLM prompt for the next draft. res is
// the latest retrieval outcome; when it carries no scroll, the pinned scroll
// (if any) still supplies style reference and guidance.
func (b *Builder) BuildDraftPrompt(conversation string, res domain.Result) string {
	scroll := res.Scroll
	if scroll == nil {
		scroll = b.cached
	}

	var sb strings.Builder
	sb.WriteString("You are an expert email-drafting assistant writing a sales/outreach email on behalf of the sender.\n\n")

	if !b.profile.Empty() {
		sb.WriteString("Sender information:\n")
		sb.WriteString(b.profile.Render())
		sb.WriteString("\n\n")
	}

	sb.WriteString("Write the email in ")
	sb.WriteString(b.language)
	sb.WriteString(".\n")
	if instructions := ToneInstructions(b.tone); instructions != "" {
		sb.WriteString("Tone: ")
		sb.WriteString(instructions)
		sb.WriteString("\n")
	}
	sb.WriteString("\nConversation so far:\n")
	sb.WriteString(conversation)
	sb.WriteString("\n")

	if scroll != nil {
		sb.WriteString("\nReference template (use only for style and structure; never copy it verbatim):\n")
		if scroll.Subject != "" {
			sb.WriteString("Subject: ")
			sb.WriteString(scroll.Subject)
			sb.WriteString("\n")
		}
		sb.WriteString(scroll.Body)
		sb.WriteString("\n")
		if g := formatGuidance(scroll.Guidance); g != "" {
			sb.WriteString("\nWriting guidance you must follow:\n")
			sb.WriteString(g)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nNow write a completely original email for the user's specific situation. Respond with the email only.")
	return sb.String()
}

func formatGuidance(g domain.Guidance) string {
	var lines []string
	if len(g.AvoidPhrases) > 0 {
		lines = append(lines, "Avoid these phrases: "+strings.Join(g.AvoidPhrases, ", "))
	}
	if len(g.PreferredPhrases) > 0 {
		lines = append(lines, "Use these phrases instead: "+strings.Join(g.PreferredPhrases, ", "))
	}
	if len(g.WritingTips) > 0 {
		lines = append(lines, "Writing tips: "+strings.Join(g.WritingTips, "; "))
	}
	return strings.Join(lines, "\n")
}

// ToneInstructions maps a tone name to drafting instructions. Unknown tones
// yield no extra instruction.
func ToneInstructions(tone string) string {
	switch strings.ToLower(tone) {
	case "professional":
		return "Use clear, concise, formal business language. Avoid slang and overly casual expressions; keep the email respectful, objective and precise."
	case "casual":
		return "Use simple, easy-to-understand language. Keep it brief, get to the point, and feel free to use contractions and a relaxed style."
	case "friendly":
		return "Write in a warm, approachable, personable manner. Show genuine interest in the recipient while staying professional."
	case "formal":
		return "Use highly structured, polite, respectful language. No contractions or colloquialisms; address the recipient with appropriate titles and follow traditional business etiquette."
	case "natural":
		return "Use simple language that does not sound machine-written. No exotic words, no overly peppy phrasing, no em dashes."
	default:
		return ""
	}
}
