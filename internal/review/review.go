package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hedwig/internal/domain"
)

// FeedbackItem is one concrete suggestion the user can act on directly.
type FeedbackItem struct {
	ID   string
	Text string
}

// Result is the outcome of reviewing one draft: a conversational critique,
// actionable suggestions, and whether the draft is weak enough to regenerate.
type Result struct {
	Critique   string
	Feedback   []FeedbackItem
	Regenerate bool
}

// Generator produces text from a prompt. Satisfied by llm.Client.
type Generator interface {
	Draft(ctx context.Context, prompt string) (string, error)
}

// Request carries the draft under review plus the context it was written
// against. Scroll and UserContext are optional; Industry falls back to the
// scroll's metadata.
type Request struct {
	Email       string
	Scroll      *domain.Scroll
	UserContext string
	Industry    string
}

// Agent critiques generated drafts: it builds a review prompt, runs it
// through the LLM and parses the response into a structured Result.
type Agent struct {
	llm Generator
	log *slog.Logger
}

// NewAgent creates a review agent on top of the drafting client.
func NewAgent(llm Generator, log *slog.Logger) *Agent {
	if log == nil {
		log = slog.Default()
	}
	return &Agent{llm: llm, log: log}
}

// Review critiques the draft. The parser is tolerant of loosely formatted
// responses, so only an empty draft or a failed LLM call yields an error.
func (a *Agent) Review(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Email) == "" {
		return Result{}, errors.New("no draft to review")
	}
	response, err := a.llm.Draft(ctx, buildPrompt(req))
	if err != nil {
		return Result{}, fmt.Errorf("review call failed: %w", err)
	}
	res := parse(response)
	a.log.Info("draft reviewed", "feedback_items", len(res.Feedback), "regenerate", res.Regenerate)
	return res, nil
}

func buildPrompt(req Request) string {
	industry := req.Industry
	if industry == "" && req.Scroll != nil {
		industry = req.Scroll.Metadata.Industry
	}
	if industry == "" {
		industry = "the recipient's industry"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an experienced reviewer of outreach emails with industry knowledge of %s.\n\n", industry)
	sb.WriteString("Critique this generated outreach email rigorously:\n\n")
	sb.WriteString(req.Email)
	sb.WriteString("\n\nReview it for: whether it sounds written by a real person rather than AI; adherence to the reference template if one was used; marketing buzzwords or forbidden phrases; the provided writing guidelines and preferred language; leftover placeholders or missing context; tone fit for the industry; and whether it will achieve its purpose.\n")
	sb.WriteString("\nRespond in exactly this format:\n\n")
	sb.WriteString("## CRITIQUE\n[2-4 paragraphs of specific, conversational critique]\n\n")
	sb.WriteString("## FEEDBACK\n[3-5 bullet points; each a single concrete instruction the user can apply]\n\n")
	sb.WriteString("## RECOMMENDATION\n[KEEP if the email is good enough to send, REGENERATE if it needs significant rework]\n")

	if req.Scroll != nil {
		sb.WriteString("\nTemplate context:\n")
		g := req.Scroll.Guidance
		if len(g.AvoidPhrases) > 0 {
			sb.WriteString("Forbidden phrases to flag: " + strings.Join(g.AvoidPhrases, ", ") + "\n")
		}
		if len(g.PreferredPhrases) > 0 {
			sb.WriteString("Preferred language: " + strings.Join(g.PreferredPhrases, ", ") + "\n")
		}
		if len(g.WritingTips) > 0 {
			sb.WriteString("Writing guidelines: " + strings.Join(g.WritingTips, "; ") + "\n")
		}
	}
	if req.UserContext != "" {
		sb.WriteString("\nUser request context: " + req.UserContext + "\n")
	}
	return sb.String()
}
