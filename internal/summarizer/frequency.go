package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"hedwig/internal/textnorm"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Frequency is an extractive summarizer that ranks sentences by the
// normalized frequency of their terms. It compacts older conversation turns
// when the chat history grows past its threshold.
type Frequency struct{}

// NewFrequency creates a frequency-based sentence-ranking summarizer.
func NewFrequency() *Frequency { return &Frequency{} }

// Summarize returns at most maxSentences of the input, chosen by term
// frequency and kept in their original order.
func (s *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range textnorm.Tokenize(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, sent := range sentences {
		tokens := textnorm.Tokenize(sent)
		total := 0.0
		for _, tok := range tokens {
			total += freq[tok]
		}
		// Length-normalized so long sentences do not dominate
		if n := float64(len(tokens)); n > 0 {
			total /= math.Sqrt(n)
		}
		scores[i] = scored{i, total}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}
