package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"fmt"
	"github.com/rs/zerolog"
	"regexp"
	"strconv"
	"strings"
)

// Completer is a text completion service used for date disambiguation.
type Completer interface {
	Complete(prompt string) (string, error)
}

// Disambiguator decides between candidate diagnosis dates with the help of
// an external completion service.
type Disambiguator struct {
	completer      Completer
	sentenceWindow int
	logger         zerolog.Logger
}

func NewDisambiguator(completer Completer, sentenceWindow int, logger zerolog.Logger) *Disambiguator {
	return &Disambiguator{
		completer:      completer,
		sentenceWindow: sentenceWindow,
		logger:         logger,
	}
}

var (
	thinkingPattern    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	firstNumberPattern = regexp.MustCompile(`\b(\d+)\b`)
)

// stripThinking removes reasoning blocks some models emit before the
// answer. Always applied before parsing.
func stripThinking(response string) string {
	return strings.TrimSpace(thinkingPattern.ReplaceAllString(response, ""))
}

// DisambiguateDate returns the diagnosis date text, or an empty string when
// no date qualifies or the completion service fails.
func (d *Disambiguator) DisambiguateDate(doc *types.Document) string {
	var dates []*types.TimeMention
	for _, mention := range doc.Temporal.TimeMentions {
		if strings.ToUpper(mention.TimeClass) == "DATE" {
			dates = append(dates, mention)
		}
	}
	if len(dates) == 0 {
		return ""
	}

	if len(dates) == 1 {
		date := dates[0]
		context := d.extractContext(date, doc.Sentences)
		if d.isDiagnosisDate(date.Text, context) {
			return date.Text
		}
		return ""
	}

	return d.rankDates(dates, doc.Sentences)
}

// extractContext returns the sentence containing the date plus the
// configured number of neighboring sentences on each side. Falls back to
// the bare mention text when no containing sentence is found.
func (d *Disambiguator) extractContext(date *types.TimeMention, sentences []*types.Sentence) string {
	containingIdx := -1
	for idx, sentence := range sentences {
		if sentence.Begin <= date.Begin && date.Begin < sentence.End {
			containingIdx = idx
			break
		}
	}
	if containingIdx < 0 {
		return date.Text
	}

	startIdx := containingIdx - d.sentenceWindow
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := containingIdx + d.sentenceWindow + 1
	if endIdx > len(sentences) {
		endIdx = len(sentences)
	}

	parts := make([]string, 0, endIdx-startIdx)
	for _, sentence := range sentences[startIdx:endIdx] {
		parts = append(parts, sentence.Text)
	}
	return strings.Join(parts, " ")
}

func (d *Disambiguator) isDiagnosisDate(dateText, context string) bool {
	response, err := d.completer.Complete(buildClassificationPrompt(dateText, context))
	if err != nil {
		d.logger.Err(err).Msg("Date classification request failed")
		return false
	}
	answer := strings.ToUpper(stripThinking(response))
	return strings.HasPrefix(answer, "YES")
}

// rankDates asks the completion service to pick one of several dates. The
// response is parsed for the first standalone integer and used as a 1-based
// index; anything out of range means no result.
func (d *Disambiguator) rankDates(dates []*types.TimeMention, sentences []*types.Sentence) string {
	response, err := d.completer.Complete(d.buildRankingPrompt(dates, sentences))
	if err != nil {
		d.logger.Err(err).Msg("Date ranking request failed")
		return ""
	}
	answer := stripThinking(response)

	match := firstNumberPattern.FindStringSubmatch(answer)
	if match == nil {
		return ""
	}
	selected, err := strconv.Atoi(match[1])
	if err != nil {
		return ""
	}
	if selected < 1 || selected > len(dates) {
		return ""
	}
	return dates[selected-1].Text
}

func buildClassificationPrompt(dateText, context string) string {
	return fmt.Sprintf(`You are a clinical date classifier. Analyze if the date is when the primary cancer was diagnosed.

Clinical text:
"%s"

Question: Is "%s" when the cancer was first diagnosed/confirmed?

Answer YES if:
- The text says diagnostic/biopsy/procedure confirmed cancer on or around this date
- The date is linked to initial diagnosis, pathology result, or cancer detection
- Keywords: "diagnosed", "confirmed", "detected", "identified", "biopsy"

Answer NO if:
- This is a staging scan, treatment start, surgery, or follow-up visit date
- This is family/past medical history (not this patient's cancer)
- Date is for imaging, labs, or tests unrelated to initial diagnosis

Answer with ONE word only: YES or NO

Answer:`, context, dateText)
}

func (d *Disambiguator) buildRankingPrompt(dates []*types.TimeMention, sentences []*types.Sentence) string {
	var blocks []string
	for idx, date := range dates {
		context := d.extractContext(date, sentences)
		blocks = append(blocks, fmt.Sprintf("Date %d: %s\nContext: \"%s\"\n", idx+1, date.Text, context))
	}

	return fmt.Sprintf(`You are a clinical date classifier. Multiple dates are mentioned in a clinical note. Identify which one is the PRIMARY CANCER DIAGNOSIS date.

%s

Question: Which date (if any) represents the PRIMARY CANCER DIAGNOSIS (initial diagnosis, biopsy confirmation)?

Instructions:
- Respond with ONLY the number (1, 2, 3, etc.) of the diagnosis date
- If none are diagnosis dates, respond with "NONE"
- Do NOT provide explanations or other text

Answer:`, strings.Join(blocks, "\n"))
}
