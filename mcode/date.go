package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"regexp"
	"strings"
)

// diagnosticKeywords mark events that confirm or establish a diagnosis.
var diagnosticKeywords = []string{
	"confirmed", "diagnosed", "diagnosis", "biopsy", "pathology",
	"detected", "identified", "laryngoscopy", "endoscopy",
	"imaging", "scan", "mammography", "colonoscopy",
}

// relativeDateKeywords reject time expressions like "several months" or
// "x weeks ago" that cannot anchor a diagnosis date.
var relativeDateKeywords = []string{
	"today", "yesterday", "tomorrow",
	"week", "month", "year", "day",
	"ago", "last", "next", "recent", "prior", "previous",
	"current", "now", "past",
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

// isAbsoluteDate reports whether a time expression names a fixed calendar
// date rather than a relative one.
func isAbsoluteDate(dateText string) bool {
	dateLower := strings.ToLower(strings.TrimSpace(dateText))
	if containsAny(dateLower, relativeDateKeywords) {
		return false
	}
	return yearPattern.MatchString(dateText)
}

// findDateViaTemporalRelations scans temporal relations for a time mention
// linked to a diagnostic event. The raw relations do not guarantee which
// argument is the time mention, so both orders are tried. First qualifying
// relation wins.
func findDateViaTemporalRelations(temporal *types.TemporalData) *types.TimeMention {
	timeByID := make(map[string]*types.TimeMention, len(temporal.TimeMentions))
	for _, mention := range temporal.TimeMentions {
		timeByID[mention.ID] = mention
	}
	eventByID := make(map[string]*types.Event, len(temporal.Events))
	for _, event := range temporal.Events {
		eventByID[event.ID] = event
	}

	for _, rel := range temporal.TemporalRelations {
		var mention *types.TimeMention
		var event *types.Event
		switch {
		case timeByID[rel.SourceID] != nil && eventByID[rel.TargetID] != nil:
			mention = timeByID[rel.SourceID]
			event = eventByID[rel.TargetID]
		case timeByID[rel.TargetID] != nil && eventByID[rel.SourceID] != nil:
			mention = timeByID[rel.TargetID]
			event = eventByID[rel.SourceID]
		default:
			continue
		}

		if !containsAny(strings.ToLower(event.Text), diagnosticKeywords) {
			continue
		}
		if !isAbsoluteDate(mention.Text) {
			continue
		}
		return mention
	}
	return nil
}

// extractAssertedDate resolves the primary cancer diagnosis date. Tier 1
// walks the temporal relation graph; tier 2 optionally asks the completion
// service to disambiguate. Tier 2 failures are logged and treated as no
// result.
func (e *Engine) extractAssertedDate(doc *types.Document) types.FieldTable {
	fields := types.NewFieldTable()

	docRunes := []rune(doc.Text)
	activeDiseases := FilterActivePatient(doc.Entities.Diseases, docRunes)
	if len(doc.Temporal.TimeMentions) == 0 || len(activeDiseases) == 0 {
		return fields
	}

	if mention := findDateViaTemporalRelations(&doc.Temporal); mention != nil {
		fields.Set(types.FieldPrimaryCancerAssertedDate, mention.Text)
		return fields
	}

	if e.options.EnableDisambiguation && e.disambiguator != nil {
		if date := e.disambiguator.DisambiguateDate(doc); date != "" {
			fields.Set(types.FieldPrimaryCancerAssertedDate, date)
		}
	}
	return fields
}
