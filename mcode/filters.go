package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"strings"
)

// familyContextWindow is the number of code points scanned before a mention
// for family relation markers. Kept small so patient findings that closely
// follow a family history sentence are not excluded.
const familyContextWindow = 50

var familyMarkers = []string{
	"maternal", "paternal", "mother", "father", "sister", "brother",
	"aunt", "uncle", "grandmother", "grandfather", "cousin",
	"family history", "family member", "relative", "daughter", "son",
}

// IsFamilyHistoryMention reports whether the text window immediately before
// the entity contains a family relation marker.
func IsFamilyHistoryMention(entity *types.Entity, docRunes []rune) bool {
	if len(docRunes) == 0 {
		return false
	}
	begin := entity.Begin
	if begin > int32(len(docRunes)) {
		begin = int32(len(docRunes))
	}
	if begin <= 0 {
		return false
	}
	start := begin - familyContextWindow
	if start < 0 {
		start = 0
	}
	context := strings.ToLower(string(docRunes[start:begin]))
	return containsAny(context, familyMarkers)
}

// FilterActivePatient keeps affirmed, current findings about the patient,
// dropping negated, historical, family member and family history context
// mentions.
func FilterActivePatient(entities []*types.Entity, docRunes []rune) []*types.Entity {
	filtered := make([]*types.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity.Negated() {
			continue
		}
		if entity.Subject != types.SubjectPatient {
			continue
		}
		if entity.HistoryOf != 0 {
			continue
		}
		if IsFamilyHistoryMention(entity, docRunes) {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

func nonNegated(entities []*types.Entity) []*types.Entity {
	filtered := make([]*types.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity.Negated() {
			continue
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
