package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
)

// mention builds an affirmed, current mention about the patient. The span
// is derived from the text length so fixtures stay consistent with the
// note text they are placed in.
func mention(id string, begin int32, text string) *types.Entity {
	return &types.Entity{
		ID:       id,
		Span:     types.Span{Begin: begin, End: begin + int32(len([]rune(text)))},
		Text:     text,
		Polarity: 1,
		Subject:  types.SubjectPatient,
	}
}

func negatedMention(id string, begin int32, text string) *types.Entity {
	entity := mention(id, begin, text)
	entity.Polarity = -1
	return entity
}

func codedMention(id string, begin int32, text, cui, preferred string) *types.Entity {
	entity := mention(id, begin, text)
	entity.Concepts = []types.Concept{{CUI: cui, PreferredText: preferred, CodingScheme: "snomedct_us"}}
	return entity
}

func locationOf(id, sourceID, sourceText, targetID, targetText string) *types.Relation {
	return &types.Relation{
		ID:         id,
		Category:   "LOCATION_OF",
		SourceID:   sourceID,
		SourceText: sourceText,
		TargetID:   targetID,
		TargetText: targetText,
	}
}

func timeMention(id string, begin int32, text, timeClass string) *types.TimeMention {
	return &types.TimeMention{
		ID:        id,
		Span:      types.Span{Begin: begin, End: begin + int32(len([]rune(text)))},
		Text:      text,
		TimeClass: timeClass,
	}
}

func event(id string, begin int32, text string) *types.Event {
	return &types.Event{
		ID:       id,
		Span:     types.Span{Begin: begin, End: begin + int32(len([]rune(text)))},
		Text:     text,
		Polarity: 1,
	}
}

func temporalRelation(id, sourceID, targetID string) *types.TemporalRelation {
	return &types.TemporalRelation{
		ID:       id,
		Category: "CONTAINS",
		SourceID: sourceID,
		TargetID: targetID,
	}
}

func sentence(id string, begin, end int32, text string, number int32) *types.Sentence {
	return &types.Sentence{
		ID:     id,
		Span:   types.Span{Begin: begin, End: end},
		Text:   text,
		Number: number,
	}
}
