package xmi

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strconv"
	"strings"
)

// Annotation element names written by the cTAKES XMI serializer.
const (
	elemSofa             = "Sofa"
	elemDiseaseDisorder  = "DiseaseDisorderMention"
	elemMedication       = "MedicationMention"
	elemProcedure        = "ProcedureMention"
	elemAnatomicalSite   = "AnatomicalSiteMention"
	elemSignSymptom      = "SignSymptomMention"
	elemUmlsConcept      = "UmlsConcept"
	elemLocationOf       = "LocationOfTextRelation"
	elemDegreeOf         = "DegreeOfTextRelation"
	elemRelationArgument = "RelationArgument"
	elemTimeMention      = "TimeMention"
	elemEventMention     = "EventMention"
	elemTemporalRelation = "TemporalTextRelation"
	elemSentence         = "Sentence"

	initialView = "_InitialView"
)

type rawMention struct {
	id          string
	begin       int32
	end         int32
	polarity    int
	subject     string
	historyOf   int
	conditional bool
	conceptIDs  []string
}

type rawTime struct {
	id        string
	begin     int32
	end       int32
	timeClass string
}

type rawEvent struct {
	id        string
	begin     int32
	end       int32
	eventType string
	polarity  int
}

type rawRelation struct {
	id       string
	category string
	arg1     string
	arg2     string
}

type rawSentence struct {
	id     string
	begin  int32
	end    int32
	number int32
}

type parser struct {
	sofaText    string
	sofaRunes   []rune
	hasSofa     bool
	sofaInitial bool
	mentions    map[string][]rawMention
	concepts    map[string]types.Concept
	relArgs     map[string]string
	locationOf  []rawRelation
	degreeOf    []rawRelation
	temporal    []rawRelation
	times       []rawTime
	events      []rawEvent
	sentences   []rawSentence
	spans       map[string]types.Span
}

// ParseFile reads an XMI annotation file and converts it to a document.
func ParseFile(filePath string) (*types.Document, error) {
	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read annotation file %s: %w", filePath, err)
	}
	doc, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("parse annotation file %s: %w", filePath, err)
	}
	return doc, nil
}

// Parse converts raw XMI bytes into a document. Annotation types absent from
// the file produce empty collections; relations whose arguments cannot be
// resolved are dropped.
func Parse(data []byte) (*types.Document, error) {
	p := parser{
		mentions: map[string][]rawMention{},
		concepts: map[string]types.Concept{},
		relArgs:  map[string]string{},
		spans:    map[string]types.Span{},
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		element, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		p.consume(element)
	}

	return p.build(), nil
}

func (p *parser) consume(element xml.StartElement) {
	attrs := make(map[string]string, len(element.Attr))
	for _, a := range element.Attr {
		attrs[a.Name.Local] = a.Value
	}

	// Index every spanned annotation so relation arguments can resolve
	// against types this parser does not otherwise model.
	if id, ok := attrs["id"]; ok {
		if begin, end, ok := spanOf(attrs); ok {
			p.spans[id] = types.Span{Begin: begin, End: end}
		}
	}

	switch element.Name.Local {
	case elemSofa:
		text, ok := attrs["sofaString"]
		if !ok {
			return
		}
		isInitial := attrs["sofaID"] == initialView
		if !p.hasSofa || (isInitial && !p.sofaInitial) {
			p.sofaText = text
			p.hasSofa = true
			p.sofaInitial = isInitial
		}

	case elemDiseaseDisorder:
		p.addMention(types.CategoryDiseases, attrs)
	case elemMedication:
		p.addMention(types.CategoryMedications, attrs)
	case elemProcedure:
		p.addMention(types.CategoryProcedures, attrs)
	case elemAnatomicalSite:
		p.addMention(types.CategoryAnatomicalSites, attrs)
	case elemSignSymptom:
		p.addMention(types.CategorySignsSymptoms, attrs)

	case elemUmlsConcept:
		id, ok := attrs["id"]
		if !ok || attrs["cui"] == "" {
			return
		}
		p.concepts[id] = types.Concept{
			CUI:           attrs["cui"],
			PreferredText: attrs["preferredText"],
			CodingScheme:  strings.ToLower(attrs["codingScheme"]),
		}

	case elemRelationArgument:
		id, ok := attrs["id"]
		if !ok {
			return
		}
		if argument, ok := attrs["argument"]; ok {
			p.relArgs[id] = argument
		}

	case elemLocationOf:
		if rel, ok := relationOf(attrs); ok {
			p.locationOf = append(p.locationOf, rel)
		}
	case elemDegreeOf:
		if rel, ok := relationOf(attrs); ok {
			p.degreeOf = append(p.degreeOf, rel)
		}
	case elemTemporalRelation:
		if rel, ok := relationOf(attrs); ok {
			p.temporal = append(p.temporal, rel)
		}

	case elemTimeMention:
		id, ok := attrs["id"]
		if !ok {
			return
		}
		begin, end, ok := spanOf(attrs)
		if !ok {
			return
		}
		p.times = append(p.times, rawTime{
			id:        id,
			begin:     begin,
			end:       end,
			timeClass: attrs["timeClass"],
		})

	case elemEventMention:
		id, ok := attrs["id"]
		if !ok {
			return
		}
		begin, end, ok := spanOf(attrs)
		if !ok {
			return
		}
		p.events = append(p.events, rawEvent{
			id:        id,
			begin:     begin,
			end:       end,
			eventType: attrs["eventType"],
			polarity:  intOf(attrs, "polarity", 0),
		})

	case elemSentence:
		id, ok := attrs["id"]
		if !ok {
			return
		}
		begin, end, ok := spanOf(attrs)
		if !ok {
			return
		}
		p.sentences = append(p.sentences, rawSentence{
			id:     id,
			begin:  begin,
			end:    end,
			number: int32(intOf(attrs, "sentenceNumber", 0)),
		})
	}
}

func (p *parser) addMention(category string, attrs map[string]string) {
	id, ok := attrs["id"]
	if !ok {
		return
	}
	begin, end, ok := spanOf(attrs)
	if !ok {
		return
	}
	mention := rawMention{
		id:        id,
		begin:     begin,
		end:       end,
		polarity:  intOf(attrs, "polarity", 0),
		subject:   types.SubjectPatient,
		historyOf: intOf(attrs, "historyOf", 0),
	}
	if subject, ok := attrs["subject"]; ok && subject != "" {
		mention.subject = subject
	}
	if conditional, ok := attrs["conditional"]; ok {
		parsed, err := strconv.ParseBool(conditional)
		if err == nil {
			mention.conditional = parsed
		}
	}
	if conceptArr, ok := attrs["ontologyConceptArr"]; ok {
		mention.conceptIDs = strings.Fields(conceptArr)
	}
	p.mentions[category] = append(p.mentions[category], mention)
}

func (p *parser) build() *types.Document {
	p.sofaRunes = []rune(p.sofaText)
	doc := types.Document{
		Text: p.sofaText,
		Entities: types.Entities{
			Diseases:        p.buildEntities(types.CategoryDiseases),
			Medications:     p.buildEntities(types.CategoryMedications),
			Procedures:      p.buildEntities(types.CategoryProcedures),
			AnatomicalSites: p.buildEntities(types.CategoryAnatomicalSites),
			SignsSymptoms:   p.buildEntities(types.CategorySignsSymptoms),
		},
		Relations: types.Relations{
			LocationOf: []*types.Relation{},
			DegreeOf:   []*types.Relation{},
		},
		Temporal: types.TemporalData{
			TimeMentions:      []*types.TimeMention{},
			Events:            []*types.Event{},
			TemporalRelations: []*types.TemporalRelation{},
		},
		Sentences: []*types.Sentence{},
	}

	for _, raw := range p.locationOf {
		if rel, ok := p.resolveRelation(raw); ok {
			doc.Relations.LocationOf = append(doc.Relations.LocationOf, rel)
		}
	}
	for _, raw := range p.degreeOf {
		if rel, ok := p.resolveRelation(raw); ok {
			doc.Relations.DegreeOf = append(doc.Relations.DegreeOf, rel)
		}
	}
	for _, raw := range p.temporal {
		if rel, ok := p.resolveRelation(raw); ok {
			doc.Temporal.TemporalRelations = append(doc.Temporal.TemporalRelations, &types.TemporalRelation{
				ID:         rel.ID,
				Category:   rel.Category,
				SourceID:   rel.SourceID,
				SourceText: rel.SourceText,
				TargetID:   rel.TargetID,
				TargetText: rel.TargetText,
			})
		}
	}

	for _, raw := range p.times {
		doc.Temporal.TimeMentions = append(doc.Temporal.TimeMentions, &types.TimeMention{
			ID:        raw.id,
			Span:      types.Span{Begin: raw.begin, End: raw.end},
			Text:      p.coveredText(raw.begin, raw.end),
			TimeClass: raw.timeClass,
		})
	}
	for _, raw := range p.events {
		doc.Temporal.Events = append(doc.Temporal.Events, &types.Event{
			ID:        raw.id,
			Span:      types.Span{Begin: raw.begin, End: raw.end},
			Text:      p.coveredText(raw.begin, raw.end),
			EventType: raw.eventType,
			Polarity:  raw.polarity,
		})
	}
	for _, raw := range p.sentences {
		doc.Sentences = append(doc.Sentences, &types.Sentence{
			ID:     raw.id,
			Span:   types.Span{Begin: raw.begin, End: raw.end},
			Text:   p.coveredText(raw.begin, raw.end),
			Number: raw.number,
		})
	}

	sortMentions := func(entities []*types.Entity) {
		sort.SliceStable(entities, func(i, j int) bool {
			if entities[i].Begin != entities[j].Begin {
				return entities[i].Begin < entities[j].Begin
			}
			return entities[i].End < entities[j].End
		})
	}
	sortMentions(doc.Entities.Diseases)
	sortMentions(doc.Entities.Medications)
	sortMentions(doc.Entities.Procedures)
	sortMentions(doc.Entities.AnatomicalSites)
	sortMentions(doc.Entities.SignsSymptoms)

	sort.SliceStable(doc.Temporal.TimeMentions, func(i, j int) bool {
		if doc.Temporal.TimeMentions[i].Begin != doc.Temporal.TimeMentions[j].Begin {
			return doc.Temporal.TimeMentions[i].Begin < doc.Temporal.TimeMentions[j].Begin
		}
		return doc.Temporal.TimeMentions[i].End < doc.Temporal.TimeMentions[j].End
	})
	sort.SliceStable(doc.Temporal.Events, func(i, j int) bool {
		if doc.Temporal.Events[i].Begin != doc.Temporal.Events[j].Begin {
			return doc.Temporal.Events[i].Begin < doc.Temporal.Events[j].Begin
		}
		return doc.Temporal.Events[i].End < doc.Temporal.Events[j].End
	})
	sort.SliceStable(doc.Sentences, func(i, j int) bool {
		if doc.Sentences[i].Begin != doc.Sentences[j].Begin {
			return doc.Sentences[i].Begin < doc.Sentences[j].Begin
		}
		return doc.Sentences[i].End < doc.Sentences[j].End
	})

	return &doc
}

func (p *parser) buildEntities(category string) []*types.Entity {
	raws := p.mentions[category]
	entities := make([]*types.Entity, 0, len(raws))
	for _, raw := range raws {
		entity := types.Entity{
			ID:          raw.id,
			Span:        types.Span{Begin: raw.begin, End: raw.end},
			Text:        p.coveredText(raw.begin, raw.end),
			Polarity:    raw.polarity,
			Subject:     raw.subject,
			HistoryOf:   raw.historyOf,
			Conditional: raw.conditional,
		}
		for _, conceptID := range raw.conceptIDs {
			if concept, ok := p.concepts[conceptID]; ok {
				entity.Concepts = append(entity.Concepts, concept)
			}
		}
		entities = append(entities, &entity)
	}
	return entities
}

func (p *parser) resolveRelation(raw rawRelation) (*types.Relation, bool) {
	sourceID, ok := p.relArgs[raw.arg1]
	if !ok {
		return nil, false
	}
	targetID, ok := p.relArgs[raw.arg2]
	if !ok {
		return nil, false
	}
	sourceSpan, ok := p.spans[sourceID]
	if !ok {
		return nil, false
	}
	targetSpan, ok := p.spans[targetID]
	if !ok {
		return nil, false
	}
	return &types.Relation{
		ID:         raw.id,
		Category:   raw.category,
		SourceID:   sourceID,
		SourceText: p.coveredText(sourceSpan.Begin, sourceSpan.End),
		TargetID:   targetID,
		TargetText: p.coveredText(targetSpan.Begin, targetSpan.End),
	}, true
}

// coveredText slices the sofa by code point offsets, clamping spans that
// fall outside the text.
func (p *parser) coveredText(begin, end int32) string {
	if begin < 0 {
		begin = 0
	}
	if end > int32(len(p.sofaRunes)) {
		end = int32(len(p.sofaRunes))
	}
	if begin >= end {
		return ""
	}
	return string(p.sofaRunes[begin:end])
}

func relationOf(attrs map[string]string) (rawRelation, bool) {
	id, ok := attrs["id"]
	if !ok {
		return rawRelation{}, false
	}
	arg1, ok := attrs["arg1"]
	if !ok {
		return rawRelation{}, false
	}
	arg2, ok := attrs["arg2"]
	if !ok {
		return rawRelation{}, false
	}
	return rawRelation{
		id:       id,
		category: attrs["category"],
		arg1:     arg1,
		arg2:     arg2,
	}, true
}

func spanOf(attrs map[string]string) (int32, int32, bool) {
	beginRaw, ok := attrs["begin"]
	if !ok {
		return 0, 0, false
	}
	endRaw, ok := attrs["end"]
	if !ok {
		return 0, 0, false
	}
	begin, err := strconv.ParseInt(beginRaw, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	end, err := strconv.ParseInt(endRaw, 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return int32(begin), int32(end), true
}

func intOf(attrs map[string]string, name string, fallback int) int {
	raw, ok := attrs[name]
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
