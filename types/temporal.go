package types

// TimeMention is a temporal expression found in the note text.
type TimeMention struct {
	ID string
	Span
	Text      string
	TimeClass string
}

// Event is an event mention that temporal relations can point at.
type Event struct {
	ID string
	Span
	Text      string
	EventType string
	Polarity  int
}

// TemporalRelation links two annotations (events or time mentions) with a
// temporal category such as CONTAINS or OVERLAP.
type TemporalRelation struct {
	ID         string
	Category   string
	SourceID   string
	SourceText string
	TargetID   string
	TargetText string
}

// TemporalData bundles everything needed for diagnosis date extraction.
type TemporalData struct {
	TimeMentions      []*TimeMention
	Events            []*Event
	TemporalRelations []*TemporalRelation
}
