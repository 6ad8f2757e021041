package types

// Sentence is a sentence boundary annotation over the note text.
type Sentence struct {
	ID string
	Span
	Text   string
	Number int32
}

// Document is the parsed annotation view of a single clinical note. Category
// slices are empty rather than nil when the annotation source produced
// nothing for a category, so consumers never need nil checks.
type Document struct {
	Text      string
	Entities  Entities
	Relations Relations
	Temporal  TemporalData
	Sentences []*Sentence
}

// EntityCount sums the entity mentions across all categories.
func (d *Document) EntityCount() int {
	total := 0
	for _, category := range d.Entities.All() {
		total += len(category.Entities)
	}
	return total
}
