package types

// Relation links two entity mentions, already resolved through the argument
// indirection of the annotation source.
type Relation struct {
	ID         string
	Category   string
	SourceID   string
	SourceText string
	TargetID   string
	TargetText string
}

// Relations holds the semantic relations of a document by kind.
type Relations struct {
	LocationOf []*Relation
	DegreeOf   []*Relation
}
