package types

// Concept is a single ontology code attached to an entity mention.
type Concept struct {
	CUI           string
	PreferredText string
	CodingScheme  string
}

// Entity is a clinical mention (disease, medication, procedure, anatomical
// site or sign/symptom) with its assertion attributes and ontology codes.
type Entity struct {
	ID string
	Span
	Text        string
	Polarity    int
	Subject     string
	HistoryOf   int
	Conditional bool
	Concepts    []Concept
}

const (
	SubjectPatient      = "patient"
	SubjectFamilyMember = "family_member"
)

func (e *Entity) Negated() bool {
	return e.Polarity < 0
}

// PrimaryCUI returns the identifier of the first attached concept, or an
// empty string when the mention carries no codes.
func (e *Entity) PrimaryCUI() string {
	if len(e.Concepts) == 0 {
		return ""
	}
	return e.Concepts[0].CUI
}

// PreferredText returns the preferred label of the first attached concept,
// or an empty string when the mention carries no codes.
func (e *Entity) PreferredText() string {
	if len(e.Concepts) == 0 {
		return ""
	}
	return e.Concepts[0].PreferredText
}

// PreferredOrText returns the preferred label when one is present and the
// covered text otherwise.
func (e *Entity) PreferredOrText() string {
	if preferred := e.PreferredText(); preferred != "" {
		return preferred
	}
	return e.Text
}

// Entities holds all entity mentions of a document grouped by category.
type Entities struct {
	Diseases        []*Entity
	Medications     []*Entity
	Procedures      []*Entity
	AnatomicalSites []*Entity
	SignsSymptoms   []*Entity
}

// All returns the categories in a fixed order together with their names.
func (e *Entities) All() []CategoryEntities {
	return []CategoryEntities{
		{CategoryDiseases, e.Diseases},
		{CategoryMedications, e.Medications},
		{CategoryProcedures, e.Procedures},
		{CategoryAnatomicalSites, e.AnatomicalSites},
		{CategorySignsSymptoms, e.SignsSymptoms},
	}
}

type CategoryEntities struct {
	Category string
	Entities []*Entity
}

const (
	CategoryDiseases        = "diseases"
	CategoryMedications     = "medications"
	CategoryProcedures      = "procedures"
	CategoryAnatomicalSites = "anatomical_sites"
	CategorySignsSymptoms   = "signs_symptoms"
)
