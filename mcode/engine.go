package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/barcastaff/cTAKES-mCODE/utils"
	"github.com/rs/zerolog"
)

// Options controls optional extraction behavior.
type Options struct {
	EnableDisambiguation bool
	SentenceWindow       int
}

// Engine derives mCODE fields from a parsed clinical document. Extractors
// are independent: a failure in one is logged and skipped without
// discarding the results of the others.
type Engine struct {
	options       Options
	disambiguator *Disambiguator
	logger        zerolog.Logger
}

// NewEngine builds an extraction engine. The completer may be nil, in
// which case date disambiguation is unavailable regardless of options.
func NewEngine(options Options, completer Completer) *Engine {
	log := logger.NewLogger("mcode")
	engine := &Engine{
		options: options,
		logger:  log,
	}
	if completer != nil {
		engine.disambiguator = NewDisambiguator(completer, options.SentenceWindow, log)
	}
	return engine
}

// Extract runs every field extractor against the document and merges their
// results into a single table keyed by field name. Fields with no derived
// value are absent from the table.
func (e *Engine) Extract(doc *types.Document) types.FieldTable {
	table := types.NewFieldTable()

	e.apply(table, "tumor_info", func() types.FieldTable {
		return ExtractTumorInfo(doc)
	})
	e.apply(table, "medications", func() types.FieldTable {
		return ExtractMedications(doc.Entities.Medications)
	})
	e.apply(table, "procedures", func() types.FieldTable {
		return ExtractProcedures(doc.Entities.Procedures, doc.Relations.LocationOf)
	})
	e.apply(table, "specimen", func() types.FieldTable {
		return ExtractSpecimenInfo(doc.Entities.Procedures, doc.Entities.AnatomicalSites, table.Get(types.FieldPrimaryCancerBodySite))
	})
	e.apply(table, "tumor_markers", func() types.FieldTable {
		return ExtractTumorMarkers(doc.Entities.SignsSymptoms)
	})
	e.apply(table, "tnm_staging", func() types.FieldTable {
		return ExtractTNMStaging(doc.Text)
	})
	e.apply(table, "tumor_dimensions", func() types.FieldTable {
		return ExtractTumorDimensions(doc.Text)
	})
	e.apply(table, "radiotherapy", func() types.FieldTable {
		return ExtractRadiotherapyInfo(doc.Text)
	})
	e.apply(table, "negated_findings", func() types.FieldTable {
		return ExtractNegatedFindings(&doc.Entities)
	})
	e.apply(table, "asserted_date", func() types.FieldTable {
		return e.extractAssertedDate(doc)
	})

	return table
}

// apply runs one extractor and merges its partial table. Panics inside
// the extractor surface here as errors.
func (e *Engine) apply(table types.FieldTable, name string, extract func() types.FieldTable) {
	partial, err := runExtractor(extract)
	if err != nil {
		e.logger.Err(err).Str("extractor", name).Msg("Extractor failed, skipping its fields")
		return
	}
	table.Merge(partial)
}

func runExtractor(extract func() types.FieldTable) (table types.FieldTable, err error) {
	defer utils.RecoverWithError(&err)
	table = extract()
	return table, nil
}
