package batch

import (
	"github.com/barcastaff/cTAKES-mCODE/ctakes"
	"github.com/barcastaff/cTAKES-mCODE/llm"
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/mcode"
	"github.com/barcastaff/cTAKES-mCODE/output"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/barcastaff/cTAKES-mCODE/xmi"
	"fmt"
	"github.com/rs/zerolog"
	"path/filepath"
	"strings"
)

var driverLogger = logger.NewLogger("Batch driver")

// Driver wires the full extraction flow for clinical notes: annotate
// through the external pipeline, parse each XMI file, derive the field
// table and render the CSV outputs.
type Driver struct {
	config *types.Config
	runner *ctakes.Runner
	engine *mcode.Engine
	writer *output.Writer
}

func NewDriver(config *types.Config) *Driver {
	var completer mcode.Completer
	if config.LLM.EnableDisambiguation {
		completer = llm.NewClient(config.LLM.Ollama)
	}
	options := mcode.Options{
		EnableDisambiguation: config.LLM.EnableDisambiguation,
		SentenceWindow:       config.LLM.SentenceWindow,
	}
	return &Driver{
		config: config,
		runner: ctakes.NewRunner(config),
		engine: mcode.NewEngine(options, completer),
		writer: output.NewWriter(config.Output),
	}
}

// Run annotates the note file or directory at inputPath and processes
// every XMI file produced. Processing stops at the first failing note.
// Returns the number of notes processed.
func (d *Driver) Run(inputPath string) (int, error) {
	xmiFiles, err := d.runner.Run(inputPath)
	if err != nil {
		return 0, err
	}
	driverLogger.Info().Int("count", len(xmiFiles)).Msg("Annotation produced XMI files")

	for processed, xmiFile := range xmiFiles {
		if err := d.ProcessXMI(xmiFile); err != nil {
			return processed, err
		}
	}
	return len(xmiFiles), nil
}

// ProcessXMI extracts one annotated note and writes its CSV outputs. The
// source note name is recovered from the XMI file name.
func (d *Driver) ProcessXMI(xmiFile string) error {
	sourceFile := strings.TrimSuffix(filepath.Base(xmiFile), ".xmi")
	mcodeLogger := driverLogger.With().Str("note", sourceFile).Logger()
	mcodeLogger.Info().Msg("Processing clinical note")

	doc, err := xmi.ParseFile(xmiFile)
	if err != nil {
		return fmt.Errorf("parse %s: %w", xmiFile, err)
	}
	logSummary(mcodeLogger, doc)

	table := d.engine.Extract(doc)

	csvPath := output.PathFor(d.config.Paths.CSVOutputDir, sourceFile)
	paths, err := d.writer.WriteFiles(csvPath, table, sourceFile)
	if err != nil {
		return fmt.Errorf("write outputs for %s: %w", sourceFile, err)
	}
	for _, path := range paths {
		mcodeLogger.Info().Str("path", path).Msg("Wrote extraction output")
	}
	return nil
}

// logSummary reports the annotation counts extraction works from.
func logSummary(mcodeLogger zerolog.Logger, doc *types.Document) {
	cuiCount := 0
	negatedCount := 0
	for _, category := range doc.Entities.All() {
		for _, entity := range category.Entities {
			if entity.PrimaryCUI() != "" {
				cuiCount++
			}
			if entity.Negated() {
				negatedCount++
			}
		}
	}
	mcodeLogger.Info().
		Int("diseases", len(doc.Entities.Diseases)).
		Int("medications", len(doc.Entities.Medications)).
		Int("procedures", len(doc.Entities.Procedures)).
		Int("anatomical_sites", len(doc.Entities.AnatomicalSites)).
		Int("signs_symptoms", len(doc.Entities.SignsSymptoms)).
		Int("location_relations", len(doc.Relations.LocationOf)).
		Int("time_mentions", len(doc.Temporal.TimeMentions)).
		Int("events", len(doc.Temporal.Events)).
		Int("temporal_relations", len(doc.Temporal.TemporalRelations)).
		Int("sentences", len(doc.Sentences)).
		Int("total_entities", doc.EntityCount()).
		Int("entities_with_cuis", cuiCount).
		Int("negated_entities", negatedCount).
		Msg("Annotation summary")
}
