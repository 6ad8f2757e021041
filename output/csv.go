package output

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"bytes"
	"encoding/csv"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

var csvLogger = logger.NewLogger("CSV Output")

// Writer renders extracted field tables as two-column CSV files, one row
// per schema field in the fixed schema order.
type Writer struct {
	includeCUIsFile bool
}

func NewWriter(config types.OutputConfig) *Writer {
	return &Writer{includeCUIsFile: config.IncludeCUIsFile}
}

// PathFor builds the primary output path for a source note, named after
// the note's base name without its extension.
func PathFor(csvDir, sourceFile string) string {
	base := filepath.Base(sourceFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(csvDir, stem+"_mcode.csv")
}

// WriteFiles renders the table for one source note. The primary file
// omits the coded identifier fields; a variant carrying them is written
// alongside when enabled. Returns every path written.
func (w *Writer) WriteFiles(outputPath string, table types.FieldTable, sourceFile string) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0700); err != nil {
		csvLogger.Err(err).Str("path", outputPath).Msg("Could not create output directory")
		return nil, err
	}

	written := make([]string, 0, 2)

	if w.includeCUIsFile {
		withCUIsPath := withCUIsVariant(outputPath)
		if err := writeTable(withCUIsPath, table, sourceFile, false); err != nil {
			return nil, err
		}
		written = append(written, withCUIsPath)
	}

	if err := writeTable(outputPath, table, sourceFile, true); err != nil {
		return nil, err
	}
	written = append(written, outputPath)

	return written, nil
}

func withCUIsVariant(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_with_cuis" + ext
}

// Render produces the CSV content for one source note. The coded
// identifier fields are omitted when stripCUIs is set.
func Render(table types.FieldTable, sourceFile string, stripCUIs bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Field", "Value"}); err != nil {
		return nil, err
	}
	if err := writer.Write([]string{types.FieldSourceFile, sourceFile}); err != nil {
		return nil, err
	}
	for _, field := range types.AllFields[1:] {
		if stripCUIs && types.CUIFields[field] {
			continue
		}
		if err := writer.Write([]string{field, table.Get(field)}); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(path string, table types.FieldTable, sourceFile string, stripCUIs bool) error {
	data, err := Render(table, sourceFile, stripCUIs)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		csvLogger.Err(err).Str("path", path).Msg("Could not create output file")
		return err
	}
	return nil
}
