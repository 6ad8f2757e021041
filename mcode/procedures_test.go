package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestExtractProcedures(t *testing.T) {
	t.Run("Names and CUIs", testProcedureNamesAndCUIs)
	t.Run("Names keep duplicates", testProcedureNamesKeepDuplicates)
	t.Run("Negated skipped", testProcedureNegated)
	t.Run("Body sites from relations", testProcedureBodySites)
	t.Run("No procedures", testProcedureEmpty)
}

func testProcedureNamesAndCUIs(t *testing.T) {
	fields := ExtractProcedures([]*types.Entity{
		codedMention("p1", 0, "biopsy", "C0005558", "Biopsy"),
		mention("p2", 20, "laryngoscopy"),
	}, nil)

	require.Equal(t, "Biopsy; laryngoscopy", fields.Get(types.FieldProcedureCode))
	require.Equal(t, "C0005558", fields.Get(types.FieldProcedureCUIs))
}

func testProcedureNamesKeepDuplicates(t *testing.T) {
	fields := ExtractProcedures([]*types.Entity{
		mention("p1", 0, "biopsy"),
		mention("p2", 20, "biopsy"),
	}, nil)

	require.Equal(t, "biopsy; biopsy", fields.Get(types.FieldProcedureCode))
}

func testProcedureNegated(t *testing.T) {
	fields := ExtractProcedures([]*types.Entity{
		negatedMention("p1", 0, "mastectomy"),
	}, nil)

	require.Empty(t, fields)
}

func testProcedureBodySites(t *testing.T) {
	procedures := []*types.Entity{
		mention("p1", 0, "biopsy"),
		mention("p2", 20, "resection"),
	}
	relations := []*types.Relation{
		locationOf("r1", "a1", "tongue", "p1", "biopsy"),
		locationOf("r2", "a2", "tongue", "p2", "resection"),
		locationOf("r3", "a3", "larynx", "p2", "resection"),
		locationOf("r4", "a4", "liver", "x9", "unrelated"),
	}

	fields := ExtractProcedures(procedures, relations)

	require.Equal(t, "tongue; larynx", fields.Get(types.FieldProcedureBodySite))
}

func testProcedureEmpty(t *testing.T) {
	fields := ExtractProcedures(nil, nil)

	require.Empty(t, fields)
}
