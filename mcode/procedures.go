package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"strings"
)

// ExtractProcedures collects non-negated procedure mentions and resolves
// their body sites from LOCATION_OF relations where the procedure is the
// relation target.
func ExtractProcedures(procedures []*types.Entity, locationOf []*types.Relation) types.FieldTable {
	fields := types.NewFieldTable()

	active := nonNegated(procedures)
	if len(active) == 0 {
		return fields
	}

	names := make([]string, 0, len(active))
	cuis := make([]string, 0, len(active))
	for _, proc := range active {
		names = append(names, proc.PreferredOrText())
		if cui := proc.PrimaryCUI(); cui != "" {
			cuis = append(cuis, cui)
		}
	}

	fields.Set(types.FieldProcedureCode, strings.Join(names, "; "))
	if len(cuis) > 0 {
		fields.Set(types.FieldProcedureCUIs, strings.Join(cuis, "; "))
	}

	var bodySites []string
	for _, proc := range active {
		for _, rel := range locationOf {
			if rel.TargetID == proc.ID {
				bodySites = append(bodySites, rel.SourceText)
			}
		}
	}
	if len(bodySites) > 0 {
		fields.Set(types.FieldProcedureBodySite, strings.Join(dedupeFirstSeen(bodySites), "; "))
	}
	return fields
}

func dedupeFirstSeen(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
