package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"strings"
)

// ExtractNegatedFindings reports every negated mention across all entity
// categories. Intentionally unfiltered by subject or historicity.
func ExtractNegatedFindings(entities *types.Entities) types.FieldTable {
	fields := types.NewFieldTable()

	var negated []string
	for _, category := range entities.All() {
		for _, entity := range category.Entities {
			if entity.Negated() {
				negated = append(negated, entity.Text+" (negated)")
			}
		}
	}
	if len(negated) > 0 {
		fields.Set(types.FieldNegatedFindings, strings.Join(negated, "; "))
	}
	return fields
}
