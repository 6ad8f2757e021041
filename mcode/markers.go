package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"strings"
)

// Tumor markers usually surface as sign/symptom mentions. Short names are
// matched as substrings without word boundaries, which trades some false
// positives for recall.
var markerKeywords = []string{"er", "pr", "her2", "psa", "ca-125", "ca 125", "cea"}

func ExtractTumorMarkers(signsSymptoms []*types.Entity) types.FieldTable {
	fields := types.NewFieldTable()

	var markers []string
	for _, ss := range signsSymptoms {
		if containsAny(strings.ToLower(ss.Text), markerKeywords) {
			markers = append(markers, ss.PreferredOrText())
		}
	}
	if len(markers) > 0 {
		fields.Set(types.FieldTumorMarkerTestType, strings.Join(markers, "; "))
	}
	return fields
}
