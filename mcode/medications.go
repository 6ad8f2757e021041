package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/barcastaff/cTAKES-mCODE/utils"
	"strings"
)

// medicationBlacklist lists terms the annotation pipeline tags as
// medications that are not actual drugs: dosage forms, social history
// substances, generic category words, temporal words, imaging agents,
// vaccines and lab test names.
var medicationBlacklist = map[string]bool{
	"pack": true, "tablet": true, "capsule": true, "dose": true, "iv": true,
	"pill": true, "unit": true, "vial": true,
	"oral dosage form": true, "dosage form": true, "dental dosage form": true,

	"ethanol": true, "alcohol": true, "tobacco": true, "cigarette": true, "smoking": true,

	"pharmaceutical preparations": true, "drug": true, "medication": true,
	"alkalies": true, "proteins": true, "fluorides": true,

	"today": true, "yesterday": true, "week": true, "month": true,

	"contrast media": true, "fluorodeoxyglucose f18": true, "fdg": true,

	"human papilloma virus vaccine": true, "hpv vaccine": true, "vaccine": true,

	"antibodies, antinuclear": true, "ana": true,

	"cytidine monophosphate": true, "cmp": true,
}

// tumorMarkerCUIs are receptor concepts that belong in the tumor marker
// fields, not in the medication list.
var tumorMarkerCUIs = map[string]bool{
	"C0069515": true,
}

// ExtractMedications collects non-negated medication mentions that survive
// the blacklist. The annotation source cannot distinguish requested from
// administered medications, so both fields carry the same value.
func ExtractMedications(medications []*types.Entity) types.FieldTable {
	fields := types.NewFieldTable()

	filtered := make([]*types.Entity, 0, len(medications))
	for _, med := range medications {
		if med.Negated() {
			continue
		}
		text := strings.ToLower(med.Text)
		preferred := strings.ToLower(med.PreferredText())
		if medicationBlacklist[text] || medicationBlacklist[preferred] {
			continue
		}
		if tumorMarkerCUIs[med.PrimaryCUI()] {
			continue
		}
		filtered = append(filtered, med)
	}
	if len(filtered) == 0 {
		return fields
	}

	names := make([]string, 0, len(filtered))
	cuis := make([]string, 0, len(filtered))
	for _, med := range filtered {
		names = append(names, med.PreferredOrText())
		if cui := med.PrimaryCUI(); cui != "" {
			cuis = append(cuis, cui)
		}
	}

	uniqueNames := utils.DedupeStrings(names)
	fields.Set(types.FieldMedicationRequest, strings.Join(uniqueNames, "; "))
	fields.Set(types.FieldMedicationAdministration, strings.Join(uniqueNames, "; "))
	if len(cuis) > 0 {
		fields.Set(types.FieldMedicationCUIs, strings.Join(cuis, "; "))
	}
	return fields
}
