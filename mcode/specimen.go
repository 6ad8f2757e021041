package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"strings"
)

type specimenClass struct {
	specimenType string
	keywords     []string
}

// specimenTypeMap maps procedure keywords to specimen types. Classes are
// checked in order and only procedures that actually collect specimens
// appear here.
var specimenTypeMap = []specimenClass{
	{"tissue", []string{"biopsy", "mastectomy", "excision", "resection", "lumpectomy", "surgical removal", "surgery"}},
	{"blood", []string{"blood draw", "serum", "plasma", "venipuncture"}},
	{"bone marrow", []string{"bone marrow", "marrow aspiration", "marrow biopsy"}},
	{"fluid", []string{"fluid aspiration", "aspirate", "pleural tap", "ascites", "paracentesis"}},
}

// ExtractSpecimenInfo classifies the specimen type from procedure mentions
// and resolves the collection site. primaryBodySite is the already resolved
// primary cancer site, used as the fallback collection site. Fields are
// populated only when a specimen collecting procedure was found.
func ExtractSpecimenInfo(procedures, anatomicalSites []*types.Entity, primaryBodySite string) types.FieldTable {
	fields := types.NewFieldTable()

	var specimenType string
	var collector *types.Entity
	for _, proc := range nonNegated(procedures) {
		procText := strings.ToLower(proc.Text)
		for _, class := range specimenTypeMap {
			if containsAny(procText, class.keywords) {
				specimenType = class.specimenType
				collector = proc
				break
			}
		}
		if specimenType != "" {
			break
		}
	}
	if specimenType == "" {
		return fields
	}

	fields.Set(types.FieldSpecimenType, specimenType)

	collectionSite := ""
	procText := strings.ToLower(collector.Text)
	for _, site := range anatomicalSites {
		if strings.Contains(procText, strings.ToLower(site.Text)) {
			collectionSite = site.Text
			break
		}
	}
	if collectionSite == "" {
		collectionSite = primaryBodySite
	}
	if collectionSite != "" {
		fields.Set(types.FieldSpecimenCollectionSite, collectionSite)
	}
	return fields
}
