package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"regexp"
	"strconv"
	"strings"
)

var (
	dosePattern     = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(Gy|Gray)\b`)
	fractionPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:fractions?|fx)\b`)
	modalityPattern = regexp.MustCompile(`(?i)\b(IMRT|VMAT|3D-CRT|3DCRT|SBRT|SRS|IGRT|proton|brachytherapy|electron|photon|intensity.modulated|volumetric.modulated|stereotactic)\b`)

	rtToSitePattern    = regexp.MustCompile(`(?i)(?:IMRT|VMAT|radiation|radiotherapy|irradiation)\s+(?:\([^)]+\)\s+)?to\s+(?:the\s+)?([a-zA-Z]+(?:\s+(?:and\s+)?[a-zA-Z]+)*?)(?:\s+with|\s*,|\s*\.|\s+for)`)
	rtWholeSitePattern = regexp.MustCompile(`(?i)(whole\s+[a-zA-Z]+)\s+(?:radiation|radiotherapy|irradiation)`)
	rtSiteFirstPattern = regexp.MustCompile(`(?i)([a-zA-Z]+\s+(?:nodal\s+)?(?:region(?:s)?)?)\s+(?:radiation|irradiation)`)
)

// rtSiteSkipTerms are generic therapy/process words the body site patterns
// tend to capture instead of anatomy.
var rtSiteSkipTerms = []string{
	"therapy", "treatment", "course", "plan", "technique", "daily",
	"definitive", "oncology", "consultation", "recommended", "prior",
	"no", "thermoplastic", "head and neck",
}

// ExtractRadiotherapyInfo pulls the radiotherapy course summary out of raw
// text: total dose, fraction count, modality and body site.
func ExtractRadiotherapyInfo(text string) types.FieldTable {
	fields := types.NewFieldTable()
	if text == "" {
		return fields
	}

	// Highest quoted dose is assumed to be the prescribed total rather
	// than a per-fraction dose.
	doseMatches := dosePattern.FindAllStringSubmatch(text, -1)
	if len(doseMatches) > 0 {
		bestValue := 0.0
		bestLiteral := ""
		for _, match := range doseMatches {
			value, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			if bestLiteral == "" || value > bestValue {
				bestValue = value
				bestLiteral = match[1] + " " + match[2]
			}
		}
		if bestLiteral != "" {
			fields.Set(types.FieldRadiotherapyTotalDose, bestLiteral)
		}
	}

	// First fractionation scheme mentioned is taken as the primary one.
	if match := fractionPattern.FindStringSubmatch(text); match != nil {
		fields.Set(types.FieldRadiotherapyFractions, match[1])
	}

	modalityMatches := modalityPattern.FindAllStringSubmatch(text, -1)
	if len(modalityMatches) > 0 {
		seen := make(map[string]bool)
		var modalities []string
		for _, match := range modalityMatches {
			key := strings.ToUpper(match[1])
			if seen[key] {
				continue
			}
			seen[key] = true
			modalities = append(modalities, match[1])
		}
		fields.Set(types.FieldRadiotherapyModality, strings.Join(modalities, "; "))
	}

	var rtBodySites []string
	for _, match := range rtToSitePattern.FindAllStringSubmatch(text, -1) {
		rtBodySites = append(rtBodySites, match[1])
	}
	for _, match := range rtWholeSitePattern.FindAllStringSubmatch(text, -1) {
		rtBodySites = append(rtBodySites, match[1])
	}
	for _, match := range rtSiteFirstPattern.FindAllStringSubmatch(text, -1) {
		rtBodySites = append(rtBodySites, match[1])
	}

	if len(rtBodySites) > 0 {
		seen := make(map[string]bool)
		var cleanedSites []string
		for _, site := range rtBodySites {
			siteClean := strings.ToLower(strings.TrimSpace(site))
			if seen[siteClean] || len(siteClean) <= 2 {
				continue
			}
			if containsAny(siteClean, rtSiteSkipTerms) {
				continue
			}
			seen[siteClean] = true
			cleanedSites = append(cleanedSites, strings.TrimSpace(site))
		}
		if len(cleanedSites) > 0 {
			fields.Set(types.FieldRadiotherapyBodySite, strings.Join(cleanedSites, "; "))
		}
	}
	return fields
}
