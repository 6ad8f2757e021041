package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var dimensionPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(cm|mm|centimeters?|millimeters?)\b`)

var (
	tumorContextKeywords = []string{"tumor", "tumour", "mass", "lesion", "neoplasm", "carcinoma", "cancer"}
	nodeContextKeywords  = []string{"node", "nodal", "lymph", "lymphadenopathy", "adenopathy"}
)

const dimensionContextWindow = 50

type dimension struct {
	value   float64
	literal string
}

// ExtractTumorDimensions finds the longest measured dimension in tumor
// context. Measurements in lymph node context are demoted to a fallback
// bucket, a nodal size is reported only when no primary tumor measurement
// exists. Millimeter values are normalized to centimeters for comparison,
// the literal matched text is what gets reported.
func ExtractTumorDimensions(text string) types.FieldTable {
	fields := types.NewFieldTable()
	if text == "" {
		return fields
	}

	docRunes := []rune(text)
	var primaryDims, nodeDims []dimension

	for _, idx := range dimensionPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := idx[0], idx[1]

		runeStart := utf8.RuneCountInString(text[:start])
		runeEnd := runeStart + utf8.RuneCountInString(text[start:end])
		contextStart := runeStart - dimensionContextWindow
		if contextStart < 0 {
			contextStart = 0
		}
		contextEnd := runeEnd + dimensionContextWindow
		if contextEnd > len(docRunes) {
			contextEnd = len(docRunes)
		}
		context := strings.ToLower(string(docRunes[contextStart:contextEnd]))

		hasTumorContext := containsAny(context, tumorContextKeywords)
		hasNodeContext := containsAny(context, nodeContextKeywords)
		if !hasTumorContext && !hasNodeContext {
			continue
		}

		value, err := strconv.ParseFloat(text[idx[2]:idx[3]], 64)
		if err != nil {
			continue
		}
		unit := strings.ToLower(text[idx[4]:idx[5]])
		if strings.Contains(unit, "mm") || strings.Contains(unit, "millimeter") {
			value /= 10
		}

		measured := dimension{value: value, literal: text[start:end]}
		if hasNodeContext {
			nodeDims = append(nodeDims, measured)
		} else {
			primaryDims = append(primaryDims, measured)
		}
	}

	if longest, ok := longestDimension(primaryDims); ok {
		fields.Set(types.FieldTumorLongestDimension, longest)
	} else if longest, ok := longestDimension(nodeDims); ok {
		fields.Set(types.FieldTumorLongestDimension, longest)
	}
	return fields
}

func longestDimension(dims []dimension) (string, bool) {
	if len(dims) == 0 {
		return "", false
	}
	longest := dims[0]
	for _, d := range dims[1:] {
		if d.value > longest.value {
			longest = d
		}
	}
	return longest.literal, true
}
