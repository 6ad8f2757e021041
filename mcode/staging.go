package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Staging prefix priority: pathological staging is definitive when
// available, so p outranks y (post-therapy), c (clinical), r (recurrence)
// and m (multiple).
var stagingPrefixPriority = map[string]int{"p": 5, "y": 4, "c": 3, "r": 2, "m": 1, "": 0}

var (
	concatTNMPattern  = regexp.MustCompile(`(?i)([cpyrm]?)T([0-4X])([A-D])?([IS])?N([0-3X])([A-C])?M([0-1X])([A-C])?`)
	tComponentPattern = regexp.MustCompile(`(?i)([cpyrm]?)T([0-4X])([A-D])?([IS])?`)
	nComponentPattern = regexp.MustCompile(`(?i)([cpyrm]?)N([0-3X])([A-C])?`)
	mComponentPattern = regexp.MustCompile(`(?i)([cpyrm]?)M([0-1X])([A-C])?`)
)

// ExtractTNMStaging extracts T, N and M staging categories from raw text.
// Concatenated notation like "cT3N1M0" is preferred; when absent, the
// components are matched independently and may come from different places
// in the text. Within each strategy the match with the highest prefix
// priority wins, first seen on ties.
func ExtractTNMStaging(text string) types.FieldTable {
	fields := types.NewFieldTable()
	if text == "" {
		return fields
	}

	bestT, bestN, bestM := "", "", ""
	bestPriority := -1
	for _, match := range concatTNMPattern.FindAllStringSubmatch(text, -1) {
		prefix := strings.ToLower(match[1])
		priority := stagingPrefixPriority[prefix]
		if priority <= bestPriority {
			continue
		}
		bestT = prefix + "T" + upperJoined(match[2:5])
		bestN = prefix + "N" + upperJoined(match[5:7])
		bestM = prefix + "M" + upperJoined(match[7:9])
		bestPriority = priority
	}

	if bestT == "" {
		bestT = selectBestComponent(text, tComponentPattern, "T")
		bestN = selectBestComponent(text, nComponentPattern, "N")
		bestM = selectBestComponent(text, mComponentPattern, "M")
	}

	if bestT != "" {
		fields.Set(types.FieldStagingTCategory, bestT)
	}
	if bestN != "" {
		fields.Set(types.FieldStagingNCategory, bestN)
	}
	if bestM != "" {
		fields.Set(types.FieldStagingMCategory, bestM)
	}
	return fields
}

// selectBestComponent matches a single staging component anywhere in the
// text. A valid occurrence must not be preceded by a letter and must be
// followed by whitespace, end of text or light punctuation, which keeps
// codes embedded in longer tokens ("ASTM1", "T2-weighted") out.
func selectBestComponent(text string, pattern *regexp.Regexp, categoryLetter string) string {
	best := ""
	bestPriority := -1
	for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := idx[0], idx[1]
		if start > 0 {
			before, _ := utf8.DecodeLastRuneInString(text[:start])
			if isASCIILetter(before) {
				continue
			}
		}
		if end < len(text) {
			after, _ := utf8.DecodeRuneInString(text[end:])
			if !isComponentBoundary(after) {
				continue
			}
		}

		prefix := strings.ToLower(submatch(text, idx, 1))
		code := prefix + categoryLetter
		for group := 2; group*2+1 < len(idx); group++ {
			code += strings.ToUpper(submatch(text, idx, group))
		}

		priority := stagingPrefixPriority[prefix]
		if priority > bestPriority {
			bestPriority = priority
			best = code
		}
	}
	return best
}

func upperJoined(groups []string) string {
	joined := ""
	for _, group := range groups {
		joined += strings.ToUpper(group)
	}
	return joined
}

func submatch(text string, idx []int, group int) string {
	if idx[group*2] < 0 {
		return ""
	}
	return text[idx[group*2]:idx[group*2+1]]
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isComponentBoundary(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ';' || r == '.'
}
