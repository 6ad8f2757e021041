package mcode

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"sort"
	"strings"
)

var cancerTerms = []string{"cancer", "carcinoma", "adenocarcinoma", "tumor", "neoplasm", "malignant"}

// anatomyBlacklist holds histology and grading words that the annotation
// pipeline sometimes mislabels as anatomical sites.
var anatomyBlacklist = map[string]bool{
	"squamous": true, "squamous cell": true, "cell": true, "cells": true,
	"adenocarcinoma": true, "carcinoma": true,
	"sarcoma": true, "melanoma": true, "lymphoma": true, "leukemia": true, "neoplasm": true,
	"tumor": true, "tumour": true, "malignant": true, "benign": true, "invasive": true,
	"metastatic": true, "primary": true, "secondary": true, "grade": true, "stage": true,
	"keratinizing": true, "non-keratinizing": true, "differentiated": true,
	"ductal": true, "lobular": true, "papillary": true, "mucinous": true, "serous": true,
	"disease": true, "lesion": true, "mass": true, "nodule": true, "cancer": true, "oral": true,
}

// scoreMorphology weighs how specific a cancer mention is. Specific
// diagnoses like "invasive ductal adenocarcinoma" must win over generic
// terms like "breast cancer".
func scoreMorphology(text string) float64 {
	textLower := strings.ToLower(text)
	score := 0.0

	if strings.Contains(textLower, "invasive") {
		score += 3
	}
	if strings.Contains(textLower, "ductal") || strings.Contains(textLower, "lobular") {
		score += 2
	}
	if strings.Contains(textLower, "squamous") || strings.Contains(textLower, "medullary") {
		score += 2
	}
	if strings.Contains(textLower, "mucinous") || strings.Contains(textLower, "tubular") {
		score += 2
	}
	if strings.Contains(textLower, "papillary") || strings.Contains(textLower, "serous") {
		score += 2
	}

	if strings.Contains(textLower, "grade") || strings.Contains(textLower, "differentiated") {
		score += 1.5
	}
	if strings.Contains(textLower, "metastatic") {
		score += 1.5
	}

	if strings.Contains(textLower, "adenocarcinoma") {
		score += 1
	} else if strings.Contains(textLower, "carcinoma") {
		score += 0.5
	}

	if strings.Contains(textLower, "suspected") || strings.Contains(textLower, "possible") {
		score -= 2
	}

	return score
}

// sortCancerCandidates orders candidates by morphology score, then by longer
// surface text, then by earlier position.
func sortCancerCandidates(candidates []*types.Entity) []*types.Entity {
	type scored struct {
		entity *types.Entity
		score  float64
	}
	scoredCandidates := make([]scored, len(candidates))
	for i, candidate := range candidates {
		scoredCandidates[i] = scored{entity: candidate, score: scoreMorphology(candidate.Text)}
	}
	sort.SliceStable(scoredCandidates, func(i, j int) bool {
		if scoredCandidates[i].score != scoredCandidates[j].score {
			return scoredCandidates[i].score > scoredCandidates[j].score
		}
		if len(scoredCandidates[i].entity.Text) != len(scoredCandidates[j].entity.Text) {
			return len(scoredCandidates[i].entity.Text) > len(scoredCandidates[j].entity.Text)
		}
		return scoredCandidates[i].entity.Begin < scoredCandidates[j].entity.Begin
	})
	sorted := make([]*types.Entity, len(scoredCandidates))
	for i, candidate := range scoredCandidates {
		sorted[i] = candidate.entity
	}
	return sorted
}

func isValidBodySite(siteText string) bool {
	return !anatomyBlacklist[strings.ToLower(siteText)]
}

// ExtractTumorInfo selects the primary cancer condition and resolves its
// body site through LOCATION_OF relations with an anatomical site fallback.
func ExtractTumorInfo(doc *types.Document) types.FieldTable {
	fields := types.NewFieldTable()
	docRunes := []rune(doc.Text)

	diseases := FilterActivePatient(doc.Entities.Diseases, docRunes)

	candidates := make([]*types.Entity, 0, len(diseases))
	for _, disease := range diseases {
		if containsAny(strings.ToLower(disease.Text), cancerTerms) {
			candidates = append(candidates, disease)
		}
	}
	if len(candidates) == 0 {
		return fields
	}

	sorted := sortCancerCandidates(candidates)
	primary := sorted[0]

	fields.Set(types.FieldPrimaryCancerHistologyMorphology, primary.PreferredOrText())
	if cui := primary.PrimaryCUI(); cui != "" {
		fields.Set(types.FieldPrimaryCancerCUI, cui)
	}

	// Try each cancer mention in score order and accept the first related
	// site that passes the blacklist. Metastatic mentions are skipped, they
	// point at secondary sites.
	siteFound := false
	for _, cancer := range sorted {
		if strings.Contains(strings.ToLower(cancer.Text), "metastatic") {
			continue
		}
		for _, rel := range doc.Relations.LocationOf {
			if rel.SourceID != cancer.ID {
				continue
			}
			if !isValidBodySite(rel.TargetText) {
				continue
			}
			fields.Set(types.FieldPrimaryCancerBodySite, rel.TargetText)
			fields.Set(types.FieldTumorBodyLocation, rel.TargetText)
			siteFound = true
			break
		}
		if siteFound {
			break
		}
	}

	// Document order fallback when no cancer mention carries a usable
	// relation. Less reliable than the relation graph.
	if !siteFound {
		for _, site := range doc.Entities.AnatomicalSites {
			if !isValidBodySite(site.Text) {
				continue
			}
			fields.Set(types.FieldPrimaryCancerBodySite, site.Text)
			fields.Set(types.FieldTumorBodyLocation, site.Text)
			break
		}
	}

	return fields
}
