package xmi

import (
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/stretchr/testify/require"
	"testing"
)

const testNoteText = "Patient diagnosed with invasive ductal adenocarcinoma of the breast on 01/09/2026 via biopsy. No metastasis."

const testXMI = `<?xml version="1.0" encoding="UTF-8"?>
<xmi:XMI xmlns:xmi="http://www.omg.org/XMI" xmlns:cas="http:///uima/cas.ecore" xmlns:textsem="http:///org/apache/ctakes/typesystem/type/textsem.ecore" xmlns:refsem="http:///org/apache/ctakes/typesystem/type/refsem.ecore" xmlns:relation="http:///org/apache/ctakes/typesystem/type/relation.ecore" xmlns:textspan="http:///org/apache/ctakes/typesystem/type/textspan.ecore" xmi:version="2.0">
  <cas:Sofa xmi:id="1" sofaNum="1" sofaID="_InitialView" mimeType="text" sofaString="Patient diagnosed with invasive ductal adenocarcinoma of the breast on 01/09/2026 via biopsy. No metastasis."/>
  <textsem:DiseaseDisorderMention xmi:id="10" sofa="1" begin="23" end="53" polarity="1" subject="patient" historyOf="0" ontologyConceptArr="100 101 102"/>
  <textsem:DiseaseDisorderMention xmi:id="12" sofa="1" begin="97" end="107" polarity="-1" subject="patient" historyOf="0"/>
  <textsem:AnatomicalSiteMention xmi:id="11" sofa="1" begin="61" end="67" polarity="1"/>
  <refsem:UmlsConcept xmi:id="100" codingScheme="SNOMEDCT_US" cui="C4872451" preferredText="Invasive ductal carcinoma of breast"/>
  <refsem:UmlsConcept xmi:id="101" codingScheme="SNOMEDCT_US" cui="C0006142" preferredText="Malignant neoplasm of breast"/>
  <refsem:UmlsConcept xmi:id="102" codingScheme="SNOMEDCT_US" preferredText="Concept without identifier"/>
  <relation:LocationOfTextRelation xmi:id="20" category="LOCATION_OF" arg1="21" arg2="22"/>
  <relation:RelationArgument xmi:id="21" argument="10"/>
  <relation:RelationArgument xmi:id="22" argument="11"/>
  <relation:LocationOfTextRelation xmi:id="23" category="LOCATION_OF" arg1="24" arg2="22"/>
  <relation:RelationArgument xmi:id="24" argument="999"/>
  <textsem:TimeMention xmi:id="30" sofa="1" begin="71" end="81" timeClass="DATE"/>
  <textsem:EventMention xmi:id="31" sofa="1" begin="86" end="92" polarity="1"/>
  <relation:TemporalTextRelation xmi:id="40" category="CONTAINS" arg1="41" arg2="42"/>
  <relation:RelationArgument xmi:id="41" argument="30"/>
  <relation:RelationArgument xmi:id="42" argument="31"/>
  <textspan:Sentence xmi:id="50" sofa="1" begin="0" end="94" sentenceNumber="0"/>
  <textspan:Sentence xmi:id="51" sofa="1" begin="94" end="108" sentenceNumber="1"/>
</xmi:XMI>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(testXMI))
	require.NoError(t, err)
	require.Equal(t, testNoteText, doc.Text)

	require.Len(t, doc.Entities.Diseases, 2)
	primary := doc.Entities.Diseases[0]
	require.Equal(t, "10", primary.ID)
	require.Equal(t, "invasive ductal adenocarcinoma", primary.Text)
	require.False(t, primary.Negated())
	require.Len(t, primary.Concepts, 2)
	require.Equal(t, "C4872451", primary.PrimaryCUI())
	require.Equal(t, "Invasive ductal carcinoma of breast", primary.PreferredText())
	require.Equal(t, "snomedct_us", primary.Concepts[0].CodingScheme)

	negated := doc.Entities.Diseases[1]
	require.Equal(t, "12", negated.ID)
	require.Equal(t, "metastasis", negated.Text)
	require.True(t, negated.Negated())
	require.Equal(t, "", negated.PrimaryCUI())

	require.Len(t, doc.Entities.AnatomicalSites, 1)
	require.Equal(t, "breast", doc.Entities.AnatomicalSites[0].Text)

	require.Empty(t, doc.Entities.Medications)
	require.Empty(t, doc.Entities.Procedures)
	require.Empty(t, doc.Entities.SignsSymptoms)
	require.Equal(t, 3, doc.EntityCount())
}

func TestParseRelations(t *testing.T) {
	doc, err := Parse([]byte(testXMI))
	require.NoError(t, err)

	// The relation with an unresolvable argument must be dropped.
	require.Len(t, doc.Relations.LocationOf, 1)
	rel := doc.Relations.LocationOf[0]
	require.Equal(t, "LOCATION_OF", rel.Category)
	require.Equal(t, "10", rel.SourceID)
	require.Equal(t, "invasive ductal adenocarcinoma", rel.SourceText)
	require.Equal(t, "11", rel.TargetID)
	require.Equal(t, "breast", rel.TargetText)

	require.Empty(t, doc.Relations.DegreeOf)
}

func TestParseTemporalData(t *testing.T) {
	doc, err := Parse([]byte(testXMI))
	require.NoError(t, err)

	require.Len(t, doc.Temporal.TimeMentions, 1)
	mention := doc.Temporal.TimeMentions[0]
	require.Equal(t, "01/09/2026", mention.Text)
	require.Equal(t, "DATE", mention.TimeClass)

	require.Len(t, doc.Temporal.Events, 1)
	require.Equal(t, "biopsy", doc.Temporal.Events[0].Text)

	require.Len(t, doc.Temporal.TemporalRelations, 1)
	rel := doc.Temporal.TemporalRelations[0]
	require.Equal(t, "CONTAINS", rel.Category)
	require.Equal(t, "30", rel.SourceID)
	require.Equal(t, "01/09/2026", rel.SourceText)
	require.Equal(t, "31", rel.TargetID)
	require.Equal(t, "biopsy", rel.TargetText)
}

func TestParseSentences(t *testing.T) {
	doc, err := Parse([]byte(testXMI))
	require.NoError(t, err)

	require.Len(t, doc.Sentences, 2)
	require.Equal(t, int32(0), doc.Sentences[0].Begin)
	require.Equal(t, int32(94), doc.Sentences[0].End)
	require.Equal(t, int32(94), doc.Sentences[1].Begin)
	require.Equal(t, int32(1), doc.Sentences[1].Number)
}

func TestParseEmptyDocument(t *testing.T) {
	empty := `<?xml version="1.0" encoding="UTF-8"?>
<xmi:XMI xmlns:xmi="http://www.omg.org/XMI" xmlns:cas="http:///uima/cas.ecore" xmi:version="2.0">
  <cas:Sofa xmi:id="1" sofaNum="1" sofaID="_InitialView" mimeType="text" sofaString="Short note."/>
</xmi:XMI>`

	doc, err := Parse([]byte(empty))
	require.NoError(t, err)
	require.Equal(t, "Short note.", doc.Text)
	require.Empty(t, doc.Entities.Diseases)
	require.Empty(t, doc.Relations.LocationOf)
	require.Empty(t, doc.Temporal.TimeMentions)
	require.Empty(t, doc.Sentences)
	require.Equal(t, 0, doc.EntityCount())
}

func TestParseRuneOffsets(t *testing.T) {
	xmi := `<?xml version="1.0" encoding="UTF-8"?>
<xmi:XMI xmlns:xmi="http://www.omg.org/XMI" xmlns:cas="http:///uima/cas.ecore" xmlns:textsem="http:///org/apache/ctakes/typesystem/type/textsem.ecore" xmi:version="2.0">
  <cas:Sofa xmi:id="1" sofaNum="1" sofaID="_InitialView" mimeType="text" sofaString="naïve tumor"/>
  <textsem:DiseaseDisorderMention xmi:id="2" sofa="1" begin="6" end="11" polarity="1"/>
</xmi:XMI>`

	doc, err := Parse([]byte(xmi))
	require.NoError(t, err)
	require.Len(t, doc.Entities.Diseases, 1)
	// Offsets are code points, not bytes.
	require.Equal(t, "tumor", doc.Entities.Diseases[0].Text)
}

func TestParseMalformedXML(t *testing.T) {
	_, err := Parse([]byte("<xmi:XMI><unclosed"))
	require.Error(t, err)
}

func TestParseSubjectDefault(t *testing.T) {
	xmi := `<?xml version="1.0" encoding="UTF-8"?>
<xmi:XMI xmlns:xmi="http://www.omg.org/XMI" xmlns:cas="http:///uima/cas.ecore" xmlns:textsem="http:///org/apache/ctakes/typesystem/type/textsem.ecore" xmi:version="2.0">
  <cas:Sofa xmi:id="1" sofaNum="1" sofaID="_InitialView" mimeType="text" sofaString="lung cancer"/>
  <textsem:DiseaseDisorderMention xmi:id="2" sofa="1" begin="0" end="11"/>
  <textsem:DiseaseDisorderMention xmi:id="3" sofa="1" begin="5" end="11" subject="family_member" historyOf="1"/>
</xmi:XMI>`

	doc, err := Parse([]byte(xmi))
	require.NoError(t, err)
	require.Len(t, doc.Entities.Diseases, 2)

	require.Equal(t, types.SubjectPatient, doc.Entities.Diseases[0].Subject)
	require.Equal(t, 0, doc.Entities.Diseases[0].HistoryOf)
	require.Equal(t, 0, doc.Entities.Diseases[0].Polarity)

	require.Equal(t, types.SubjectFamilyMember, doc.Entities.Diseases[1].Subject)
	require.Equal(t, 1, doc.Entities.Diseases[1].HistoryOf)
}
