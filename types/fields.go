package types

// Output record field names.
const (
	FieldSourceFile                       = "source_file"
	FieldPatientName                      = "patient_name"
	FieldBirthDate                        = "birth_date"
	FieldGender                           = "gender"
	FieldSpecimenCollectionSite           = "specimen_collection_site"
	FieldSpecimenType                     = "specimen_type"
	FieldTumorBodyLocation                = "tumor_body_location"
	FieldTumorLongestDimension            = "tumor_longest_dimension"
	FieldPrimaryCancerBodySite            = "primary_cancer_body_site"
	FieldPrimaryCancerHistologyMorphology = "primary_cancer_histology_morphology"
	FieldStagingTCategory                 = "staging_t_category"
	FieldStagingNCategory                 = "staging_n_category"
	FieldStagingMCategory                 = "staging_m_category"
	FieldPrimaryCancerAssertedDate        = "primary_cancer_asserted_date"
	FieldTumorMarkerTestType              = "tumor_marker_test_type"
	FieldTumorMarkerResultValue           = "tumor_marker_result_value"
	FieldMedicationRequest                = "medication_request_medication"
	FieldMedicationAdministration         = "medication_administration_medication"
	FieldProcedureCode                    = "cancer_related_procedure_code"
	FieldProcedureBodySite                = "cancer_related_procedure_body_site"
	FieldRadiotherapyTotalDose            = "radiotherapy_total_dose"
	FieldRadiotherapyFractions            = "radiotherapy_number_of_fractions"
	FieldRadiotherapyModality             = "radiotherapy_modality"
	FieldRadiotherapyBodySite             = "radiotherapy_body_site"
	FieldProcedureCUIs                    = "procedure_cuis"
	FieldNegatedFindings                  = "negated_findings"
	FieldPrimaryCancerCUI                 = "primary_cancer_cui"
	FieldMedicationCUIs                   = "medication_cuis"
)

// AllFields lists every output field in rendering order. The order is part
// of the output contract, rows are always written in this sequence.
var AllFields = []string{
	FieldSourceFile,
	FieldPatientName,
	FieldBirthDate,
	FieldGender,
	FieldSpecimenCollectionSite,
	FieldSpecimenType,
	FieldTumorBodyLocation,
	FieldTumorLongestDimension,
	FieldPrimaryCancerBodySite,
	FieldPrimaryCancerHistologyMorphology,
	FieldStagingTCategory,
	FieldStagingNCategory,
	FieldStagingMCategory,
	FieldPrimaryCancerAssertedDate,
	FieldTumorMarkerTestType,
	FieldTumorMarkerResultValue,
	FieldMedicationRequest,
	FieldMedicationAdministration,
	FieldProcedureCode,
	FieldProcedureBodySite,
	FieldRadiotherapyTotalDose,
	FieldRadiotherapyFractions,
	FieldRadiotherapyModality,
	FieldRadiotherapyBodySite,
	FieldProcedureCUIs,
	FieldNegatedFindings,
	FieldPrimaryCancerCUI,
	FieldMedicationCUIs,
}

// CUIFields marks the coded identifier fields left out of the stripped
// output variant.
var CUIFields = map[string]bool{
	FieldPrimaryCancerCUI: true,
	FieldMedicationCUIs:   true,
	FieldProcedureCUIs:    true,
}

// FieldTable is the flat key-value record extracted from one document.
// Absent fields are rendered as blank values.
type FieldTable map[string]string

func NewFieldTable() FieldTable {
	return make(FieldTable)
}

func (t FieldTable) Set(field, value string) {
	t[field] = value
}

func (t FieldTable) Get(field string) string {
	return t[field]
}

func (t FieldTable) Has(field string) bool {
	_, ok := t[field]
	return ok
}

// Merge copies every field of other into t, overwriting on collision.
func (t FieldTable) Merge(other FieldTable) {
	for field, value := range other {
		t[field] = value
	}
}
