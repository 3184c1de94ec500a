package visit

import (
	"time"

	"github.com/google/uuid"
)

// VitalSigns is an open map of named readings. Keys are not fixed so
// new vitals can be captured without a schema change.
type VitalSigns map[string]interface{}

// TriageRecord holds the vitals captured when a visit opens.
type TriageRecord struct {
	ID         uuid.UUID  `json:"triage_id"`
	VisitID    uuid.UUID  `json:"visit_id"`
	VitalSigns VitalSigns `json:"vital_signs"`
	RecordedBy string     `json:"recorded_by"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// PrescriptionItem is one ordered medication on a consultation note.
type PrescriptionItem struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
}

// LabTestOrder is one test the physician ordered.
type LabTestOrder struct {
	TestName string `json:"test_name"`
}

// ConsultationNote is the physician's working record for a visit. It
// is created on the first diagnosis save and updated in place after.
type ConsultationNote struct {
	ID              uuid.UUID          `json:"note_id"`
	VisitID         uuid.UUID          `json:"visit_id"`
	Diagnosis       string             `json:"diagnosis"`
	Prescription    []PrescriptionItem `json:"prescription"`
	LabTestsOrdered []LabTestOrder     `json:"lab_tests_ordered"`
	Physician       string             `json:"physician"`
	RecordedAt      time.Time          `json:"recorded_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// HasLabOrders reports whether the note sends the visit to the lab.
func (n *ConsultationNote) HasLabOrders() bool {
	return len(n.LabTestsOrdered) > 0
}

// HasPrescriptions reports whether the note sends the visit to
// pharmacy.
func (n *ConsultationNote) HasPrescriptions() bool {
	return len(n.Prescription) > 0
}

// NextQueue is where the visit should head once the physician is done,
// given the note's orders. Lab outranks pharmacy because results come
// back to the physician before dispensing.
func (n *ConsultationNote) NextQueue() State {
	switch {
	case n.HasLabOrders():
		return StateLaboratory
	case n.HasPrescriptions():
		return StatePharmacy
	default:
		return StateBilling
	}
}

// TestResult is one completed entry on a lab report.
type TestResult struct {
	TestName string `json:"test_name"`
	Value    string `json:"value"`
}

// LabResult is the laboratory's report against a note's orders.
type LabResult struct {
	ID         uuid.UUID    `json:"result_id"`
	VisitID    uuid.UUID    `json:"visit_id"`
	NoteID     uuid.UUID    `json:"note_id"`
	Results    []TestResult `json:"result"`
	TotalCost  float64      `json:"total_cost"`
	RecordedBy string       `json:"recorded_by"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// DispenseLine is one medication line on a pharmacy dispense.
type DispenseLine struct {
	MedicationName string  `json:"medication_name"`
	Quantity       int     `json:"quantity"`
	Cost           float64 `json:"cost"`
	Dispensed      bool    `json:"dispensed"`
}

// PharmacyDispense records what the pharmacy handed out for a visit.
type PharmacyDispense struct {
	ID          uuid.UUID      `json:"medication_id"`
	VisitID     uuid.UUID      `json:"visit_id"`
	NoteID      uuid.UUID      `json:"note_id"`
	Lines       []DispenseLine `json:"prescriptions"`
	Cost        float64        `json:"cost"`
	DispensedBy string         `json:"dispensed_by"`
	DispensedAt time.Time      `json:"dispensed_at"`
}

// DispensedCost sums the cost of lines actually dispensed.
func DispensedCost(lines []DispenseLine) float64 {
	var total float64
	for _, l := range lines {
		if l.Dispensed {
			total += l.Cost
		}
	}
	return total
}

// BillingRecord is the final settlement for a visit.
type BillingRecord struct {
	ID               uuid.UUID `json:"bill_id"`
	VisitID          uuid.UUID `json:"visit_id"`
	ConsultationCost float64   `json:"consultation_cost"`
	LaboratoryCost   float64   `json:"laboratory_cost"`
	PharmacyCost     float64   `json:"pharmacy_cost"`
	TotalCost        float64   `json:"total_cost"`
	BilledBy         string    `json:"billed_by"`
	RecordedAt       time.Time `json:"recorded_at"`
}
