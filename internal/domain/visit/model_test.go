package visit

import "testing"

func TestStateTransitionPath(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateTriage, StateConsultation},
		{StateConsultation, StateLaboratory},
		{StateConsultation, StatePharmacy},
		{StateConsultation, StateBilling},
		{StateLaboratory, StateConsultation},
		{StatePharmacy, StateBilling},
		{StateBilling, StateCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to State }{
		{StateTriage, StateLaboratory},
		{StateTriage, StateBilling},
		{StateConsultation, StateTriage},
		{StateConsultation, StateCompleted},
		{StateLaboratory, StateBilling},
		{StatePharmacy, StateConsultation},
		{StateBilling, StateTriage},
		{StateCompleted, StateTriage},
		{StateCompleted, StateBilling},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestStateValid(t *testing.T) {
	for _, s := range []State{StateTriage, StateConsultation, StateLaboratory, StatePharmacy, StateBilling, StateCompleted} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if State("RADIOLOGY").Valid() {
		t.Error("unknown state should be invalid")
	}
	if State("").Valid() {
		t.Error("empty state should be invalid")
	}
}

func TestNoteNextQueue(t *testing.T) {
	cases := []struct {
		name string
		note ConsultationNote
		want State
	}{
		{
			"lab orders win over prescriptions",
			ConsultationNote{
				LabTestsOrdered: []LabTestOrder{{TestName: "CBC"}},
				Prescription:    []PrescriptionItem{{Medication: "Paracetamol", Dosage: "500mg"}},
			},
			StateLaboratory,
		},
		{
			"prescriptions only",
			ConsultationNote{Prescription: []PrescriptionItem{{Medication: "Paracetamol", Dosage: "500mg"}}},
			StatePharmacy,
		},
		{
			"nothing ordered goes straight to billing",
			ConsultationNote{},
			StateBilling,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.note.NextQueue(); got != tc.want {
				t.Errorf("NextQueue() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDispensedCost(t *testing.T) {
	lines := []DispenseLine{
		{MedicationName: "Paracetamol", Quantity: 10, Cost: 5.50, Dispensed: true},
		{MedicationName: "Amoxicillin", Quantity: 20, Cost: 12.00, Dispensed: false},
		{MedicationName: "Ibuprofen", Quantity: 10, Cost: 4.25, Dispensed: true},
	}
	if got := DispensedCost(lines); got != 9.75 {
		t.Errorf("DispensedCost() = %v, want 9.75", got)
	}
	if got := DispensedCost(nil); got != 0 {
		t.Errorf("DispensedCost(nil) = %v, want 0", got)
	}
}

func TestSnapshotNote(t *testing.T) {
	snap := &Snapshot{}
	if ns := snap.Note(); ns.Present {
		t.Error("note state should be absent for empty snapshot")
	}

	note := &ConsultationNote{}
	note.ID = mustUUID(t)
	snap.Consultation = note
	ns := snap.Note()
	if !ns.Present || ns.NoteID != note.ID {
		t.Errorf("note state = %+v, want present with matching id", ns)
	}
}
