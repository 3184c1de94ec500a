package visit

import "errors"

var (
	// ErrNoOpenVisit indicates the patient has no open visit. Not an
	// exceptional condition: a patient who has not been triaged today
	// simply has none.
	ErrNoOpenVisit = errors.New("no open visit for patient")

	// ErrOpenVisitExists rejects creating a second open visit.
	ErrOpenVisitExists = errors.New("patient already has an open visit")

	// ErrMultipleOpenVisits signals a data-integrity fault: more than
	// one open visit for the same patient. The service never silently
	// picks one.
	ErrMultipleOpenVisits = errors.New("multiple open visits for patient")

	// ErrStateConflict is returned when a transition asserts a current
	// state that no longer matches the stored one. The caller should
	// re-fetch and retry.
	ErrStateConflict = errors.New("visit state changed, refresh and retry")

	// ErrInvalidTransition rejects a transition outside the workflow
	// path.
	ErrInvalidTransition = errors.New("transition not allowed from current state")

	// ErrDuplicateRecord rejects a second department record of the same
	// kind for one visit.
	ErrDuplicateRecord = errors.New("department record already exists for visit")

	// ErrNoteMissing is returned when a lab result or dispense
	// references a consultation note the visit does not have.
	ErrNoteMissing = errors.New("visit has no consultation note")

	// ErrVisitNotFound indicates the visit ID does not exist.
	ErrVisitNotFound = errors.New("visit not found")

	// ErrPatientNotFound is returned by the patient directory when the
	// referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrValidation covers malformed department payloads.
	ErrValidation = errors.New("validation failed")
)
