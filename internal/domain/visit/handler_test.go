package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/platform/auth"
)

func newHandlerFixture(t *testing.T) (*echo.Echo, *fixture) {
	t.Helper()
	f := newFixture(t)
	e := echo.New()
	e.Use(auth.DevAuthMiddleware())
	NewHandler(f.svc).Register(e.Group("/api/v1"))
	return e, f
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAndFetchSnapshot(t *testing.T) {
	e, f := newHandlerFixture(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/visits",
		`{"patient_id":"`+f.patientID.String()+`","vital_signs":{"weight":70,"height":170}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /visits status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var v Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.CurrentState != StateTriage {
		t.Errorf("created visit state = %s, want TRIAGE", v.CurrentState)
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/visits/today/"+f.patientID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET snapshot status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.VisitID != v.ID {
		t.Error("snapshot visit id mismatch")
	}
	if snap.Triage == nil {
		t.Error("snapshot missing triage data")
	}
	if snap.Patient == nil || snap.Patient.FullName == "" {
		t.Error("snapshot missing patient data")
	}
}

func TestHandler_SnapshotNotFound(t *testing.T) {
	e, _ := newHandlerFixture(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/visits/today/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_AdvanceConflictIsDistinctFromNotFound(t *testing.T) {
	e, f := newHandlerFixture(t)

	v, err := f.svc.CreateVisit(context.Background(), CreateVisitRequest{PatientID: f.patientID}, "nurse-1")
	if err != nil {
		t.Fatal(err)
	}

	body := `{"current_state":"TRIAGE","next_state":"CONSULTATION"}`
	rec := doJSON(e, http.MethodPatch, "/api/v1/visits/"+v.ID.String()+"/state", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("first advance status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Replay the same stale assertion.
	rec = doJSON(e, http.MethodPatch, "/api/v1/visits/"+v.ID.String()+"/state", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("stale advance status = %d, want 409", rec.Code)
	}

	rec = doJSON(e, http.MethodPatch, "/api/v1/visits/"+uuid.NewString()+"/state", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown visit status = %d, want 404", rec.Code)
	}
}

func TestHandler_OffPathTransitionUnprocessable(t *testing.T) {
	e, f := newHandlerFixture(t)

	v, err := f.svc.CreateVisit(context.Background(), CreateVisitRequest{PatientID: f.patientID}, "nurse-1")
	if err != nil {
		t.Fatal(err)
	}

	rec := doJSON(e, http.MethodPatch, "/api/v1/visits/"+v.ID.String()+"/state",
		`{"current_state":"TRIAGE","next_state":"COMPLETED"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandler_ListQueue(t *testing.T) {
	e, f := newHandlerFixture(t)

	if _, err := f.svc.CreateVisit(context.Background(), CreateVisitRequest{PatientID: f.patientID}, "nurse-1"); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(e, http.MethodGet, "/api/v1/visits?state=TRIAGE", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data  []*Visit `json:"data"`
		Total int      `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("queue total = %d len = %d, want 1 and 1", resp.Total, len(resp.Data))
	}

	rec = doJSON(e, http.MethodGet, "/api/v1/visits", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing state status = %d, want 400", rec.Code)
	}
}

func TestHandler_DuplicateBillingConflict(t *testing.T) {
	e, f := newHandlerFixture(t)

	v, err := f.svc.CreateVisit(context.Background(), CreateVisitRequest{PatientID: f.patientID}, "nurse-1")
	if err != nil {
		t.Fatal(err)
	}

	body := `{"consultation_cost":50}`
	rec := doJSON(e, http.MethodPost, "/api/v1/visits/"+v.ID.String()+"/billing", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first billing status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(e, http.MethodPost, "/api/v1/visits/"+v.ID.String()+"/billing", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("second billing status = %d, want 409", rec.Code)
	}
}
