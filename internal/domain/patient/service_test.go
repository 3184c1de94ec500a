package patient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if search == "" ||
			strings.Contains(strings.ToLower(p.FirstName), strings.ToLower(search)) ||
			strings.Contains(strings.ToLower(p.LastName), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()

	p, err := svc.Register(context.Background(), CreateRequest{
		FirstName:   "Amina",
		LastName:    "Okonkwo",
		DateOfBirth: "1988-04-12",
		Gender:      "female",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected generated patient ID")
	}
	if _, ok := repo.patients[p.ID]; !ok {
		t.Error("patient not persisted")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing name", CreateRequest{DateOfBirth: "1990-01-01"}},
		{"bad date", CreateRequest{FirstName: "A", LastName: "B", DateOfBirth: "12/04/1988"}},
		{"future date", CreateRequest{FirstName: "A", LastName: "B", DateOfBirth: "2999-01-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.req); !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestUpdate_Partial(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Register(context.Background(), CreateRequest{
		FirstName:   "Amina",
		LastName:    "Okonkwo",
		DateOfBirth: "1988-04-12",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	phone := "0700000001"
	updated, err := svc.Update(context.Background(), p.ID, UpdateRequest{ContactNumber: &phone})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ContactNumber != phone {
		t.Errorf("ContactNumber = %q, want %q", updated.ContactNumber, phone)
	}
	if updated.FirstName != "Amina" {
		t.Errorf("FirstName changed unexpectedly: %q", updated.FirstName)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService()
	name := "X"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateRequest{FirstName: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}
