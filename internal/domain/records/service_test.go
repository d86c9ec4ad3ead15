package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/careflow/careflow/internal/domain/directory"
)

type mockRepo struct {
	records map[int64]*Record
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*Record), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, r *Record) error {
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.nextID++
	copied := *r
	m.records[r.ID] = &copied
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Record, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) GetMany(_ context.Context, ids []int64) ([]*Record, error) {
	var out []*Record
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*Record, int, error) {
	var all []*Record
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.records[id]; ok && r.PatientID == patientID {
			all = append(all, r)
		}
	}
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.records[id]; !ok {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

type mockDirectory struct {
	patients map[int64]bool
	doctors  map[int64]bool
}

func (m *mockDirectory) GetPatient(_ context.Context, id int64) (*directory.Patient, error) {
	if m.patients[id] {
		return &directory.Patient{ID: id}, nil
	}
	return nil, directory.ErrPatientNotFound
}

func (m *mockDirectory) GetDoctor(_ context.Context, id int64) (*directory.Doctor, error) {
	if m.doctors[id] {
		return &directory.Doctor{ID: id}, nil
	}
	return nil, directory.ErrDoctorNotFound
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	dir := &mockDirectory{
		patients: map[int64]bool{1: true},
		doctors:  map[int64]bool{2: true},
	}
	return NewService(repo, dir), repo
}

func TestCreate_AssignsID(t *testing.T) {
	svc, _ := newTestService()

	first, err := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "fever"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "followup"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == 0 {
		t.Error("expected assigned id")
	}
	if second.ID <= first.ID {
		t.Errorf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}
}

func TestCreate_RequiresReason(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{PatientID: 1})
	if !errors.Is(err, ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{PatientID: 42, Reason: "fever"})
	if !errors.Is(err, directory.ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestCreate_UnknownDoctor(t *testing.T) {
	svc, _ := newTestService()

	missing := int64(77)
	_, err := svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: &missing, Reason: "fever"})
	if !errors.Is(err, directory.ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_SkipsMissing(t *testing.T) {
	svc, repo := newTestService()

	a, _ := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "a"})
	b, _ := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "b"})
	c, _ := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "c"})

	delete(repo.records, b.ID)

	resolved, err := svc.Resolve(context.Background(), []int64{a.ID, b.ID, c.ID, 999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 records, got %d", len(resolved))
	}
	if resolved[0].ID != a.ID || resolved[1].ID != c.ID {
		t.Errorf("expected attach order preserved, got %d, %d", resolved[0].ID, resolved[1].ID)
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()

	rec, _ := svc.Create(context.Background(), CreateInput{PatientID: 1, Reason: "x"})
	if err := svc.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListByPatient_UnknownPatient(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.ListByPatient(context.Background(), 42, 20, 0)
	if !errors.Is(err, directory.ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}
