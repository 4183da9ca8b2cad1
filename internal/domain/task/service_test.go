package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wardtrack/wardtrack/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	tasks map[uuid.UUID]*Task
}

func newMockRepo() *mockRepo {
	return &mockRepo{tasks: make(map[uuid.UUID]*Task)}
}

func (m *mockRepo) Create(_ context.Context, t *Task) error {
	t.ID = uuid.New()
	m.tasks[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task %s not found", id)
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, t *Task) error {
	m.tasks[t.ID] = t
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Task, error) {
	var result []*Task
	for _, t := range m.tasks {
		if t.PatientID == patientID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockRepo) ListOpenByPatient(_ context.Context, patientID uuid.UUID) ([]*Task, error) {
	var result []*Task
	for _, t := range m.tasks {
		if t.PatientID == patientID && t.Open() {
			result = append(result, t)
		}
	}
	return result, nil
}

func newTestService(known ...uuid.UUID) (*Service, *mockRepo) {
	repo := newMockRepo()
	exists := func(_ context.Context, id uuid.UUID) (bool, error) {
		for _, k := range known {
			if k == id {
				return true, nil
			}
		}
		return false, nil
	}
	return NewService(repo, exists), repo
}

func TestAdd_DefaultsToMediumPending(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newTestService(patientID)

	created, err := svc.Add(context.Background(), patientID, AddInput{
		Description: "chase bloods",
		CreatedBy:   "Dr. Hale",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Priority != PriorityMedium {
		t.Errorf("expected MEDIUM default, got %s", created.Priority)
	}
	if created.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", created.Status)
	}
	if created.CompletedAt != nil {
		t.Error("expected completed_at unset")
	}
}

func TestAdd_Validation(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newTestService(patientID)
	ctx := context.Background()

	if _, err := svc.Add(ctx, patientID, AddInput{CreatedBy: "x"}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for missing description, got %v", err)
	}
	if _, err := svc.Add(ctx, patientID, AddInput{Description: "x"}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for missing created_by, got %v", err)
	}
	if _, err := svc.Add(ctx, patientID, AddInput{Description: "x", CreatedBy: "y", Priority: "ASAP"}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for bad priority, got %v", err)
	}
}

func TestEdit_UpdateStampsCompletionOnce(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newTestService(patientID)
	ctx := context.Background()

	created, _ := svc.Add(ctx, patientID, AddInput{Description: "chase bloods", CreatedBy: "Dr. Hale"})

	first, err := svc.Edit(ctx, created.ID, EditInput{Action: ActionUpdate, Status: StatusCompleted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CompletedAt == nil {
		t.Fatal("expected completed_at stamped")
	}

	time.Sleep(time.Millisecond)
	second, err := svc.Edit(ctx, created.ID, EditInput{Action: ActionUpdate, Status: StatusCompleted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Error("expected completed_at unchanged on repeated completion")
	}
}

func TestEdit_Complete(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newTestService(patientID)
	ctx := context.Background()

	created, _ := svc.Add(ctx, patientID, AddInput{Description: "x", CreatedBy: "y"})
	got, err := svc.Edit(ctx, created.ID, EditInput{Action: ActionComplete})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusCompleted || got.CompletedAt == nil {
		t.Errorf("expected COMPLETED with timestamp, got %s %v", got.Status, got.CompletedAt)
	}
}

func TestEdit_DeleteRemovesRow(t *testing.T) {
	patientID := uuid.New()
	svc, repo := newTestService(patientID)
	ctx := context.Background()

	created, _ := svc.Add(ctx, patientID, AddInput{Description: "x", CreatedBy: "y"})
	got, err := svc.Edit(ctx, created.ID, EditInput{Action: ActionDelete})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil task after delete")
	}
	if _, ok := repo.tasks[created.ID]; ok {
		t.Error("expected row removed")
	}
}

func TestEdit_InvalidAction(t *testing.T) {
	patientID := uuid.New()
	svc, _ := newTestService(patientID)
	ctx := context.Background()

	created, _ := svc.Add(ctx, patientID, AddInput{Description: "x", CreatedBy: "y"})
	if _, err := svc.Edit(ctx, created.ID, EditInput{Action: "archive"}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestEdit_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Edit(context.Background(), uuid.New(), EditInput{Action: ActionComplete}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("expected not-found, got %v", err)
	}
}
