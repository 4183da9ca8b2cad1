package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wardtrack/wardtrack/internal/platform/apperr"
)

// PatientExists reports whether a patient row exists. Wired to the patient
// repository so this package does not depend on it.
type PatientExists func(ctx context.Context, id uuid.UUID) (bool, error)

type Service struct {
	repo     Repository
	patients PatientExists
}

func NewService(repo Repository, patients PatientExists) *Service {
	return &Service{repo: repo, patients: patients}
}

type AddInput struct {
	Description string     `json:"description" form:"description"`
	Priority    Priority   `json:"priority" form:"priority"`
	AssignedTo  string     `json:"assigned_to" form:"assigned_to"`
	CreatedBy   string     `json:"created_by" form:"created_by"`
	DueDate     *time.Time `json:"due_date" form:"due_date"`
}

func (s *Service) Add(ctx context.Context, patientID uuid.UUID, in AddInput) (*Task, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.ValidationFailed("description is required")
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		return nil, apperr.ValidationFailed("created_by is required")
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, apperr.ValidationFailed("invalid priority: %q", in.Priority)
	}

	ok, err := s.patients(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("patient %s not found", patientID)
	}

	t := &Task{
		PatientID:   patientID,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      StatusPending,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   time.Now().UTC(),
		DueDate:     in.DueDate,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Edit actions accepted by the task edit endpoint.
const (
	ActionUpdate   = "update"
	ActionComplete = "complete"
	ActionDelete   = "delete"
)

type EditInput struct {
	Action      string     `json:"action" form:"action"`
	Description string     `json:"description" form:"description"`
	Priority    Priority   `json:"priority" form:"priority"`
	Status      Status     `json:"status" form:"status"`
	AssignedTo  string     `json:"assigned_to" form:"assigned_to"`
	DueDate     *time.Time `json:"due_date" form:"due_date"`
}

// Edit applies one of three actions: update overwrites submitted fields,
// complete forces COMPLETED, delete removes the row permanently. The
// completion timestamp is stamped on the first transition into COMPLETED
// only. Returns the task (nil after delete).
func (s *Service) Edit(ctx context.Context, id uuid.UUID, in EditInput) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch in.Action {
	case ActionUpdate:
		if in.Description != "" {
			t.Description = in.Description
		}
		if in.Priority != "" {
			if !in.Priority.Valid() {
				return nil, apperr.ValidationFailed("invalid priority: %q", in.Priority)
			}
			t.Priority = in.Priority
		}
		if in.Status != "" {
			if !in.Status.Valid() {
				return nil, apperr.ValidationFailed("invalid status: %q", in.Status)
			}
			t.Status = in.Status
		}
		if in.AssignedTo != "" {
			t.AssignedTo = in.AssignedTo
		}
		if in.DueDate != nil {
			t.DueDate = in.DueDate
		}
		if t.Status == StatusCompleted && t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil

	case ActionComplete:
		t.Status = StatusCompleted
		if t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return nil, err
		}
		return t, nil

	case ActionDelete:
		if err := s.repo.Delete(ctx, t.ID); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, apperr.ValidationFailed("invalid action: %q", in.Action)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Task, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListOpenByPatient(ctx context.Context, patientID uuid.UUID) ([]*Task, error) {
	return s.repo.ListOpenByPatient(ctx, patientID)
}
