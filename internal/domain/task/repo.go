package task

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Task, error)
	// ListOpenByPatient returns PENDING and IN_PROGRESS tasks only.
	ListOpenByPatient(ctx context.Context, patientID uuid.UUID) ([]*Task, error)
}
