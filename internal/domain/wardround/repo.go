package wardround

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *WardRound) error
	// ListByPatient returns rounds newest first. limit <= 0 returns all.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*WardRound, error)
}
