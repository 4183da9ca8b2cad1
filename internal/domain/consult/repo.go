package consult

import (
	"context"

	"github.com/google/uuid"
)

// Filter restricts List to equality matches on enumerated fields. Zero
// values mean "no filter".
type Filter struct {
	Status    Status
	Specialty Specialty
}

type Repository interface {
	Create(ctx context.Context, cr *ConsultRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ConsultRequest, error)
	Update(ctx context.Context, cr *ConsultRequest) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ConsultRequest, error)
	List(ctx context.Context, f Filter) ([]*ConsultRequest, error)
}
