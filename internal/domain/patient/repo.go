package patient

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows list queries. Zero values mean "no constraint".
type Filter struct {
	Team           Team
	Specialty      Specialty
	ClerkingStatus WorkflowStatus
	PTWRStatus     WorkflowStatus
	AdmissionType  AdmissionType
	Location       Location
	Category       Category
	Categories     []Category
	Priority       *bool
	WeekendReview  *bool

	// SortKey is one of the whitelisted keys; anything else falls back to
	// the default order. ReferralPrimary puts referral_time ahead of
	// arrival in the default order (take list).
	SortKey         string
	SortDesc        bool
	ReferralPrimary bool
}

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNHI(ctx context.Context, nhi string) (*Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter) ([]*Patient, error)
}
