package consult

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

type RequestInput struct {
	Specialty   Specialty `json:"specialty" form:"specialty"`
	Reason      string    `json:"reason" form:"reason"`
	RequestedBy string    `json:"requested_by" form:"requested_by"`
}

// Request submits a new consult. Always permitted regardless of the
// patient's workflow state.
func (s *Service) Request(ctx context.Context, patientID uuid.UUID, in RequestInput) (*ConsultRequest, error) {
	if !in.Specialty.Valid() {
		return nil, apperr.ValidationFailed("invalid consult specialty: %q", in.Specialty)
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperr.ValidationFailed("reason is required")
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return nil, apperr.ValidationFailed("requested_by is required")
	}

	ok, err := s.patients(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("patient %s not found", patientID)
	}

	cr := &ConsultRequest{
		PatientID:   patientID,
		Specialty:   in.Specialty,
		Reason:      in.Reason,
		Status:      StatusRequested,
		RequestedBy: in.RequestedBy,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

type ReviewInput struct {
	Status     Status `json:"status" form:"status"`
	ReviewedBy string `json:"reviewed_by" form:"reviewed_by"`
	Comments   string `json:"comments" form:"comments"`
}

// Review moves a consult through its status lifecycle. reviewed_at is
// stamped whenever the submitted status is anything other than REQUESTED.
func (s *Service) Review(ctx context.Context, id uuid.UUID, in ReviewInput) (*ConsultRequest, error) {
	if !in.Status.Valid() {
		return nil, apperr.ValidationFailed("invalid consult status: %q", in.Status)
	}

	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cr.Status = in.Status
	if in.ReviewedBy != "" {
		cr.ReviewedBy = in.ReviewedBy
	}
	if in.Comments != "" {
		cr.Comments = in.Comments
	}
	if in.Status != StatusRequested {
		now := time.Now().UTC()
		cr.ReviewedAt = &now
	}

	if err := s.repo.Update(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ConsultRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ConsultRequest, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Stats summarises a consult list for the dashboard. OpenBySpecialty
// excludes COMPLETED consults; declined ones remain visible until closed
// out by the requesting team.
type Stats struct {
	Total           int               `json:"total"`
	OpenBySpecialty map[Specialty]int `json:"open_by_specialty"`
	ByStatus        map[Status]int    `json:"by_status"`
}

type List struct {
	Consults []*ConsultRequest `json:"consults"`
	Stats    Stats             `json:"stats"`
}

// ListWithStats returns the filtered consults together with tallies
// computed over the same filtered set, so the numbers always agree with
// the rows shown.
func (s *Service) ListWithStats(ctx context.Context, f Filter) (*List, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.ValidationFailed("invalid consult status filter: %q", f.Status)
	}
	if f.Specialty != "" && !f.Specialty.Valid() {
		return nil, apperr.ValidationFailed("invalid consult specialty filter: %q", f.Specialty)
	}

	consults, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		Total:           len(consults),
		OpenBySpecialty: make(map[Specialty]int),
		ByStatus:        make(map[Status]int),
	}
	for _, cr := range consults {
		stats.ByStatus[cr.Status]++
		if cr.Open() {
			stats.OpenBySpecialty[cr.Specialty]++
		}
	}

	return &List{Consults: consults, Stats: stats}, nil
}
