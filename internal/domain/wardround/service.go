package wardround

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
	Doctor string `json:"doctor" form:"doctor"`
	Notes  string `json:"notes" form:"notes"`
}

// Add records a general ward round. Any patient category may receive one.
func (s *Service) Add(ctx context.Context, patientID uuid.UUID, in AddInput) (*WardRound, error) {
	if strings.TrimSpace(in.Doctor) == "" {
		return nil, apperr.ValidationFailed("doctor is required")
	}
	if strings.TrimSpace(in.Notes) == "" {
		return nil, apperr.ValidationFailed("notes are required")
	}
	if err := s.ensurePatient(ctx, patientID); err != nil {
		return nil, err
	}

	wr := &WardRound{
		PatientID: patientID,
		Type:      RoundGeneral,
		Doctor:    in.Doctor,
		Notes:     in.Notes,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, wr); err != nil {
		return nil, err
	}
	return wr, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*WardRound, error) {
	if err := s.ensurePatient(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID, limit)
}

func (s *Service) ensurePatient(ctx context.Context, id uuid.UUID) error {
	ok, err := s.patients(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("patient %s not found", id)
	}
	return nil
}
