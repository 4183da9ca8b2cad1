package patient

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wardtrack/wardtrack/internal/domain/wardround"
	"github.com/wardtrack/wardtrack/internal/platform/apperr"
)

// RoundLog records ward rounds created as a side effect of workflow
// transitions. Satisfied by the wardround repository.
type RoundLog interface {
	Create(ctx context.Context, r *wardround.WardRound) error
}

// TxRunner runs fn inside a storage transaction. Wired to db.WithTx in
// production; nil runs fn directly, which is what the in-memory tests
// want.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo   Repository
	rounds RoundLog
	txRun  TxRunner
}

func NewService(repo Repository, rounds RoundLog, txRun TxRunner) *Service {
	return &Service{repo: repo, rounds: rounds, txRun: txRun}
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txRun == nil {
		return fn(ctx)
	}
	return s.txRun(ctx, fn)
}

// Exists is handed to the consult, ward round and task services so they
// can verify patient ids without importing this package.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

type RegisterInput struct {
	Name                string         `json:"name" form:"name"`
	NHINumber           string         `json:"nhi_number" form:"nhi_number"`
	PresentingComplaint string         `json:"presenting_complaint" form:"presenting_complaint"`
	Summary             string         `json:"summary" form:"summary"`
	PastMedicalHistory  string         `json:"past_medical_history" form:"past_medical_history"`
	Issues              string         `json:"issues" form:"issues"`
	Specialty           Specialty      `json:"current_parent_specialty" form:"current_parent_specialty"`
	Team                Team           `json:"current_responsible_team" form:"current_responsible_team"`
	AdmissionType       AdmissionType  `json:"admission_type" form:"admission_type"`
	Source              ReferralSource `json:"referral_source" form:"referral_source"`
	Location            Location       `json:"location" form:"location"`
	BedNumber           *int           `json:"bed_number" form:"bed_number"`
	ArrivalTime         *time.Time     `json:"datetime_of_arrival" form:"datetime_of_arrival"`
}

// Register creates a patient record and derives the initial workflow
// state from the admission type and referral source:
//
//   - ELECTIVE admissions skip clerking and PTWR entirely.
//   - ED arrivals sit in the ED category until referred out; the priority
//     and weekend-review flags stay off while there.
//   - Everything else enters the acute pipeline with both sub-statuses
//     awaiting.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Patient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.ValidationFailed("name is required")
	}
	if !ValidNHI(in.NHINumber) {
		return nil, apperr.ValidationFailed("nhi_number must be 3 uppercase letters followed by 4 digits")
	}
	if strings.TrimSpace(in.PresentingComplaint) == "" {
		return nil, apperr.ValidationFailed("presenting_complaint is required")
	}
	if !in.AdmissionType.Valid() {
		return nil, apperr.ValidationFailed("invalid admission_type: %q", in.AdmissionType)
	}
	if !in.Source.Valid() {
		return nil, apperr.ValidationFailed("invalid referral_source: %q", in.Source)
	}
	if in.Location != "" && !in.Location.Valid() {
		return nil, apperr.ValidationFailed("invalid location: %q", in.Location)
	}
	if err := validateBed(in.BedNumber); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByNHI(ctx, in.NHINumber); err == nil && existing != nil {
		return nil, apperr.ValidationFailed("nhi_number %s is already registered", in.NHINumber)
	} else if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	p := &Patient{
		Name:                in.Name,
		NHINumber:           in.NHINumber,
		PresentingComplaint: in.PresentingComplaint,
		Summary:             in.Summary,
		PastMedicalHistory:  in.PastMedicalHistory,
		Issues:              in.Issues,
		Specialty:           in.Specialty,
		Team:                in.Team,
		AdmissionType:       in.AdmissionType,
		Source:              in.Source,
		Location:            in.Location,
		BedNumber:           in.BedNumber,
	}
	if in.ArrivalTime != nil {
		p.ArrivalTime = *in.ArrivalTime
	}

	switch {
	case in.AdmissionType == AdmissionElective:
		p.Category = CategoryElective
		p.ClerkingStatus = StatusNotRequired
		p.PTWRStatus = StatusNotRequired
	case in.Source == SourceED:
		p.Category = CategoryED
		p.Specialty = SpecialtyED
		p.Team = TeamED
		if p.Location == "" {
			p.Location = LocationED
		}
		p.ClerkingStatus = StatusNotRequired
		p.PTWRStatus = StatusNotRequired
		p.PriorityFlag = false
		p.WeekendReview = false
	default:
		p.Category = CategoryAcuteInProcess
		p.ClerkingStatus = StatusAwaiting
		p.PTWRStatus = StatusAwaiting
	}

	if p.Specialty != "" && !p.Specialty.Valid() {
		return nil, apperr.ValidationFailed("invalid specialty: %q", p.Specialty)
	}
	if p.Team != "" {
		if !p.Team.Valid() {
			return nil, apperr.ValidationFailed("invalid team: %q", p.Team)
		}
		if p.Specialty != "" && !TeamBelongsTo(p.Team, p.Specialty) {
			return nil, apperr.ValidationFailed("team %s does not belong to specialty %s", p.Team, p.Specialty)
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

type EditInput struct {
	Name                string   `json:"name" form:"name"`
	PresentingComplaint string   `json:"presenting_complaint" form:"presenting_complaint"`
	Summary             string   `json:"summary" form:"summary"`
	PastMedicalHistory  string   `json:"past_medical_history" form:"past_medical_history"`
	Issues              string   `json:"issues" form:"issues"`
	Location            Location `json:"location" form:"location"`
	BedNumber           *int     `json:"bed_number" form:"bed_number"`
}

// Edit updates demographics, clinical text and location. Workflow fields
// are only reachable through their own transitions.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, in EditInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.PresentingComplaint != "" {
		p.PresentingComplaint = in.PresentingComplaint
	}
	if in.Summary != "" {
		p.Summary = in.Summary
	}
	if in.PastMedicalHistory != "" {
		p.PastMedicalHistory = in.PastMedicalHistory
	}
	if in.Issues != "" {
		p.Issues = in.Issues
	}
	if in.Location != "" {
		if !in.Location.Valid() {
			return nil, apperr.ValidationFailed("invalid location: %q", in.Location)
		}
		p.Location = in.Location
	}
	if in.BedNumber != nil {
		if err := validateBed(in.BedNumber); err != nil {
			return nil, err
		}
		p.BedNumber = in.BedNumber
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type ReferInput struct {
	Specialty Specialty `json:"specialty" form:"specialty"`
	Team      Team      `json:"team" form:"team"`
	Reason    string    `json:"reason" form:"reason"`
}

// Refer moves an ED patient into the acute pipeline under the target
// specialty. Only ED-category patients may be referred; everyone else
// changes specialty instead.
func (s *Service) Refer(ctx context.Context, id uuid.UUID, in ReferInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s is not in the ED workflow; use change-specialty", p.NHINumber)
	}
	if in.Specialty == "" {
		return nil, apperr.ValidationFailed("specialty is required")
	}
	if !in.Specialty.Valid() || in.Specialty == SpecialtyED {
		return nil, apperr.ValidationFailed("referral target must be a non-ED specialty, got %q", in.Specialty)
	}
	if in.Team != "" && !TeamBelongsTo(in.Team, in.Specialty) {
		return nil, apperr.ValidationFailed("team %s does not belong to specialty %s", in.Team, in.Specialty)
	}

	now := time.Now().UTC()
	p.Specialty = in.Specialty
	p.Team = in.Team
	p.ReferralReason = in.Reason
	p.ReferralTime = &now
	p.ReferralToSpecialtyAt = &now
	p.Category = CategoryAcuteInProcess
	p.ClerkingStatus = StatusAwaiting
	p.PTWRStatus = StatusAwaiting

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type ChangeSpecialtyInput struct {
	Specialty Specialty `json:"specialty" form:"specialty"`
}

// ChangeSpecialty reassigns a non-ED patient to another specialty and
// picks one of that specialty's teams at random. Team choice within the
// specialty is an allocation policy, not a clinical decision.
func (s *Service) ChangeSpecialty(ctx context.Context, id uuid.UUID, in ChangeSpecialtyInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s must be referred out of ED first", p.NHINumber)
	}
	if !in.Specialty.Valid() || in.Specialty == SpecialtyED {
		return nil, apperr.ValidationFailed("specialty must be a non-ED specialty, got %q", in.Specialty)
	}

	teams := TeamsForSpecialty[in.Specialty]
	p.Specialty = in.Specialty
	p.Team = teams[rand.Intn(len(teams))]

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpdateTeamInput struct {
	Team Team `json:"team" form:"team"`
}

func (s *Service) UpdateTeam(ctx context.Context, id uuid.UUID, in UpdateTeamInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s must be referred out of ED first", p.NHINumber)
	}
	if !in.Team.Valid() {
		return nil, apperr.ValidationFailed("invalid team: %q", in.Team)
	}
	if !TeamBelongsTo(in.Team, p.Specialty) {
		return nil, apperr.ValidationFailed("team %s does not belong to specialty %s", in.Team, p.Specialty)
	}

	p.Team = in.Team
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type ClerkingInput struct {
	Status WorkflowStatus `json:"status" form:"status"`
	Doctor string         `json:"doctor" form:"doctor"`
}

// UpdateClerking advances the clerking sub-status. The completion
// timestamp is stamped on the first transition into COMPLETED only.
func (s *Service) UpdateClerking(ctx context.Context, id uuid.UUID, in ClerkingInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s is in the ED workflow; refer before clerking", p.NHINumber)
	}
	if !in.Status.Valid() {
		return nil, apperr.ValidationFailed("invalid clerking status: %q", in.Status)
	}
	if requiresDoctor(in.Status) && strings.TrimSpace(in.Doctor) == "" {
		return nil, apperr.ValidationFailed("doctor is required for status %s", in.Status)
	}

	p.ClerkingStatus = in.Status
	if in.Doctor != "" {
		p.ClerkingDoctor = in.Doctor
	}
	if in.Status == StatusCompleted && p.ClerkingCompletedAt == nil {
		now := time.Now().UTC()
		p.ClerkingCompletedAt = &now
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type PTWRInput struct {
	Status WorkflowStatus `json:"status" form:"status"`
	Doctor string         `json:"doctor" form:"doctor"`
	Notes  string         `json:"notes" form:"notes"`
}

// UpdatePTWR advances the post-take ward round sub-status. Every
// submission with status COMPLETED records a POST_TAKE ward round; the
// round history is deliberately append-only, so re-submitting COMPLETED
// records another round. The status update and the round insert commit
// in one transaction.
func (s *Service) UpdatePTWR(ctx context.Context, id uuid.UUID, in PTWRInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s is in the ED workflow; refer before the post-take round", p.NHINumber)
	}
	if !in.Status.Valid() {
		return nil, apperr.ValidationFailed("invalid ptwr status: %q", in.Status)
	}
	if requiresDoctor(in.Status) && strings.TrimSpace(in.Doctor) == "" {
		return nil, apperr.ValidationFailed("doctor is required for status %s", in.Status)
	}

	p.PTWRStatus = in.Status
	if in.Doctor != "" {
		p.PTWRDoctor = in.Doctor
	}

	if in.Status != StatusCompleted {
		if err := s.repo.Update(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	now := time.Now().UTC()
	if p.PTWRCompletedAt == nil {
		p.PTWRCompletedAt = &now
	}
	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}
		return s.rounds.Create(ctx, &wardround.WardRound{
			PatientID: p.ID,
			Type:      wardround.RoundPostTake,
			Doctor:    in.Doctor,
			Notes:     in.Notes,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func requiresDoctor(s WorkflowStatus) bool {
	return s == StatusInProgress || s == StatusCompleted
}

// CompleteAdmission moves an in-process acute patient to ACUTE_ADMITTED.
// Both sub-workflows must be completed first.
func (s *Service) CompleteAdmission(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanCompleteAdmission() {
		return nil, apperr.PreconditionFailed(
			"cannot complete admission: category=%s clerking=%s ptwr=%s",
			p.Category, p.ClerkingStatus, p.PTWRStatus)
	}

	p.Category = CategoryAcuteAdmitted
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// TogglePriority flips the priority flag. ED patients carry no flags
// until referred into the acute pipeline.
func (s *Service) TogglePriority(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.toggle(ctx, id, func(p *Patient) { p.PriorityFlag = !p.PriorityFlag })
}

func (s *Service) ToggleWeekendReview(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.toggle(ctx, id, func(p *Patient) { p.WeekendReview = !p.WeekendReview })
}

func (s *Service) toggle(ctx context.Context, id uuid.UUID, flip func(*Patient)) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsED() {
		return nil, apperr.PreconditionFailed("patient %s is in the ED workflow and carries no flags", p.NHINumber)
	}
	flip(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListFilter carries the query-string filters accepted by the list
// views.
type ListFilter struct {
	Team           Team           `query:"team"`
	Specialty      Specialty      `query:"specialty"`
	ClerkingStatus WorkflowStatus `query:"clerking_status"`
	PTWRStatus     WorkflowStatus `query:"ptwr_status"`
	AdmissionType  AdmissionType  `query:"admission_type"`
	Category       Category       `query:"category"`
	Location       Location       `query:"location"`
	Priority       bool           `query:"priority"`
}

func (f ListFilter) validate() error {
	if f.Team != "" && !f.Team.Valid() {
		return apperr.ValidationFailed("invalid team filter: %q", f.Team)
	}
	if f.Specialty != "" && !f.Specialty.Valid() {
		return apperr.ValidationFailed("invalid specialty filter: %q", f.Specialty)
	}
	if f.ClerkingStatus != "" && !f.ClerkingStatus.Valid() {
		return apperr.ValidationFailed("invalid clerking_status filter: %q", f.ClerkingStatus)
	}
	if f.PTWRStatus != "" && !f.PTWRStatus.Valid() {
		return apperr.ValidationFailed("invalid ptwr_status filter: %q", f.PTWRStatus)
	}
	if f.AdmissionType != "" && !f.AdmissionType.Valid() {
		return apperr.ValidationFailed("invalid admission_type filter: %q", f.AdmissionType)
	}
	if f.Category != "" && !f.Category.Valid() {
		return apperr.ValidationFailed("invalid category filter: %q", f.Category)
	}
	if f.Location != "" && !f.Location.Valid() {
		return apperr.ValidationFailed("invalid location filter: %q", f.Location)
	}
	return nil
}

// List returns all patients matching the filters, arrival order.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Patient, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, Filter{
		Team:           f.Team,
		Specialty:      f.Specialty,
		ClerkingStatus: f.ClerkingStatus,
		PTWRStatus:     f.PTWRStatus,
		AdmissionType:  f.AdmissionType,
	})
}

// TakeStats tallies the acute pipeline by workflow stage. Every count is
// computed over the same filtered set as the returned list, so list and
// counts always agree.
type TakeStats struct {
	Total              int `json:"total"`
	AwaitingClerking   int `json:"awaiting_clerking"`
	ClerkingInProgress int `json:"clerking_in_progress"`
	Clerked            int `json:"clerked"`
	AwaitingPTWR       int `json:"awaiting_ptwr"`
	PTWRInProgress     int `json:"ptwr_in_progress"`
	ReadyToAdmit       int `json:"ready_to_admit"`
	Admitted           int `json:"admitted"`
}

// TakeList returns the acute admission pipeline: in-process and admitted
// patients, referral time first then arrival, unless an explicit sort
// key is given.
func (s *Service) TakeList(ctx context.Context, f ListFilter, sortKey string, sortDesc bool) ([]*Patient, TakeStats, error) {
	if err := f.validate(); err != nil {
		return nil, TakeStats{}, err
	}
	filter := Filter{
		Team:            f.Team,
		Specialty:       f.Specialty,
		ClerkingStatus:  f.ClerkingStatus,
		PTWRStatus:      f.PTWRStatus,
		AdmissionType:   f.AdmissionType,
		Categories:      []Category{CategoryAcuteInProcess, CategoryAcuteAdmitted},
		SortKey:         sortKey,
		SortDesc:        sortDesc,
		ReferralPrimary: true,
	}
	if f.Priority {
		t := true
		filter.Priority = &t
	}

	patients, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, TakeStats{}, err
	}

	var stats TakeStats
	stats.Total = len(patients)
	for _, p := range patients {
		switch {
		case p.Category == CategoryAcuteAdmitted:
			stats.Admitted++
			continue
		case p.CanCompleteAdmission():
			stats.ReadyToAdmit++
		}
		switch p.ClerkingStatus {
		case StatusAwaiting:
			stats.AwaitingClerking++
		case StatusInProgress:
			stats.ClerkingInProgress++
		case StatusCompleted:
			stats.Clerked++
		}
		switch p.PTWRStatus {
		case StatusAwaiting:
			stats.AwaitingPTWR++
		case StatusInProgress:
			stats.PTWRInProgress++
		}
	}
	return patients, stats, nil
}

// WeekendReviewList returns the patients flagged for weekend review.
func (s *Service) WeekendReviewList(ctx context.Context, f ListFilter) ([]*Patient, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	t := true
	return s.repo.List(ctx, Filter{
		Team:          f.Team,
		Specialty:     f.Specialty,
		Category:      f.Category,
		Location:      f.Location,
		WeekendReview: &t,
	})
}

func validateBed(bed *int) error {
	if bed == nil {
		return nil
	}
	if *bed < MinBedNumber || *bed > MaxBedNumber {
		return apperr.ValidationFailed("bed_number must be between %d and %d", MinBedNumber, MaxBedNumber)
	}
	return nil
}
