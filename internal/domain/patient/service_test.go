package patient

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wardtrack/wardtrack/internal/domain/wardround"
	"github.com/wardtrack/wardtrack/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.ArrivalTime.IsZero() {
		p.ArrivalTime = now
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByNHI(_ context.Context, nhi string) (*Patient, error) {
	for _, p := range m.patients {
		if p.NHINumber == nhi {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("patient with NHI %s not found", nhi)
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return apperr.NotFound("patient %s not found", p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter) ([]*Patient, error) {
	var result []*Patient
	for _, p := range m.patients {
		if !matches(p, f) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}
	sortPatients(result, f)
	return result, nil
}

func matches(p *Patient, f Filter) bool {
	if f.Team != "" && p.Team != f.Team {
		return false
	}
	if f.Specialty != "" && p.Specialty != f.Specialty {
		return false
	}
	if f.ClerkingStatus != "" && p.ClerkingStatus != f.ClerkingStatus {
		return false
	}
	if f.PTWRStatus != "" && p.PTWRStatus != f.PTWRStatus {
		return false
	}
	if f.AdmissionType != "" && p.AdmissionType != f.AdmissionType {
		return false
	}
	if f.Location != "" && p.Location != f.Location {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if p.Category == c {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.Priority != nil && p.PriorityFlag != *f.Priority {
		return false
	}
	if f.WeekendReview != nil && p.WeekendReview != *f.WeekendReview {
		return false
	}
	return true
}

func sortPatients(ps []*Patient, f Filter) {
	less := func(a, b *Patient) bool { return a.ArrivalTime.Before(b.ArrivalTime) }
	switch f.SortKey {
	case "name":
		less = func(a, b *Patient) bool { return a.Name < b.Name }
	case "nhi":
		less = func(a, b *Patient) bool { return a.NHINumber < b.NHINumber }
	case "arrival":
		// default comparator
	default:
		if f.ReferralPrimary {
			less = func(a, b *Patient) bool {
				switch {
				case a.ReferralTime != nil && b.ReferralTime != nil:
					return a.ReferralTime.Before(*b.ReferralTime)
				case a.ReferralTime != nil:
					return true
				case b.ReferralTime != nil:
					return false
				}
				return a.ArrivalTime.Before(b.ArrivalTime)
			}
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if f.SortDesc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

// -- Mock round log --

type mockRoundLog struct {
	rounds []*wardround.WardRound
}

func (m *mockRoundLog) Create(_ context.Context, r *wardround.WardRound) error {
	r.ID = uuid.New()
	m.rounds = append(m.rounds, r)
	return nil
}

func newTestService() (*Service, *mockRepo, *mockRoundLog) {
	repo := newMockRepo()
	rounds := &mockRoundLog{}
	return NewService(repo, rounds, nil), repo, rounds
}

func edIntake(t *testing.T, svc *Service, nhi string) *Patient {
	t.Helper()
	p, err := svc.Register(context.Background(), RegisterInput{
		Name:                "Jo Smith",
		NHINumber:           nhi,
		PresentingComplaint: "chest pain",
		AdmissionType:       AdmissionAcute,
		Source:              SourceED,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func referredPatient(t *testing.T, svc *Service, nhi string) *Patient {
	t.Helper()
	p := edIntake(t, svc, nhi)
	p, err := svc.Refer(context.Background(), p.ID, ReferInput{
		Specialty: SpecialtyMedicine,
		Team:      TeamMedA,
		Reason:    "chest pain",
	})
	if err != nil {
		t.Fatalf("refer: %v", err)
	}
	return p
}

// -- Registration --

func TestRegister_EDIntake(t *testing.T) {
	svc, _, _ := newTestService()
	p := edIntake(t, svc, "ABC1234")

	if p.Category != CategoryED {
		t.Errorf("expected ED category, got %s", p.Category)
	}
	if p.Specialty != SpecialtyED || p.Team != TeamED {
		t.Errorf("expected ED specialty/team, got %s/%s", p.Specialty, p.Team)
	}
	if p.ClerkingStatus != StatusNotRequired || p.PTWRStatus != StatusNotRequired {
		t.Errorf("expected NOT_REQUIRED sub-statuses, got %s/%s", p.ClerkingStatus, p.PTWRStatus)
	}
	if p.PriorityFlag || p.WeekendReview {
		t.Error("ED patients must carry no flags")
	}
}

func TestRegister_ElectiveSkipsWorkflow(t *testing.T) {
	svc, _, _ := newTestService()
	p, err := svc.Register(context.Background(), RegisterInput{
		Name:                "Pat Doe",
		NHINumber:           "DEF5678",
		PresentingComplaint: "hip replacement",
		Specialty:           SpecialtyOrthopaedics,
		Team:                TeamOrtho,
		AdmissionType:       AdmissionElective,
		Source:              SourceClinic,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Category != CategoryElective {
		t.Errorf("expected ELECTIVE, got %s", p.Category)
	}
	if p.ClerkingStatus != StatusNotRequired || p.PTWRStatus != StatusNotRequired {
		t.Errorf("expected NOT_REQUIRED sub-statuses, got %s/%s", p.ClerkingStatus, p.PTWRStatus)
	}
}

func TestRegister_DirectAcuteEntersPipeline(t *testing.T) {
	svc, _, _ := newTestService()
	p, err := svc.Register(context.Background(), RegisterInput{
		Name:                "Sam Roe",
		NHINumber:           "GHI9012",
		PresentingComplaint: "abdominal pain",
		Specialty:           SpecialtySurgery,
		Team:                TeamSurgA,
		AdmissionType:       AdmissionAcute,
		Source:              SourceGP,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if p.Category != CategoryAcuteInProcess {
		t.Errorf("expected ACUTE_INPROCESS, got %s", p.Category)
	}
	if p.ClerkingStatus != StatusAwaiting || p.PTWRStatus != StatusAwaiting {
		t.Errorf("expected AWAITING sub-statuses, got %s/%s", p.ClerkingStatus, p.PTWRStatus)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing name", RegisterInput{NHINumber: "ABC1234", PresentingComplaint: "x", AdmissionType: AdmissionAcute, Source: SourceED}},
		{"bad nhi", RegisterInput{Name: "x", NHINumber: "abc1234", PresentingComplaint: "x", AdmissionType: AdmissionAcute, Source: SourceED}},
		{"missing complaint", RegisterInput{Name: "x", NHINumber: "ABC1234", AdmissionType: AdmissionAcute, Source: SourceED}},
		{"bad admission type", RegisterInput{Name: "x", NHINumber: "ABC1234", PresentingComplaint: "x", AdmissionType: "DAYCASE", Source: SourceED}},
		{"bad source", RegisterInput{Name: "x", NHINumber: "ABC1234", PresentingComplaint: "x", AdmissionType: AdmissionAcute, Source: "HOME"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); apperr.KindOf(err) != apperr.KindValidationFailed {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateNHI(t *testing.T) {
	svc, _, _ := newTestService()
	edIntake(t, svc, "ABC1234")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:                "Other Person",
		NHINumber:           "ABC1234",
		PresentingComplaint: "headache",
		AdmissionType:       AdmissionAcute,
		Source:              SourceED,
	})
	if apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for duplicate NHI, got %v", err)
	}
}

// -- Referral --

func TestRefer_MovesEDPatientIntoPipeline(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")

	if p.Category != CategoryAcuteInProcess {
		t.Errorf("expected ACUTE_INPROCESS, got %s", p.Category)
	}
	if p.ClerkingStatus != StatusAwaiting || p.PTWRStatus != StatusAwaiting {
		t.Errorf("expected AWAITING/AWAITING, got %s/%s", p.ClerkingStatus, p.PTWRStatus)
	}
	if p.Specialty != SpecialtyMedicine || p.Team != TeamMedA {
		t.Errorf("expected MEDICINE/MEDA, got %s/%s", p.Specialty, p.Team)
	}
	if p.ReferralTime == nil || p.ReferralToSpecialtyAt == nil {
		t.Error("expected referral timestamps stamped")
	}
	if p.ReferralReason != "chest pain" {
		t.Errorf("unexpected referral reason %q", p.ReferralReason)
	}
}

func TestRefer_NonEDRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")

	_, err := svc.Refer(context.Background(), p.ID, ReferInput{Specialty: SpecialtySurgery})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected precondition error, got %v", err)
	}
	stored := repo.patients[p.ID]
	if stored.Specialty != SpecialtyMedicine {
		t.Error("failed referral must not mutate state")
	}
}

func TestRefer_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	p := edIntake(t, svc, "ABC1234")
	ctx := context.Background()

	if _, err := svc.Refer(ctx, p.ID, ReferInput{}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for missing specialty, got %v", err)
	}
	if _, err := svc.Refer(ctx, p.ID, ReferInput{Specialty: SpecialtyED}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for ED target, got %v", err)
	}
	if _, err := svc.Refer(ctx, p.ID, ReferInput{Specialty: SpecialtyMedicine, Team: TeamOrtho}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for mismatched team, got %v", err)
	}
}

// -- Clerking --

func TestUpdateClerking_CompletedStampsOnce(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	p, err := svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusCompleted, Doctor: "Dr. A"})
	if err != nil {
		t.Fatalf("clerking: %v", err)
	}
	if p.ClerkingStatus != StatusCompleted || p.ClerkingDoctor != "Dr. A" {
		t.Errorf("unexpected state %s/%s", p.ClerkingStatus, p.ClerkingDoctor)
	}
	if p.ClerkingCompletedAt == nil {
		t.Fatal("expected clerking_completed_at stamped")
	}
	if p.PTWRStatus != StatusAwaiting {
		t.Errorf("ptwr must be unaffected, got %s", p.PTWRStatus)
	}
	first := *p.ClerkingCompletedAt

	time.Sleep(time.Millisecond)
	p, err = svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusCompleted, Doctor: "Dr. A"})
	if err != nil {
		t.Fatalf("clerking: %v", err)
	}
	if !p.ClerkingCompletedAt.Equal(first) {
		t.Error("completion timestamp must not move on re-submission")
	}
}

func TestUpdateClerking_DoctorRequired(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	if _, err := svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusInProgress}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusCompleted}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateClerking_EDPatientRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	p := edIntake(t, svc, "ABC1234")

	_, err := svc.UpdateClerking(context.Background(), p.ID, ClerkingInput{Status: StatusInProgress, Doctor: "Dr. A"})
	if apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected precondition error, got %v", err)
	}
	stored := repo.patients[p.ID]
	if stored.Category != CategoryED || stored.ClerkingStatus != StatusNotRequired {
		t.Error("failed clerking must not mutate state")
	}
}

// -- PTWR --

func TestUpdatePTWR_CompletionCreatesRound(t *testing.T) {
	svc, _, rounds := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	if _, err := svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusCompleted, Doctor: "Dr. A"}); err != nil {
		t.Fatalf("clerking: %v", err)
	}
	p, err := svc.UpdatePTWR(ctx, p.ID, PTWRInput{Status: StatusCompleted, Doctor: "Dr. B", Notes: "stable"})
	if err != nil {
		t.Fatalf("ptwr: %v", err)
	}
	if p.PTWRStatus != StatusCompleted || p.PTWRCompletedAt == nil {
		t.Errorf("unexpected ptwr state %s %v", p.PTWRStatus, p.PTWRCompletedAt)
	}
	if len(rounds.rounds) != 1 {
		t.Fatalf("expected exactly one round, got %d", len(rounds.rounds))
	}
	r := rounds.rounds[0]
	if r.Type != wardround.RoundPostTake || r.Doctor != "Dr. B" || r.Notes != "stable" || r.PatientID != p.ID {
		t.Errorf("unexpected round %+v", r)
	}
}

func TestUpdatePTWR_RepeatedCompletionAppendsRounds(t *testing.T) {
	svc, _, rounds := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.UpdatePTWR(ctx, p.ID, PTWRInput{Status: StatusCompleted, Doctor: "Dr. B", Notes: "stable"}); err != nil {
			t.Fatalf("ptwr: %v", err)
		}
	}
	if len(rounds.rounds) != 2 {
		t.Errorf("round history is append-only; expected 2 rounds, got %d", len(rounds.rounds))
	}
}

func TestUpdatePTWR_NonCompletionCreatesNoRound(t *testing.T) {
	svc, _, rounds := newTestService()
	p := referredPatient(t, svc, "ABC1234")

	if _, err := svc.UpdatePTWR(context.Background(), p.ID, PTWRInput{Status: StatusInProgress, Doctor: "Dr. B"}); err != nil {
		t.Fatalf("ptwr: %v", err)
	}
	if len(rounds.rounds) != 0 {
		t.Errorf("expected no rounds, got %d", len(rounds.rounds))
	}
}

// -- Complete admission --

func TestCompleteAdmission_FullPipeline(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	if _, err := svc.CompleteAdmission(ctx, p.ID); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Fatalf("expected precondition error before workflows complete, got %v", err)
	}

	if _, err := svc.UpdateClerking(ctx, p.ID, ClerkingInput{Status: StatusCompleted, Doctor: "Dr. A"}); err != nil {
		t.Fatalf("clerking: %v", err)
	}
	if _, err := svc.UpdatePTWR(ctx, p.ID, PTWRInput{Status: StatusCompleted, Doctor: "Dr. B", Notes: "stable"}); err != nil {
		t.Fatalf("ptwr: %v", err)
	}

	p, err := svc.CompleteAdmission(ctx, p.ID)
	if err != nil {
		t.Fatalf("complete admission: %v", err)
	}
	if p.Category != CategoryAcuteAdmitted {
		t.Errorf("expected ACUTE_ADMITTED, got %s", p.Category)
	}

	if _, err := svc.CompleteAdmission(ctx, p.ID); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Errorf("expected precondition error on second completion, got %v", err)
	}
}

// -- Toggles --

func TestToggles(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	p, err := svc.TogglePriority(ctx, p.ID)
	if err != nil {
		t.Fatalf("toggle priority: %v", err)
	}
	if !p.PriorityFlag {
		t.Error("expected priority flag on")
	}
	p, err = svc.TogglePriority(ctx, p.ID)
	if err != nil {
		t.Fatalf("toggle priority: %v", err)
	}
	if p.PriorityFlag {
		t.Error("expected priority flag off after second toggle")
	}

	p, err = svc.ToggleWeekendReview(ctx, p.ID)
	if err != nil {
		t.Fatalf("toggle weekend review: %v", err)
	}
	if !p.WeekendReview {
		t.Error("expected weekend review on")
	}
}

func TestToggles_EDPatientRejected(t *testing.T) {
	svc, repo, _ := newTestService()
	p := edIntake(t, svc, "ABC1234")
	ctx := context.Background()

	if _, err := svc.TogglePriority(ctx, p.ID); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Errorf("expected precondition error, got %v", err)
	}
	if _, err := svc.ToggleWeekendReview(ctx, p.ID); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Errorf("expected precondition error, got %v", err)
	}
	stored := repo.patients[p.ID]
	if stored.PriorityFlag || stored.WeekendReview {
		t.Error("ED patient flags must stay off")
	}
}

// -- Specialty / team --

func TestChangeSpecialty_PicksTeamFromSet(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")

	p, err := svc.ChangeSpecialty(context.Background(), p.ID, ChangeSpecialtyInput{Specialty: SpecialtySurgery})
	if err != nil {
		t.Fatalf("change specialty: %v", err)
	}
	if p.Specialty != SpecialtySurgery {
		t.Errorf("expected SURGERY, got %s", p.Specialty)
	}
	if !TeamBelongsTo(p.Team, SpecialtySurgery) {
		t.Errorf("assigned team %s does not belong to SURGERY", p.Team)
	}
}

func TestChangeSpecialty_EDPatientRejected(t *testing.T) {
	svc, _, _ := newTestService()
	p := edIntake(t, svc, "ABC1234")

	if _, err := svc.ChangeSpecialty(context.Background(), p.ID, ChangeSpecialtyInput{Specialty: SpecialtyMedicine}); apperr.KindOf(err) != apperr.KindPreconditionFailed {
		t.Errorf("expected precondition error, got %v", err)
	}
}

func TestUpdateTeam(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	ctx := context.Background()

	p, err := svc.UpdateTeam(ctx, p.ID, UpdateTeamInput{Team: TeamMedB})
	if err != nil {
		t.Fatalf("update team: %v", err)
	}
	if p.Team != TeamMedB {
		t.Errorf("expected MEDB, got %s", p.Team)
	}

	if _, err := svc.UpdateTeam(ctx, p.ID, UpdateTeamInput{Team: TeamSurgA}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for foreign team, got %v", err)
	}
}

// -- Lists --

func TestTakeList_StatsAgreeWithList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	// Two referred patients at different stages plus one admitted and
	// one still in ED (excluded).
	referredPatient(t, svc, "AAA1111")
	p2 := referredPatient(t, svc, "BBB2222")
	p3 := referredPatient(t, svc, "CCC3333")
	edIntake(t, svc, "DDD4444")

	if _, err := svc.UpdateClerking(ctx, p2.ID, ClerkingInput{Status: StatusInProgress, Doctor: "Dr. A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateClerking(ctx, p3.ID, ClerkingInput{Status: StatusCompleted, Doctor: "Dr. A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdatePTWR(ctx, p3.ID, PTWRInput{Status: StatusCompleted, Doctor: "Dr. B", Notes: "ok"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteAdmission(ctx, p3.ID); err != nil {
		t.Fatal(err)
	}

	patients, stats, err := svc.TakeList(ctx, ListFilter{}, "", false)
	if err != nil {
		t.Fatalf("take list: %v", err)
	}
	if stats.Total != len(patients) {
		t.Errorf("total %d disagrees with list length %d", stats.Total, len(patients))
	}
	if stats.Total != 3 {
		t.Errorf("expected 3 pipeline patients, got %d", stats.Total)
	}

	count := func(pred func(*Patient) bool) int {
		n := 0
		for _, p := range patients {
			if pred(p) {
				n++
			}
		}
		return n
	}
	if want := count(func(p *Patient) bool {
		return p.Category == CategoryAcuteInProcess && p.ClerkingStatus == StatusAwaiting
	}); stats.AwaitingClerking != want {
		t.Errorf("awaiting_clerking = %d, want %d", stats.AwaitingClerking, want)
	}
	if want := count(func(p *Patient) bool {
		return p.Category == CategoryAcuteInProcess && p.ClerkingStatus == StatusInProgress
	}); stats.ClerkingInProgress != want {
		t.Errorf("clerking_in_progress = %d, want %d", stats.ClerkingInProgress, want)
	}
	if want := count(func(p *Patient) bool {
		return p.Category == CategoryAcuteAdmitted
	}); stats.Admitted != want {
		t.Errorf("admitted = %d, want %d", stats.Admitted, want)
	}
}

func TestTakeList_FilterRespectedByStats(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	referredPatient(t, svc, "AAA1111")
	p2 := referredPatient(t, svc, "BBB2222")
	if _, err := svc.ChangeSpecialty(ctx, p2.ID, ChangeSpecialtyInput{Specialty: SpecialtySurgery}); err != nil {
		t.Fatal(err)
	}

	patients, stats, err := svc.TakeList(ctx, ListFilter{Specialty: SpecialtyMedicine}, "", false)
	if err != nil {
		t.Fatalf("take list: %v", err)
	}
	if len(patients) != 1 || stats.Total != 1 {
		t.Errorf("expected 1 MEDICINE patient, got list=%d total=%d", len(patients), stats.Total)
	}
}

func TestTakeList_UnknownSortFallsBack(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	referredPatient(t, svc, "AAA1111")
	referredPatient(t, svc, "BBB2222")

	withBadSort, _, err := svc.TakeList(ctx, ListFilter{}, "bogus", false)
	if err != nil {
		t.Fatalf("take list: %v", err)
	}
	withDefault, _, err := svc.TakeList(ctx, ListFilter{}, "", false)
	if err != nil {
		t.Fatalf("take list: %v", err)
	}
	if len(withBadSort) != len(withDefault) {
		t.Fatalf("lists differ in length")
	}
	for i := range withDefault {
		if withBadSort[i].ID != withDefault[i].ID {
			t.Errorf("unknown sort key must fall back to default order")
		}
	}
}

func TestWeekendReviewList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p1 := referredPatient(t, svc, "AAA1111")
	referredPatient(t, svc, "BBB2222")
	if _, err := svc.ToggleWeekendReview(ctx, p1.ID); err != nil {
		t.Fatal(err)
	}

	patients, err := svc.WeekendReviewList(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("weekend review list: %v", err)
	}
	if len(patients) != 1 || patients[0].ID != p1.ID {
		t.Errorf("expected only the flagged patient, got %d", len(patients))
	}
}

func TestList_InvalidFilter(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.List(context.Background(), ListFilter{Team: "MEDC"}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error, got %v", err)
	}
}

// -- Edit --

func TestEdit_UpdatesTextAndLocation(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	bed := 7

	p, err := svc.Edit(context.Background(), p.ID, EditInput{
		Summary:   "improving",
		Location:  LocationWard2,
		BedNumber: &bed,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if p.Summary != "improving" || p.Location != LocationWard2 || p.BedNumber == nil || *p.BedNumber != 7 {
		t.Errorf("unexpected state after edit: %+v", p)
	}
}

func TestEdit_BedRange(t *testing.T) {
	svc, _, _ := newTestService()
	p := referredPatient(t, svc, "ABC1234")
	bed := 17

	if _, err := svc.Edit(context.Background(), p.ID, EditInput{BedNumber: &bed}); apperr.KindOf(err) != apperr.KindValidationFailed {
		t.Errorf("expected validation error for bed 17, got %v", err)
	}
}
