package patient

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Specialty is the parent specialty responsible for a patient.
type Specialty string

const (
	SpecialtyED           Specialty = "ED"
	SpecialtyMedicine     Specialty = "MEDICINE"
	SpecialtySurgery      Specialty = "SURGERY"
	SpecialtyOrthopaedics Specialty = "ORTHOPAEDICS"
)

func SpecialtyChoices() []Specialty {
	return []Specialty{SpecialtyED, SpecialtyMedicine, SpecialtySurgery, SpecialtyOrthopaedics}
}

func (s Specialty) Valid() bool {
	switch s {
	case SpecialtyED, SpecialtyMedicine, SpecialtySurgery, SpecialtyOrthopaedics:
		return true
	}
	return false
}

// Team is the responsible clinical team. Blank is legal between referral
// and team assignment.
type Team string

const (
	TeamED    Team = "ED"
	TeamMedA  Team = "MEDA"
	TeamMedB  Team = "MEDB"
	TeamSurgA Team = "SURGA"
	TeamSurgB Team = "SURGB"
	TeamOrtho Team = "ORTHO"
)

func TeamChoices() []Team {
	return []Team{TeamED, TeamMedA, TeamMedB, TeamSurgA, TeamSurgB, TeamOrtho}
}

func (t Team) Valid() bool {
	switch t {
	case TeamED, TeamMedA, TeamMedB, TeamSurgA, TeamSurgB, TeamOrtho:
		return true
	}
	return false
}

// TeamsForSpecialty maps each specialty to the teams that may carry its
// patients.
var TeamsForSpecialty = map[Specialty][]Team{
	SpecialtyED:           {TeamED},
	SpecialtyMedicine:     {TeamMedA, TeamMedB},
	SpecialtySurgery:      {TeamSurgA, TeamSurgB},
	SpecialtyOrthopaedics: {TeamOrtho},
}

// TeamBelongsTo reports whether team t is one of specialty s's teams.
func TeamBelongsTo(t Team, s Specialty) bool {
	for _, candidate := range TeamsForSpecialty[s] {
		if candidate == t {
			return true
		}
	}
	return false
}

// Category drives which workflow views apply to the patient.
type Category string

const (
	CategoryED             Category = "ED"
	CategoryAcuteInProcess Category = "ACUTE_INPROCESS"
	CategoryAcuteAdmitted  Category = "ACUTE_ADMITTED"
	CategoryElective       Category = "ELECTIVE"
)

func CategoryChoices() []Category {
	return []Category{CategoryED, CategoryAcuteInProcess, CategoryAcuteAdmitted, CategoryElective}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryED, CategoryAcuteInProcess, CategoryAcuteAdmitted, CategoryElective:
		return true
	}
	return false
}

type AdmissionType string

const (
	AdmissionAcute    AdmissionType = "ACUTE"
	AdmissionElective AdmissionType = "ELECTIVE"
)

func AdmissionTypeChoices() []AdmissionType {
	return []AdmissionType{AdmissionAcute, AdmissionElective}
}

func (a AdmissionType) Valid() bool {
	return a == AdmissionAcute || a == AdmissionElective
}

type ReferralSource string

const (
	SourceED     ReferralSource = "ED"
	SourceClinic ReferralSource = "CLINIC"
	SourceGP     ReferralSource = "GP"
)

func ReferralSourceChoices() []ReferralSource {
	return []ReferralSource{SourceED, SourceClinic, SourceGP}
}

func (r ReferralSource) Valid() bool {
	return r == SourceED || r == SourceClinic || r == SourceGP
}

type Location string

const (
	LocationED    Location = "ED"
	LocationWard1 Location = "WARD1"
	LocationWard2 Location = "WARD2"
	LocationWard3 Location = "WARD3"
	LocationWard4 Location = "WARD4"
	LocationWard5 Location = "WARD5"
)

func LocationChoices() []Location {
	return []Location{LocationED, LocationWard1, LocationWard2, LocationWard3, LocationWard4, LocationWard5}
}

func (l Location) Valid() bool {
	switch l {
	case LocationED, LocationWard1, LocationWard2, LocationWard3, LocationWard4, LocationWard5:
		return true
	}
	return false
}

// WorkflowStatus is the shared shape of the clerking and post-take ward
// round sub-states.
type WorkflowStatus string

const (
	StatusAwaiting    WorkflowStatus = "AWAITING"
	StatusInProgress  WorkflowStatus = "IN_PROGRESS"
	StatusCompleted   WorkflowStatus = "COMPLETED"
	StatusNotRequired WorkflowStatus = "NOT_REQUIRED"
)

func WorkflowStatusChoices() []WorkflowStatus {
	return []WorkflowStatus{StatusAwaiting, StatusInProgress, StatusCompleted, StatusNotRequired}
}

func (w WorkflowStatus) Valid() bool {
	switch w {
	case StatusAwaiting, StatusInProgress, StatusCompleted, StatusNotRequired:
		return true
	}
	return false
}

// nhiPattern: three uppercase letters followed by four digits.
var nhiPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)

// ValidNHI reports whether s is a well-formed NHI number.
func ValidNHI(s string) bool {
	return nhiPattern.MatchString(s)
}

const (
	MinBedNumber = 1
	MaxBedNumber = 16
)

// Patient is one row per hospital stay.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	NHINumber string    `db:"nhi_number" json:"nhi_number"`

	PresentingComplaint string `db:"presenting_complaint" json:"presenting_complaint"`
	Summary             string `db:"summary" json:"summary"`
	PastMedicalHistory  string `db:"past_medical_history" json:"past_medical_history"`
	Issues              string `db:"issues" json:"issues"`

	Specialty     Specialty      `db:"current_parent_specialty" json:"current_parent_specialty"`
	Team          Team           `db:"current_responsible_team" json:"current_responsible_team"`
	Category      Category       `db:"patient_category" json:"patient_category"`
	AdmissionType AdmissionType  `db:"admission_type" json:"admission_type"`
	Source        ReferralSource `db:"referral_source" json:"referral_source"`
	Location      Location       `db:"location" json:"location"`
	BedNumber     *int           `db:"bed_number" json:"bed_number"`

	PriorityFlag  bool `db:"priority_flag" json:"priority_flag"`
	WeekendReview bool `db:"weekend_review" json:"weekend_review"`

	ClerkingStatus      WorkflowStatus `db:"clerking_status" json:"clerking_status"`
	ClerkingDoctor      string         `db:"clerking_doctor" json:"clerking_doctor"`
	ClerkingCompletedAt *time.Time     `db:"clerking_completed_at" json:"clerking_completed_at"`

	PTWRStatus      WorkflowStatus `db:"post_take_ward_round_status" json:"post_take_ward_round_status"`
	PTWRDoctor      string         `db:"ptwr_doctor" json:"ptwr_doctor"`
	PTWRCompletedAt *time.Time     `db:"ptwr_completed_at" json:"ptwr_completed_at"`

	ReferralTime          *time.Time `db:"referral_time" json:"referral_time"`
	ReferralReason        string     `db:"referral_reason" json:"referral_reason"`
	ReferralToSpecialtyAt *time.Time `db:"referral_to_specialty_datetime" json:"referral_to_specialty_datetime"`

	ArrivalTime time.Time `db:"datetime_of_arrival" json:"datetime_of_arrival"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsED reports whether the patient is still in the emergency department
// workflow, which bars the clerking, ward round and team workflows.
func (p *Patient) IsED() bool {
	return p.Category == CategoryED
}

// CanCompleteAdmission holds when the acute pipeline is fully worked:
// in-process category with clerking and post-take ward round completed.
func (p *Patient) CanCompleteAdmission() bool {
	return p.Category == CategoryAcuteInProcess &&
		p.ClerkingStatus == StatusCompleted &&
		p.PTWRStatus == StatusCompleted
}
