package consult

import (
	"time"

	"github.com/google/uuid"
)

// Specialty is the set of services a consult can be requested from. It is
// wider than the admitting specialties: renal and ophthalmology take
// consults but not admissions.
type Specialty string

const (
	SpecialtyMedicine      Specialty = "MEDICINE"
	SpecialtySurgery       Specialty = "SURGERY"
	SpecialtyOrthopaedics  Specialty = "ORTHOPAEDICS"
	SpecialtyRenal         Specialty = "RENAL"
	SpecialtyOphthalmology Specialty = "OPHTHALMOLOGY"
)

func SpecialtyChoices() []Specialty {
	return []Specialty{SpecialtyMedicine, SpecialtySurgery, SpecialtyOrthopaedics, SpecialtyRenal, SpecialtyOphthalmology}
}

func (s Specialty) Valid() bool {
	for _, c := range SpecialtyChoices() {
		if s == c {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusDeclined   Status = "DECLINED"
)

func StatusChoices() []Status {
	return []Status{StatusRequested, StatusAccepted, StatusInProgress, StatusCompleted, StatusDeclined}
}

func (s Status) Valid() bool {
	for _, c := range StatusChoices() {
		if s == c {
			return true
		}
	}
	return false
}

// ConsultRequest maps to the consult_request table.
type ConsultRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Specialty   Specialty  `db:"specialty" json:"specialty"`
	Reason      string     `db:"reason" json:"reason"`
	Status      Status     `db:"status" json:"status"`
	RequestedBy string     `db:"requested_by" json:"requested_by"`
	RequestedAt time.Time  `db:"requested_at" json:"requested_at"`
	ReviewedBy  string     `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Comments    string     `db:"comments" json:"comments,omitempty"`
}

// Open reports whether the consult still needs specialty input.
func (cr *ConsultRequest) Open() bool {
	return cr.Status != StatusCompleted
}
