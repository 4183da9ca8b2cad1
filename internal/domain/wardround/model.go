package wardround

import (
	"time"

	"github.com/google/uuid"
)

type RoundType string

const (
	RoundPostTake RoundType = "POST_TAKE"
	RoundGeneral  RoundType = "GENERAL"
)

func (t RoundType) Valid() bool {
	return t == RoundPostTake || t == RoundGeneral
}

// WardRound maps to the ward_round table. Rounds are immutable once
// recorded; there is no update path.
type WardRound struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Type      RoundType `db:"ward_round_type" json:"ward_round_type"`
	Doctor    string    `db:"doctor" json:"doctor"`
	Notes     string    `db:"notes" json:"notes"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
