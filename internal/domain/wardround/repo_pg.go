package wardround

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardtrack/wardtrack/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, wr *WardRound) error {
	wr.ID = uuid.New()
	if wr.Timestamp.IsZero() {
		wr.Timestamp = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ward_round (id, patient_id, ward_round_type, doctor, notes, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		wr.ID, wr.PatientID, wr.Type, wr.Doctor, wr.Notes, wr.Timestamp,
	)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*WardRound, error) {
	q := `SELECT id, patient_id, ward_round_type, doctor, notes, timestamp
		FROM ward_round WHERE patient_id = $1 ORDER BY timestamp DESC`
	args := []interface{}{patientID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*WardRound
	for rows.Next() {
		var wr WardRound
		if err := rows.Scan(&wr.ID, &wr.PatientID, &wr.Type, &wr.Doctor, &wr.Notes, &wr.Timestamp); err != nil {
			return nil, err
		}
		rounds = append(rounds, &wr)
	}
	return rounds, rows.Err()
}
