package consult

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardtrack/wardtrack/internal/platform/apperr"
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

const consultCols = `id, patient_id, specialty, reason, status, requested_by, requested_at,
	reviewed_by, reviewed_at, comments`

func (r *repoPG) Create(ctx context.Context, cr *ConsultRequest) error {
	cr.ID = uuid.New()
	if cr.RequestedAt.IsZero() {
		cr.RequestedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consult_request (id, patient_id, specialty, reason, status, requested_by, requested_at, reviewed_by, comments)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		cr.ID, cr.PatientID, cr.Specialty, cr.Reason, cr.Status, cr.RequestedBy, cr.RequestedAt, cr.ReviewedBy, cr.Comments,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ConsultRequest, error) {
	cr, err := scanConsult(r.conn(ctx).QueryRow(ctx, `SELECT `+consultCols+` FROM consult_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("consult request %s not found", id)
	}
	return cr, err
}

func (r *repoPG) Update(ctx context.Context, cr *ConsultRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consult_request SET
			specialty=$2, reason=$3, status=$4, reviewed_by=$5, reviewed_at=$6, comments=$7
		WHERE id = $1`,
		cr.ID, cr.Specialty, cr.Reason, cr.Status, cr.ReviewedBy, cr.ReviewedAt, cr.Comments,
	)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ConsultRequest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+consultCols+` FROM consult_request WHERE patient_id = $1 ORDER BY requested_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConsults(rows)
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*ConsultRequest, error) {
	q := `SELECT ` + consultCols + ` FROM consult_request`
	var where []string
	var args []interface{}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		where = append(where, fmt.Sprintf("specialty = $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += ` ORDER BY requested_at DESC`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConsults(rows)
}

func scanConsult(row pgx.Row) (*ConsultRequest, error) {
	var cr ConsultRequest
	err := row.Scan(
		&cr.ID, &cr.PatientID, &cr.Specialty, &cr.Reason, &cr.Status, &cr.RequestedBy, &cr.RequestedAt,
		&cr.ReviewedBy, &cr.ReviewedAt, &cr.Comments,
	)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func collectConsults(rows pgx.Rows) ([]*ConsultRequest, error) {
	var consults []*ConsultRequest
	for rows.Next() {
		var cr ConsultRequest
		err := rows.Scan(
			&cr.ID, &cr.PatientID, &cr.Specialty, &cr.Reason, &cr.Status, &cr.RequestedBy, &cr.RequestedAt,
			&cr.ReviewedBy, &cr.ReviewedAt, &cr.Comments,
		)
		if err != nil {
			return nil, err
		}
		consults = append(consults, &cr)
	}
	return consults, rows.Err()
}
