package patient

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

const patientCols = `id, name, nhi_number, presenting_complaint, summary, past_medical_history, issues,
	current_parent_specialty, current_responsible_team, patient_category, admission_type, referral_source,
	location, bed_number, priority_flag, weekend_review,
	clerking_status, clerking_doctor, clerking_completed_at,
	post_take_ward_round_status, ptwr_doctor, ptwr_completed_at,
	referral_time, referral_reason, referral_to_specialty_datetime,
	datetime_of_arrival, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.ArrivalTime.IsZero() {
		p.ArrivalTime = now
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, name, nhi_number, presenting_complaint, summary, past_medical_history, issues,
			current_parent_specialty, current_responsible_team, patient_category, admission_type, referral_source,
			location, bed_number, priority_flag, weekend_review,
			clerking_status, clerking_doctor, clerking_completed_at,
			post_take_ward_round_status, ptwr_doctor, ptwr_completed_at,
			referral_time, referral_reason, referral_to_specialty_datetime,
			datetime_of_arrival, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)`,
		p.ID, p.Name, p.NHINumber, p.PresentingComplaint, p.Summary, p.PastMedicalHistory, p.Issues,
		p.Specialty, p.Team, p.Category, p.AdmissionType, p.Source,
		p.Location, p.BedNumber, p.PriorityFlag, p.WeekendReview,
		p.ClerkingStatus, p.ClerkingDoctor, p.ClerkingCompletedAt,
		p.PTWRStatus, p.PTWRDoctor, p.PTWRCompletedAt,
		p.ReferralTime, p.ReferralReason, p.ReferralToSpecialtyAt,
		p.ArrivalTime, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	return p, err
}

func (r *repoPG) GetByNHI(ctx context.Context, nhi string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE nhi_number = $1`, nhi))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient with NHI %s not found", nhi)
	}
	return p, err
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			name=$2, nhi_number=$3, presenting_complaint=$4, summary=$5, past_medical_history=$6, issues=$7,
			current_parent_specialty=$8, current_responsible_team=$9, patient_category=$10, admission_type=$11,
			referral_source=$12, location=$13, bed_number=$14, priority_flag=$15, weekend_review=$16,
			clerking_status=$17, clerking_doctor=$18, clerking_completed_at=$19,
			post_take_ward_round_status=$20, ptwr_doctor=$21, ptwr_completed_at=$22,
			referral_time=$23, referral_reason=$24, referral_to_specialty_datetime=$25,
			datetime_of_arrival=$26, updated_at=$27
		WHERE id = $1`,
		p.ID, p.Name, p.NHINumber, p.PresentingComplaint, p.Summary, p.PastMedicalHistory, p.Issues,
		p.Specialty, p.Team, p.Category, p.AdmissionType,
		p.Source, p.Location, p.BedNumber, p.PriorityFlag, p.WeekendReview,
		p.ClerkingStatus, p.ClerkingDoctor, p.ClerkingCompletedAt,
		p.PTWRStatus, p.PTWRDoctor, p.PTWRCompletedAt,
		p.ReferralTime, p.ReferralReason, p.ReferralToSpecialtyAt,
		p.ArrivalTime, p.UpdatedAt,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

// sortColumns whitelists the sortable keys accepted by list queries.
// Unknown keys fall back to the default order.
var sortColumns = map[string]string{
	"name":      "name",
	"nhi":       "nhi_number",
	"location":  "location",
	"team":      "current_responsible_team",
	"specialty": "current_parent_specialty",
	"clerking":  "clerking_status",
	"ptwr":      "post_take_ward_round_status",
	"referred":  "referral_time",
	"arrival":   "datetime_of_arrival",
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Patient, error) {
	q := `SELECT ` + patientCols + ` FROM patient`
	var where []string
	var args []interface{}

	if f.Team != "" {
		args = append(args, f.Team)
		where = append(where, fmt.Sprintf("current_responsible_team = $%d", len(args)))
	}
	if f.Specialty != "" {
		args = append(args, f.Specialty)
		where = append(where, fmt.Sprintf("current_parent_specialty = $%d", len(args)))
	}
	if f.ClerkingStatus != "" {
		args = append(args, f.ClerkingStatus)
		where = append(where, fmt.Sprintf("clerking_status = $%d", len(args)))
	}
	if f.PTWRStatus != "" {
		args = append(args, f.PTWRStatus)
		where = append(where, fmt.Sprintf("post_take_ward_round_status = $%d", len(args)))
	}
	if f.AdmissionType != "" {
		args = append(args, f.AdmissionType)
		where = append(where, fmt.Sprintf("admission_type = $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("patient_category = $%d", len(args)))
	}
	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		where = append(where, fmt.Sprintf("patient_category = ANY($%d)", len(args)))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		where = append(where, fmt.Sprintf("priority_flag = $%d", len(args)))
	}
	if f.WeekendReview != nil {
		args = append(args, *f.WeekendReview)
		where = append(where, fmt.Sprintf("weekend_review = $%d", len(args)))
	}
	for i, w := range where {
		if i == 0 {
			q += " WHERE " + w
		} else {
			q += " AND " + w
		}
	}
	q += " ORDER BY " + orderClause(f)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func orderClause(f Filter) string {
	if col, ok := sortColumns[f.SortKey]; ok {
		dir := "ASC"
		if f.SortDesc {
			dir = "DESC"
		}
		return col + " " + dir
	}
	if f.ReferralPrimary {
		return "referral_time ASC NULLS LAST, datetime_of_arrival ASC"
	}
	return "datetime_of_arrival ASC"
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(patientFields(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(patientFields(&p)...); err != nil {
			return nil, err
		}
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}

func patientFields(p *Patient) []interface{} {
	return []interface{}{
		&p.ID, &p.Name, &p.NHINumber, &p.PresentingComplaint, &p.Summary, &p.PastMedicalHistory, &p.Issues,
		&p.Specialty, &p.Team, &p.Category, &p.AdmissionType, &p.Source,
		&p.Location, &p.BedNumber, &p.PriorityFlag, &p.WeekendReview,
		&p.ClerkingStatus, &p.ClerkingDoctor, &p.ClerkingCompletedAt,
		&p.PTWRStatus, &p.PTWRDoctor, &p.PTWRCompletedAt,
		&p.ReferralTime, &p.ReferralReason, &p.ReferralToSpecialtyAt,
		&p.ArrivalTime, &p.CreatedAt, &p.UpdatedAt,
	}
}
