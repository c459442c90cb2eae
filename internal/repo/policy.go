package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/dtl-policy/internal/models"
)

// PolicyRepo persists lab schedule policies keyed by (resource group, lab, name).
type PolicyRepo struct {
	DB *sql.DB
}

// NewPolicyRepo returns a new PolicyRepo.
func NewPolicyRepo(db *sql.DB) *PolicyRepo {
	return &PolicyRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner, extra ...any) (*models.SchedulePolicy, error) {
	var (
		p         models.SchedulePolicy
		dailyTime sql.NullString
		created   sql.NullTime
		updated   sql.NullTime
	)
	dest := []any{&p.ResourceGroup, &p.LabName, &p.Name, &p.TimeZoneID, &p.TaskType, &dailyTime, &p.Status, &p.ETag, &created, &updated}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if dailyTime.Valid {
		p.DailyRecurrence = &models.DayDetails{Time: dailyTime.String}
	}
	if created.Valid {
		p.CreatedDate = &created.Time
	}
	if updated.Valid {
		p.UpdatedDate = &updated.Time
	}
	p.ID = models.ResourceID(p.ResourceGroup, p.LabName, p.Name)
	return &p, nil
}

// Get returns one policy, or nil when it does not exist.
func (r *PolicyRepo) Get(ctx context.Context, resourceGroup, labName, name string) (*models.SchedulePolicy, error) {
	query := `
		SELECT resource_group, lab_name, name, time_zone_id, task_type, daily_time, status, etag, created_at, updated_at
		FROM schedule_policies
		WHERE resource_group = $1 AND lab_name = $2 AND name = $3
	`
	p, err := scanPolicy(r.DB.QueryRowContext(ctx, query, resourceGroup, labName, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByLab returns all policies of a lab ordered by name.
func (r *PolicyRepo) ListByLab(ctx context.Context, resourceGroup, labName string) ([]models.SchedulePolicy, error) {
	query := `
		SELECT resource_group, lab_name, name, time_zone_id, task_type, daily_time, status, etag, created_at, updated_at
		FROM schedule_policies
		WHERE resource_group = $1 AND lab_name = $2
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query, resourceGroup, labName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.SchedulePolicy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Upsert inserts the policy or fully replaces the existing row, stamping it
// with etag. inserted reports whether a new row was created.
func (r *PolicyRepo) Upsert(ctx context.Context, resourceGroup, labName, name string, p *models.SchedulePolicy, etag string) (out *models.SchedulePolicy, inserted bool, err error) {
	query := `
		INSERT INTO schedule_policies (resource_group, lab_name, name, time_zone_id, task_type, daily_time, status, etag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (resource_group, lab_name, name) DO UPDATE SET
			time_zone_id = EXCLUDED.time_zone_id,
			task_type = EXCLUDED.task_type,
			daily_time = EXCLUDED.daily_time,
			status = EXCLUDED.status,
			etag = EXCLUDED.etag,
			updated_at = now()
		RETURNING resource_group, lab_name, name, time_zone_id, task_type, daily_time, status, etag, created_at, updated_at, (xmax = 0) AS inserted
	`
	var dailyTime sql.NullString
	if p.DailyRecurrence != nil {
		dailyTime = sql.NullString{String: p.DailyRecurrence.Time, Valid: true}
	}
	row := r.DB.QueryRowContext(ctx, query,
		resourceGroup, labName, name, p.TimeZoneID, string(p.TaskType), dailyTime, string(p.Status), etag,
	)
	out, err = scanPolicy(row, &inserted)
	if err != nil {
		return nil, false, err
	}
	return out, inserted, nil
}
