package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/dtl-policy/internal/models"
)

var policyColumns = []string{"resource_group", "lab_name", "name", "time_zone_id", "task_type", "daily_time", "status", "etag", "created_at", "updated_at"}

func TestPolicyRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT resource_group, lab_name, name, time_zone_id`).
		WithArgs("rg1", "lab1", "LabVmsShutdown").
		WillReturnRows(sqlmock.NewRows(policyColumns).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e1", now, now))

	r := NewPolicyRepo(db)
	p, err := r.Get(context.Background(), "rg1", "lab1", "LabVmsShutdown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p == nil {
		t.Fatal("expected policy, got nil")
	}
	if p.DailyRecurrence == nil || p.DailyRecurrence.Time != "1830" || p.Status != models.PolicyStatusEnabled || p.ETag != "e1" {
		t.Errorf("unexpected policy: %+v", p)
	}
	if p.ID != "/resourceGroups/rg1/labs/lab1/schedules/LabVmsShutdown" {
		t.Errorf("unexpected id: %s", p.ID)
	}
	if p.CreatedDate == nil || !p.CreatedDate.Equal(now) {
		t.Errorf("unexpected created date: %v", p.CreatedDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPolicyRepo_Get_NullRecurrence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT resource_group, lab_name, name, time_zone_id`).
		WithArgs("rg1", "lab1", "LabVmsShutdown").
		WillReturnRows(sqlmock.NewRows(policyColumns).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", nil, "Disabled", "e1", now, now))

	p, err := NewPolicyRepo(db).Get(context.Background(), "rg1", "lab1", "LabVmsShutdown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.DailyRecurrence != nil {
		t.Errorf("expected nil recurrence, got %+v", p.DailyRecurrence)
	}
}

func TestPolicyRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT resource_group, lab_name, name, time_zone_id`).
		WithArgs("rg1", "missing", "LabVmsShutdown").
		WillReturnError(sql.ErrNoRows)

	p, err := NewPolicyRepo(db).Get(context.Background(), "rg1", "missing", "LabVmsShutdown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPolicyRepo_ListByLab(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT resource_group, lab_name, name, time_zone_id`).
		WithArgs("rg1", "lab1").
		WillReturnRows(sqlmock.NewRows(policyColumns).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e1", now, now))

	list, err := NewPolicyRepo(db).ListByLab(context.Background(), "rg1", "lab1")
	if err != nil {
		t.Fatalf("ListByLab: %v", err)
	}
	if len(list) != 1 || list[0].Name != "LabVmsShutdown" {
		t.Errorf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPolicyRepo_Upsert_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO schedule_policies`).
		WithArgs("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e2").
		WillReturnRows(sqlmock.NewRows(append(policyColumns, "inserted")).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e2", now, now, true))

	in := &models.SchedulePolicy{
		TimeZoneID:      "UTC",
		TaskType:        models.TaskTypeLabVmsShutdown,
		DailyRecurrence: &models.DayDetails{Time: "1830"},
		Status:          models.PolicyStatusEnabled,
	}
	out, inserted, err := NewPolicyRepo(db).Upsert(context.Background(), "rg1", "lab1", "LabVmsShutdown", in, "e2")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !inserted {
		t.Error("expected inserted=true")
	}
	if out.ETag != "e2" || out.DailyRecurrence.Time != "1830" {
		t.Errorf("unexpected policy: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPolicyRepo_Upsert_ReplaceWithoutRecurrence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`ON CONFLICT \(resource_group, lab_name, name\) DO UPDATE`).
		WithArgs("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", nil, "Disabled", "e3").
		WillReturnRows(sqlmock.NewRows(append(policyColumns, "inserted")).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", nil, "Disabled", "e3", now.Add(-time.Hour), now, false))

	in := &models.SchedulePolicy{
		TimeZoneID: "UTC",
		TaskType:   models.TaskTypeLabVmsShutdown,
		Status:     models.PolicyStatusDisabled,
	}
	out, inserted, err := NewPolicyRepo(db).Upsert(context.Background(), "rg1", "lab1", "LabVmsShutdown", in, "e3")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if inserted {
		t.Error("expected inserted=false")
	}
	if out.DailyRecurrence != nil || out.Status != models.PolicyStatusDisabled {
		t.Errorf("unexpected policy: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
