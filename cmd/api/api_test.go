package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/dtl-policy/internal/client"
	"github.com/crucial707/dtl-policy/internal/config"
	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/crucial707/dtl-policy/internal/policy"
	"github.com/rs/zerolog"
)

var policyColumns = []string{"resource_group", "lab_name", "name", "time_zone_id", "task_type", "daily_time", "status", "etag", "created_at", "updated_at"}

// TestAPI_ReconcileCreatesThenDisables is an integration test: it builds the full router with a
// sqlmock-backed DB, exchanges the API token for a JWT, then runs the reconciler through the
// HTTP client twice: once creating the policy and once disabling it.
func TestAPI_ReconcileCreatesThenDisables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()

	// First reconcile: GET misses, PUT inserts.
	mock.ExpectQuery(`SELECT resource_group, lab_name, name`).
		WithArgs("rg1", "lab1", "LabVmsShutdown").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO schedule_policies`).
		WithArgs("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(append(policyColumns, "inserted")).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e1", now, now, true))

	// Second reconcile: GET hits, PUT replaces with status Disabled and the time preserved.
	mock.ExpectQuery(`SELECT resource_group, lab_name, name`).
		WithArgs("rg1", "lab1", "LabVmsShutdown").
		WillReturnRows(sqlmock.NewRows(policyColumns).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Enabled", "e1", now, now))
	mock.ExpectQuery(`INSERT INTO schedule_policies`).
		WithArgs("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Disabled", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(append(policyColumns, "inserted")).
			AddRow("rg1", "lab1", "LabVmsShutdown", "UTC", "LabVmsShutdownTask", "1830", "Disabled", "e2", now, now, false))

	cfg := config.Config{JWTSecret: "test-secret-for-integration", APIToken: "integration-token", JWTExpireHours: 1}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	ctx := context.Background()
	tok, err := client.New(srv.URL).IssueToken(ctx, "integration-token")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	rec := policy.NewReconciler(client.New(srv.URL, client.WithToken(tok.Token)), zerolog.Nop())
	rec.TimeZone = func() string { return "UTC" }
	key := policy.Key{ResourceGroup: "rg1", LabName: "lab1", PolicyName: models.PolicyLabVmsShutdown}

	shutdownAt, _ := policy.ParseTimeOfDay("18:30")
	created, err := rec.Reconcile(ctx, key, policy.Options{Time: &shutdownAt})
	if err != nil {
		t.Fatalf("create reconcile: %v", err)
	}
	if created.DailyRecurrence == nil || created.DailyRecurrence.Time != "1830" || created.Status != models.PolicyStatusEnabled || created.ETag != "e1" {
		t.Errorf("unexpected created policy: %+v", created)
	}

	updated, err := rec.Reconcile(ctx, key, policy.Options{Status: policy.StatusDisable})
	if err != nil {
		t.Fatalf("disable reconcile: %v", err)
	}
	if updated.DailyRecurrence == nil || updated.DailyRecurrence.Time != "1830" || updated.Status != models.PolicyStatusDisabled || updated.ETag != "e2" {
		t.Errorf("unexpected updated policy: %+v", updated)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_ReconcileNotFoundWithoutTime checks that no write happens when the policy is absent
// and no time was supplied.
func TestAPI_ReconcileNotFoundWithoutTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT resource_group, lab_name, name`).
		WithArgs("rg1", "lab1", "LabVmsShutdown").
		WillReturnError(sql.ErrNoRows)

	cfg := config.Config{JWTSecret: "x", APIToken: "t"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	ctx := context.Background()
	tok, err := client.New(srv.URL).IssueToken(ctx, "t")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec := policy.NewReconciler(client.New(srv.URL, client.WithToken(tok.Token)), zerolog.Nop())
	key := policy.Key{ResourceGroup: "rg1", LabName: "lab1", PolicyName: models.PolicyLabVmsShutdown}

	_, err = rec.Reconcile(ctx, key, policy.Options{Status: policy.StatusEnable})
	if !models.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations (no write expected): %v", err)
	}
}

// TestAPI_SchedulesRequireToken checks that policy routes reject anonymous requests.
func TestAPI_SchedulesRequireToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x", APIToken: "t"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/resourceGroups/rg1/labs/lab1/schedules/LabVmsShutdown")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", resp.StatusCode)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("security headers missing")
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Metrics checks that the Prometheus endpoint is exposed.
func TestAPI_Metrics(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := httptest.NewServer(newRouter(db, config.Config{JWTSecret: "x"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status: got %d, want 200", resp.StatusCode)
	}
}
