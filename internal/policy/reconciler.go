// Package policy reconciles lab schedule policies against the management API:
// fetch the current object, create a default one if it is missing, apply the
// requested overrides and write it back.
package policy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/rs/zerolog"
)

// Key addresses a policy resource.
type Key struct {
	ResourceGroup string
	LabName       string
	PolicyName    string
}

func (k Key) String() string {
	return models.ResourceID(k.ResourceGroup, k.LabName, k.PolicyName)
}

// Store is the remote resource store. GetResource must return an error
// matching models.ErrNotFound when the policy does not exist.
type Store interface {
	GetResource(ctx context.Context, key Key) (*models.SchedulePolicy, error)
	CreateOrUpdateResource(ctx context.Context, key Key, p *models.SchedulePolicy) (*models.SchedulePolicy, error)
}

// StatusChange is the requested change to a policy's status.
type StatusChange int

const (
	StatusUnchanged StatusChange = iota
	StatusEnable
	StatusDisable
)

func (s StatusChange) String() string {
	switch s {
	case StatusEnable:
		return "enable"
	case StatusDisable:
		return "disable"
	default:
		return "unchanged"
	}
}

// StatusChangeFromFlags maps the --enable / --disable pair to a StatusChange.
func StatusChangeFromFlags(enable, disable bool) (StatusChange, error) {
	switch {
	case enable && disable:
		return StatusUnchanged, fmt.Errorf("enable and disable are mutually exclusive")
	case enable:
		return StatusEnable, nil
	case disable:
		return StatusDisable, nil
	}
	return StatusUnchanged, nil
}

// Options are the desired-field overrides for one reconciliation.
// A nil Time leaves the recurrence untouched and forbids creation.
type Options struct {
	Time   *time.Time
	Status StatusChange
}

// Reconciler applies Options to the auto-shutdown policy of a lab.
type Reconciler struct {
	Store  Store
	Logger zerolog.Logger

	// TimeZone supplies the time zone of newly created policies.
	TimeZone func() string
}

// NewReconciler returns a Reconciler that creates policies in the local time zone.
func NewReconciler(store Store, logger zerolog.Logger) *Reconciler {
	return &Reconciler{Store: store, Logger: logger, TimeZone: LocalTimeZoneID}
}

// Reconcile fetches the policy at key, creates or patches it and writes it back.
// The returned object is the one echoed by the store. Store errors are
// returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, key Key, opts Options) (*models.SchedulePolicy, error) {
	log := r.Logger.With().Str("policy", key.String()).Logger()

	current, err := r.Store.GetResource(ctx, key)
	if err == nil && current == nil {
		err = models.NewRemoteError(http.StatusNotFound, "policy not found")
	}
	if err != nil {
		if !models.IsNotFound(err) || opts.Time == nil {
			return nil, err
		}
		log.Debug().Msg("policy not found, creating")
		current = nil
	}

	var desired *models.SchedulePolicy
	if current == nil {
		desired = r.newPolicy(opts)
	} else {
		log.Debug().Str("etag", current.ETag).Str("status", string(current.Status)).Msg("policy fetched")
		desired = applyOverrides(current, opts)
	}

	out, err := r.Store.CreateOrUpdateResource(ctx, key, desired)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("etag", out.ETag).Str("status", string(out.Status)).Msg("policy written")
	return out, nil
}

func (r *Reconciler) newPolicy(opts Options) *models.SchedulePolicy {
	tz := "UTC"
	if r.TimeZone != nil {
		tz = r.TimeZone()
	}
	status := models.PolicyStatusEnabled
	if opts.Status == StatusDisable {
		status = models.PolicyStatusDisabled
	}
	return &models.SchedulePolicy{
		TimeZoneID:      tz,
		TaskType:        models.TaskTypeLabVmsShutdown,
		DailyRecurrence: &models.DayDetails{Time: FormatDailyTime(*opts.Time)},
		Status:          status,
	}
}

// applyOverrides returns a copy of current with opts applied. The recurrence
// block is replaced, never merged.
func applyOverrides(current *models.SchedulePolicy, opts Options) *models.SchedulePolicy {
	p := *current
	if opts.Time != nil {
		p.DailyRecurrence = &models.DayDetails{Time: FormatDailyTime(*opts.Time)}
	}
	switch opts.Status {
	case StatusDisable:
		p.Status = models.PolicyStatusDisabled
	case StatusEnable:
		p.Status = models.PolicyStatusEnabled
	}
	return &p
}
