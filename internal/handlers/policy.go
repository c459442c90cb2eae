package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/dtl-policy/internal/metrics"
	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/crucial707/dtl-policy/internal/policy"
	"github.com/crucial707/dtl-policy/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PolicyHandler serves lab schedule policies as create-or-update resources.
type PolicyHandler struct {
	Repo *repo.PolicyRepo

	// NewETag stamps every write. Defaults to a random UUID.
	NewETag func() string
}

func (h *PolicyHandler) newETag() string {
	if h.NewETag != nil {
		return h.NewETag()
	}
	return uuid.NewString()
}

// ListPolicies returns every policy of a lab.
func (h *PolicyHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	lab := chi.URLParam(r, "lab")

	list, err := h.Repo.ListByLab(r.Context(), group, lab)
	if err != nil {
		log.Error().Err(err).Str("resource_group", group).Str("lab", lab).Msg("list policies failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": list})
}

// GetPolicy returns one policy, or 404 when it does not exist.
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	lab := chi.URLParam(r, "lab")
	name := chi.URLParam(r, "name")

	p, err := h.Repo.Get(r.Context(), group, lab, name)
	if err != nil {
		log.Error().Err(err).Str("policy", models.ResourceID(group, lab, name)).Msg("get policy failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if p == nil {
		JSONError(w, "schedule not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// PutPolicy creates or fully replaces a policy. Responds 201 on insert, 200 on replace.
// Body: {"timeZoneId": "UTC", "taskType": "LabVmsShutdownTask", "dailyRecurrence": {"time": "1830"}, "status": "Enabled"}.
func (h *PolicyHandler) PutPolicy(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	lab := chi.URLParam(r, "lab")
	name := chi.URLParam(r, "name")

	var input models.SchedulePolicy
	if !decodeJSON(w, r, &input) {
		return
	}
	if fields := validatePolicy(&input); len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	p, inserted, err := h.Repo.Upsert(r.Context(), group, lab, name, &input, h.newETag())
	if err != nil {
		log.Error().Err(err).Str("policy", models.ResourceID(group, lab, name)).Msg("upsert policy failed")
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	result, status := "updated", http.StatusOK
	if inserted {
		result, status = "created", http.StatusCreated
	}
	metrics.IncPolicyWrites(result)
	log.Info().
		Str("policy", p.ID).
		Str("result", result).
		Str("status", string(p.Status)).
		Str("etag", p.ETag).
		Msg("policy written")

	w.Header().Set("ETag", `"`+p.ETag+`"`)
	writeJSON(w, status, p)
}

func validatePolicy(p *models.SchedulePolicy) map[string]string {
	fields := make(map[string]string)
	switch {
	case p.TaskType == "":
		fields["taskType"] = "required"
	case p.TaskType != models.TaskTypeLabVmsShutdown:
		fields["taskType"] = "unsupported task type"
	}
	if !p.Status.Valid() {
		fields["status"] = "must be Enabled or Disabled"
	}
	if p.TimeZoneID == "" {
		fields["timeZoneId"] = "required"
	} else if _, err := time.LoadLocation(p.TimeZoneID); err != nil {
		fields["timeZoneId"] = "unknown time zone"
	}
	if p.DailyRecurrence != nil {
		if _, _, err := policy.ParseDailyTime(p.DailyRecurrence.Time); err != nil {
			fields["dailyRecurrence.time"] = "must be HHmm"
		}
	}
	return fields
}
