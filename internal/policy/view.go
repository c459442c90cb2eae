package policy

import (
	"fmt"
	"time"

	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/robfig/cron/v3"
)

// ScheduleView is the caller-facing projection of a SchedulePolicy.
type ScheduleView struct {
	Name          string     `json:"name"`
	ID            string     `json:"id"`
	ResourceGroup string     `json:"resourceGroup"`
	LabName       string     `json:"labName"`
	TimeZoneID    string     `json:"timeZoneId"`
	TaskType      string     `json:"taskType"`
	Time          string     `json:"time,omitempty"`
	DailyTime     string     `json:"dailyTime,omitempty"`
	Status        string     `json:"status"`
	ETag          string     `json:"etag,omitempty"`
	CreatedDate   *time.Time `json:"createdDate,omitempty"`
	UpdatedDate   *time.Time `json:"updatedDate,omitempty"`
	NextShutdown  *time.Time `json:"nextShutdown,omitempty"`
}

// ToView maps p field by field onto a ScheduleView. now anchors NextShutdown.
func ToView(p *models.SchedulePolicy, now time.Time) ScheduleView {
	v := ScheduleView{
		Name:          p.Name,
		ID:            p.ID,
		ResourceGroup: p.ResourceGroup,
		LabName:       p.LabName,
		TimeZoneID:    p.TimeZoneID,
		TaskType:      string(p.TaskType),
		Status:        string(p.Status),
		ETag:          p.ETag,
		CreatedDate:   p.CreatedDate,
		UpdatedDate:   p.UpdatedDate,
	}
	if p.DailyRecurrence != nil {
		v.DailyTime = p.DailyRecurrence.Time
		if h, m, err := ParseDailyTime(p.DailyRecurrence.Time); err == nil {
			v.Time = fmt.Sprintf("%02d:%02d", h, m)
		}
	}
	if next, ok := NextShutdown(p, now); ok {
		v.NextShutdown = &next
	}
	return v
}

// NextShutdown returns the next time after now the policy fires, evaluated in
// the policy's time zone. ok is false for disabled policies, policies without
// a daily recurrence, or an unknown time zone.
func NextShutdown(p *models.SchedulePolicy, now time.Time) (time.Time, bool) {
	if p.Status != models.PolicyStatusEnabled || p.DailyRecurrence == nil {
		return time.Time{}, false
	}
	h, m, err := ParseDailyTime(p.DailyRecurrence.Time)
	if err != nil {
		return time.Time{}, false
	}
	tz := p.TimeZoneID
	if tz == "" {
		tz = "UTC"
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("CRON_TZ=%s %d %d * * *", tz, m, h))
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(now), true
}

// Rows returns the view as field/value pairs for table rendering.
func (v ScheduleView) Rows() [][]interface{} {
	rows := [][]interface{}{
		{"Name", v.Name},
		{"Resource group", v.ResourceGroup},
		{"Lab", v.LabName},
		{"Task type", v.TaskType},
		{"Status", v.Status},
		{"Time", v.Time},
		{"Time zone", v.TimeZoneID},
	}
	if v.NextShutdown != nil {
		rows = append(rows, []interface{}{"Next shutdown", v.NextShutdown.Format(time.RFC1123)})
	}
	if v.ETag != "" {
		rows = append(rows, []interface{}{"ETag", v.ETag})
	}
	if v.ID != "" {
		rows = append(rows, []interface{}{"ID", v.ID})
	}
	return rows
}
