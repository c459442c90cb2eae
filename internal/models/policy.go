package models

import (
	"fmt"
	"time"
)

// PolicyLabVmsShutdown is the well-known name of a lab's auto-shutdown policy.
const PolicyLabVmsShutdown = "LabVmsShutdown"

// TaskType tags what a schedule policy does when it fires.
type TaskType string

const TaskTypeLabVmsShutdown TaskType = "LabVmsShutdownTask"

// PolicyStatus is Enabled or Disabled.
type PolicyStatus string

const (
	PolicyStatusEnabled  PolicyStatus = "Enabled"
	PolicyStatusDisabled PolicyStatus = "Disabled"
)

// Valid reports whether s is one of the known statuses.
func (s PolicyStatus) Valid() bool {
	return s == PolicyStatusEnabled || s == PolicyStatusDisabled
}

// DayDetails holds the time of day ("HHmm") a daily recurrence fires.
type DayDetails struct {
	Time string `json:"time"`
}

// SchedulePolicy is a lab schedule policy as stored by the management API.
// ID, ResourceGroup, LabName, ETag and the dates are assigned by the server.
type SchedulePolicy struct {
	ID              string       `json:"id,omitempty"`
	Name            string       `json:"name,omitempty"`
	ResourceGroup   string       `json:"resourceGroup,omitempty"`
	LabName         string       `json:"labName,omitempty"`
	TimeZoneID      string       `json:"timeZoneId"`
	TaskType        TaskType     `json:"taskType"`
	DailyRecurrence *DayDetails  `json:"dailyRecurrence,omitempty"`
	Status          PolicyStatus `json:"status"`
	ETag            string       `json:"etag,omitempty"`
	CreatedDate     *time.Time   `json:"createdDate,omitempty"`
	UpdatedDate     *time.Time   `json:"updatedDate,omitempty"`
}

// ResourceID builds the path-style identifier of a lab schedule.
func ResourceID(resourceGroup, labName, name string) string {
	return fmt.Sprintf("/resourceGroups/%s/labs/%s/schedules/%s", resourceGroup, labName, name)
}
