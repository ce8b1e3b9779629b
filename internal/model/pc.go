package model

import (
	"time"

	"github.com/google/uuid"
)

// Secret is a string whose value must never reach logs. It formats as a
// placeholder through fmt, but round-trips its real value through JSON so
// the edit UI and the device agent payload keep working.
type Secret string

const redacted = "[redacted]"

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return redacted
}

// Reveal returns the underlying value for wire use.
func (s Secret) Reveal() string {
	return string(s)
}

// PC represents a managed remote computer registration.
type PC struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IPAddress string    `json:"ipAddress"`
	Port      int       `json:"port"`
	Password  Secret    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Schedule is the PC's lock window, nil when none is configured.
	Schedule *Schedule `json:"schedule"`
}

// Schedule is a recurring lock window for exactly one PC. StartTime and
// EndTime are HH:MM 24-hour strings; the window may wrap midnight.
// SyncPending is set while the stored schedule has not been confirmed by
// the device agent.
type Schedule struct {
	ID          uuid.UUID `json:"id"`
	PCID        uuid.UUID `json:"pcId"`
	Enabled     bool      `json:"enabled"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	SyncPending bool      `json:"syncPending"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PCInput holds the fields accepted when registering a PC.
type PCInput struct {
	Name      string `json:"name"`
	IPAddress string `json:"ipAddress"`
	Port      int    `json:"port"`
	Password  Secret `json:"password"`
}

// PCUpdate holds a partial update; nil fields are left untouched.
type PCUpdate struct {
	Name      *string `json:"name"`
	IPAddress *string `json:"ipAddress"`
	Port      *int    `json:"port"`
	Password  *Secret `json:"password"`
}

// ScheduleInput holds the fields accepted when upserting a schedule.
type ScheduleInput struct {
	PCID      uuid.UUID `json:"pcId"`
	Enabled   bool      `json:"enabled"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}
