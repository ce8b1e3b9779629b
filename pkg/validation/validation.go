package validation

import (
	"fmt"
	"net"
	"regexp"

	"github.com/google/uuid"

	"pc-control-dashboard/internal/model"
)

// Port range constants
const (
	MinPort = 1
	MaxPort = 65535
)

// timeOfDayRegex matches HH:MM in 24-hour format, allowing a single-digit
// hour ("9:05" and "09:05" are both valid).
var timeOfDayRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateName validates a PC display name
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("Name is required")
	}
	if len(name) > 255 {
		return fmt.Errorf("Name cannot exceed 255 characters")
	}
	return nil
}

// ValidateIPv4 validates an IPv4 literal. IPv6 addresses are rejected; the
// device agents are reached by dotted-quad only.
func ValidateIPv4(ip string) error {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return fmt.Errorf("Invalid IP address")
	}
	return nil
}

// ValidatePort validates a TCP port number
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("Port must be between %d and %d", MinPort, MaxPort)
	}
	return nil
}

// ValidatePassword validates the device agent shared secret
func ValidatePassword(password model.Secret) error {
	if password.Reveal() == "" {
		return fmt.Errorf("Password is required")
	}
	return nil
}

// ValidateTimeOfDay validates an HH:MM 24-hour time string
func ValidateTimeOfDay(value string) error {
	if !timeOfDayRegex.MatchString(value) {
		return fmt.Errorf("Invalid time format (HH:MM)")
	}
	return nil
}

// ValidatePCInput validates all fields for registering a new PC. A zero port
// is allowed here; the service defaults it to 8080 before the write.
// Returns a field-keyed map of messages, empty on success.
func ValidatePCInput(input model.PCInput) map[string]string {
	fieldErrors := make(map[string]string)

	if err := ValidateName(input.Name); err != nil {
		fieldErrors["name"] = err.Error()
	}
	if err := ValidateIPv4(input.IPAddress); err != nil {
		fieldErrors["ipAddress"] = err.Error()
	}
	if input.Port != 0 {
		if err := ValidatePort(input.Port); err != nil {
			fieldErrors["port"] = err.Error()
		}
	}
	if err := ValidatePassword(input.Password); err != nil {
		fieldErrors["password"] = err.Error()
	}

	return fieldErrors
}

// ValidatePCUpdate validates a partial update: only supplied fields are
// checked, with the same rules as create.
func ValidatePCUpdate(update model.PCUpdate) map[string]string {
	fieldErrors := make(map[string]string)

	if update.Name != nil {
		if err := ValidateName(*update.Name); err != nil {
			fieldErrors["name"] = err.Error()
		}
	}
	if update.IPAddress != nil {
		if err := ValidateIPv4(*update.IPAddress); err != nil {
			fieldErrors["ipAddress"] = err.Error()
		}
	}
	if update.Port != nil {
		if err := ValidatePort(*update.Port); err != nil {
			fieldErrors["port"] = err.Error()
		}
	}
	if update.Password != nil {
		if err := ValidatePassword(*update.Password); err != nil {
			fieldErrors["password"] = err.Error()
		}
	}

	return fieldErrors
}

// ValidateScheduleInput validates the fields for upserting a schedule.
func ValidateScheduleInput(input model.ScheduleInput) map[string]string {
	fieldErrors := make(map[string]string)

	if input.PCID == uuid.Nil {
		fieldErrors["pcId"] = "PC id is required"
	}
	if err := ValidateTimeOfDay(input.StartTime); err != nil {
		fieldErrors["startTime"] = err.Error()
	}
	if err := ValidateTimeOfDay(input.EndTime); err != nil {
		fieldErrors["endTime"] = err.Error()
	}

	return fieldErrors
}
