package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"pc-control-dashboard/internal/model"
)

func TestValidateIPv4(t *testing.T) {
	tests := []struct {
		name        string
		ip          string
		expectError bool
	}{
		{"valid private address", "192.168.1.100", false},
		{"valid public address", "8.8.8.8", false},
		{"octet out of range", "999.1.1.1", true},
		{"not an address", "abc", true},
		{"empty", "", true},
		{"missing octet", "192.168.1", true},
		{"trailing dot", "192.168.1.1.", true},
		{"ipv6 rejected", "2001:db8::1", true},
		{"spaces", " 192.168.1.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIPv4(tt.ip)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name        string
		port        int
		expectError bool
	}{
		{"lowest valid", 1, false},
		{"common agent port", 8080, false},
		{"highest valid", 65535, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"too large", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePort(tt.port)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeOfDay(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
	}{
		{"midnight", "00:00", false},
		{"single digit hour", "9:05", false},
		{"last minute", "23:59", false},
		{"evening", "22:00", false},
		{"hour out of range", "24:00", true},
		{"minute out of range", "12:60", true},
		{"missing minutes", "12", true},
		{"empty", "", true},
		{"seconds not allowed", "12:30:00", true},
		{"words", "noon", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeOfDay(tt.value)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePCInput(t *testing.T) {
	valid := model.PCInput{
		Name:      "office-pc",
		IPAddress: "192.168.1.50",
		Port:      8080,
		Password:  "secret",
	}

	t.Run("valid input", func(t *testing.T) {
		assert.Empty(t, ValidatePCInput(valid))
	})

	t.Run("zero port allowed for defaulting", func(t *testing.T) {
		input := valid
		input.Port = 0
		assert.Empty(t, ValidatePCInput(input))
	})

	t.Run("missing name", func(t *testing.T) {
		input := valid
		input.Name = ""
		fieldErrors := ValidatePCInput(input)
		assert.Contains(t, fieldErrors, "name")
		assert.Len(t, fieldErrors, 1)
	})

	t.Run("invalid ip keyed under ipAddress", func(t *testing.T) {
		input := valid
		input.IPAddress = "999.1.1.1"
		fieldErrors := ValidatePCInput(input)
		assert.Contains(t, fieldErrors, "ipAddress")
	})

	t.Run("port out of range", func(t *testing.T) {
		input := valid
		input.Port = 70000
		fieldErrors := ValidatePCInput(input)
		assert.Contains(t, fieldErrors, "port")
	})

	t.Run("missing password", func(t *testing.T) {
		input := valid
		input.Password = ""
		fieldErrors := ValidatePCInput(input)
		assert.Contains(t, fieldErrors, "password")
	})

	t.Run("multiple failures reported together", func(t *testing.T) {
		fieldErrors := ValidatePCInput(model.PCInput{})
		assert.Contains(t, fieldErrors, "name")
		assert.Contains(t, fieldErrors, "ipAddress")
		assert.Contains(t, fieldErrors, "password")
	})
}

func TestValidatePCUpdate(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		assert.Empty(t, ValidatePCUpdate(model.PCUpdate{}))
	})

	t.Run("only supplied fields checked", func(t *testing.T) {
		badIP := "abc"
		fieldErrors := ValidatePCUpdate(model.PCUpdate{IPAddress: &badIP})
		assert.Contains(t, fieldErrors, "ipAddress")
		assert.Len(t, fieldErrors, 1)
	})

	t.Run("supplied fields use create rules", func(t *testing.T) {
		emptyName := ""
		badPort := 0
		fieldErrors := ValidatePCUpdate(model.PCUpdate{Name: &emptyName, Port: &badPort})
		assert.Contains(t, fieldErrors, "name")
		assert.Contains(t, fieldErrors, "port")
	})
}

func TestValidateScheduleInput(t *testing.T) {
	valid := model.ScheduleInput{
		PCID:      uuid.New(),
		Enabled:   true,
		StartTime: "22:00",
		EndTime:   "07:00",
	}

	t.Run("valid input", func(t *testing.T) {
		assert.Empty(t, ValidateScheduleInput(valid))
	})

	t.Run("missing pc id", func(t *testing.T) {
		input := valid
		input.PCID = uuid.Nil
		fieldErrors := ValidateScheduleInput(input)
		assert.Contains(t, fieldErrors, "pcId")
	})

	t.Run("bad start time", func(t *testing.T) {
		input := valid
		input.StartTime = "25:00"
		fieldErrors := ValidateScheduleInput(input)
		assert.Contains(t, fieldErrors, "startTime")
	})

	t.Run("bad end time", func(t *testing.T) {
		input := valid
		input.EndTime = "7pm"
		fieldErrors := ValidateScheduleInput(input)
		assert.Contains(t, fieldErrors, "endTime")
	})
}
