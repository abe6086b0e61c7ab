package command

import (
	"regexp"
	"strings"

	"github.com/adlytica/toolkit/internal/pkg/errors"
)

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Name is a validated toolkit command name
type Name string

// ParseName validates a kebab-case command name
func ParseName(raw string) (Name, error) {
	if raw == "" {
		return "", errors.Validation("command name must not be empty")
	}
	if !namePattern.MatchString(raw) {
		return "", errors.Validation("command name must be kebab-case: " + raw)
	}
	return Name(raw), nil
}

func (n Name) String() string { return string(n) }

// TenantID is a validated tenant identifier
type TenantID string

// ParseTenantID validates a tenant identifier at the boundary
func ParseTenantID(raw string) (TenantID, error) {
	if raw == "" {
		return "", errors.Validation("tenant id must not be empty")
	}
	if len(raw) > 128 {
		return "", errors.Validation("tenant id must be at most 128 characters")
	}
	if strings.ContainsAny(raw, " \t\n\r") {
		return "", errors.Validation("tenant id must not contain whitespace")
	}
	return TenantID(raw), nil
}

func (t TenantID) String() string { return string(t) }

// Command is the immutable intent object consumed by transport layers
type Command struct {
	Name                     Name
	Description              string
	RequiresConfirmation     bool
	EstimatedDurationSeconds int
	Risks                    []string
	Params                   interface{}
}

// Known command names
const (
	NameSeed           Name = "seed"
	NameSeedUnified    Name = "seed-unified"
	NameAlertScenario  Name = "alert-scenario"
	NameVerifyScenario Name = "verify-scenario"
	NameReset          Name = "reset"
	NameResetHard      Name = "reset-hard"
)
