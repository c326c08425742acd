package aws

import (
	"fmt"
	"regexp"
	"strings"
)

// instanceIDPattern is the strict EC2 instance ID form: i- followed by 8 to 17 hex digits
var instanceIDPattern = regexp.MustCompile(`^i-[0-9a-f]{8,17}$`)

// InstanceIDPrefix marks an identifier as an instance ID rather than a Name tag value
const InstanceIDPrefix = "i-"

// IsInstanceID reports whether an identifier is shaped like an instance ID (or a
// comma-joined list of them) and therefore needs no lookup.
func IsInstanceID(identifier string) bool {
	return strings.HasPrefix(identifier, InstanceIDPrefix)
}

// ValidateInstanceID checks a single instance ID against the strict EC2 format
func ValidateInstanceID(instanceID string) error {
	if !instanceIDPattern.MatchString(instanceID) {
		return &ValidationError{
			Field:   "instance ID",
			Value:   instanceID,
			Message: "must match i-[0-9a-f]{8,17}",
		}
	}
	return nil
}

var (
	validRegionPrefixes = map[string]bool{
		"us": true, "eu": true, "ap": true, "ca": true, "sa": true,
		"me": true, "af": true, "cn": true, "il": true, "mx": true,
	}
	validRegionAreas = map[string]bool{
		"east": true, "west": true, "north": true, "south": true, "central": true,
		"northeast": true, "southeast": true, "northwest": true, "southwest": true,
	}
)

// IsValidAWSRegion validates that a string is a properly formatted AWS region,
// e.g. us-east-1, ca-central-1 or the GovCloud form us-gov-west-1.
func IsValidAWSRegion(region string) bool {
	parts := strings.Split(region, "-")

	if len(parts) == 4 && parts[0] == "us" && parts[1] == "gov" {
		if parts[2] != "east" && parts[2] != "west" {
			return false
		}
		parts = parts[2:]
		return isRegionNumber(parts[1])
	}

	if len(parts) != 3 {
		return false
	}

	if !validRegionPrefixes[parts[0]] || !validRegionAreas[parts[1]] {
		return false
	}

	return isRegionNumber(parts[2])
}

// isRegionNumber accepts 1-99 without a leading zero
func isRegionNumber(s string) bool {
	if len(s) < 1 || len(s) > 2 || s[0] == '0' {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

// ValidateRegionInput accepts a shortcode (use1) or a full region name (us-east-1)
// and returns the full region name.
func ValidateRegionInput(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", &ValidationError{Field: "region", Value: input, Message: "region cannot be empty"}
	}

	if fullRegion, exists := RegionMapping[strings.ToLower(input)]; exists {
		return fullRegion, nil
	}

	if IsValidAWSRegion(input) {
		return input, nil
	}

	return "", &ValidationError{
		Field:   "region",
		Value:   input,
		Message: "must be a valid AWS region (e.g., us-east-1) or shortcode (e.g., use1)",
	}
}

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s '%s' is invalid: %s", e.Field, e.Value, e.Message)
}
