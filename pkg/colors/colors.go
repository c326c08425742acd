package colors

import "github.com/fatih/color"

// Console palette shared by every iisctl command.

var (
	// Header is used for section titles in command output
	Header = color.New(color.FgHiYellow, color.Bold)

	// Data is used for identifiers and remote output (instance IDs, command IDs, script output)
	Data = color.New(color.FgHiCyan)

	Success = color.New(color.FgHiGreen, color.Bold)

	Error = color.New(color.FgHiRed, color.Bold)

	Warning = color.New(color.FgHiYellow, color.Bold)
)

// ColorSuccess returns a string rendered in the success color
func ColorSuccess(format string, args ...interface{}) string {
	return Success.Sprintf(format, args...)
}

func ColorError(format string, args ...interface{}) string {
	return Error.Sprintf(format, args...)
}

func ColorWarning(format string, args ...interface{}) string {
	return Warning.Sprintf(format, args...)
}

// StatusColor picks a color for an SSM invocation status string
func StatusColor(status string) *color.Color {
	switch status {
	case "Success":
		return Success
	case "Pending", "InProgress", "Delayed":
		return Warning
	case "":
		return Data
	default:
		return Error
	}
}
