package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates the configuration is invalid.
	ExitValidationError = 2

	// ExitBuildError indicates esbuild or the assembly of a chunk failed.
	ExitBuildError = 3

	// ExitServerError indicates the dev reload server could not start.
	ExitServerError = 4

	// ExitNotFound indicates a config file or entry module was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitBuildError:
		return "Build Error"
	case ExitServerError:
		return "Server Error"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
