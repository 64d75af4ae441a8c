// Package exitcode defines the process exit codes of boardctl.
package exitcode

const (
	// Success means the command did what was asked.
	Success = 0

	// UserError covers bad arguments, unknown IDs, failed form validation
	// and anything the server rejected as invalid input.
	UserError = 1

	// AuthError means there is no usable session: not logged in, an expired
	// token, or missing Google credentials for the mirror.
	AuthError = 2

	// BackendError means the server or the network failed.
	BackendError = 3
)

// String returns a short name for code, used in debug logs.
func String(code int) string {
	switch code {
	case Success:
		return "success"
	case UserError:
		return "user_error"
	case AuthError:
		return "auth_error"
	case BackendError:
		return "backend_error"
	}
	return "unknown"
}
