// Package exitcode provides standardized exit codes for assetbump
package exitcode

// Exit codes for the assetbump CLI
const (
	Success         = 0
	GeneralError    = 1
	ConfigError     = 2
	FileSystemError = 3
	NetworkError    = 4
	GitError        = 5
	ForgeError      = 6
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case GitError:
		return "Git error"
	case ForgeError:
		return "Forge API error"
	default:
		return "Unknown error"
	}
}
