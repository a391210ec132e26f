package link

import "runtime"

// Platform returns the platform tag used to locate stdlib bitcode
// (`<dist>/<platform>/<unit>.bc`) and recorded in `.sushilib` manifests,
// per §6: one of "darwin", "linux", or "unknown".
func Platform() string {
	switch runtime.GOOS {
	case "darwin":
		return "darwin"
	case "linux":
		return "linux"
	default:
		return "unknown"
	}
}
