package version

// These variables are set via ldflags at build time.
// Example: go build -ldflags "-X expensetracker/internal/version.Version=1.0.0"
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build for --version output
func String() string {
	return "expensetracker " + Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}
