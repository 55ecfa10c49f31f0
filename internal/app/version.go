package app

// Service metadata
const ServiceName = "scouts-inscription"

// Build-time injection variables
// These are set via -ldflags during build:
//
//	go build -ldflags="-X 'github.com/Merco74/ScoutPlateform/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
