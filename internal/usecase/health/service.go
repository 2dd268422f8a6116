package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all checks pass.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every check failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	frame FrameChecker
}

// New creates a Service.
func New(frame FrameChecker) *Service {
	return &Service{frame: frame}
}

// Check runs the frame self-check and aggregates the results.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	failed := 0
	for name, err := range s.frame.Run(ctx) {
		if err != nil {
			checks[name] = CheckError
			failed++
		} else {
			checks[name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(checks):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
