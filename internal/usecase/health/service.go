package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Service string
	Status  Status
	Checks  map[string]CheckResult
}

// Named pairs a component name with its checker.
type Named struct {
	Name    string
	Checker Checker
}

// Service coordinates health checks.
type Service struct {
	name   string
	db     DBPinger
	checks []Named
}

// New creates a Service for the named binary. db can be nil; nil checkers are skipped.
func New(name string, db DBPinger, checks ...Named) *Service {
	kept := make([]Named, 0, len(checks))
	for _, c := range checks {
		if c.Checker != nil {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	return &Service{name: name, db: db, checks: kept}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks)+1)

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx))
	}
	for _, c := range s.checks {
		checks[c.Name] = result(c.Checker.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Service: s.name, Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
