package health

import "context"

// DBPinger checks candidate store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker checks a provider's availability.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
