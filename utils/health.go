package utils

import (
	"context"
	"sync"
	"time"
)

// Probe reports whether one collaborator is reachable.
type Probe func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	out := HealthStatus{Services: make(map[string]bool, len(currentHealth.Services)), CheckedAt: currentHealth.CheckedAt}
	for k, v := range currentHealth.Services {
		out.Services[k] = v
	}
	return out
}

// RunHealthChecks probes every collaborator once and stores the snapshot.
func RunHealthChecks(ctx context.Context, probes map[string]Probe) HealthStatus {
	services := make(map[string]bool, len(probes))
	for name, probe := range probes {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		services[name] = probe(pctx) == nil
		cancel()
	}

	mu.Lock()
	currentHealth = HealthStatus{Services: services, CheckedAt: time.Now()}
	mu.Unlock()
	return GetHealthStatus()
}
