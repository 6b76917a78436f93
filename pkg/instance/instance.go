// Package instance identifies the running worker process in logs so that
// cycles from concurrently deployed sync workers can be told apart.
package instance

import "github.com/rosamendez/emberglow-backend/pkg/env"

// GetID returns the configured worker identifier, defaulting to "sync-0"
// for single-instance deployments.
func GetID() string {
	return env.Get("EMBERGLOW_WORKER_ID", "sync-0")
}
