package instance

import "github.com/angelmondragon/tillbook-backend/pkg/env"

// GetID identifies the running process in logs: an explicit
// TILLBOOK_INSTANCE_ID, the platform dyno name, WORKER_ID, then "local".
func GetID() string {
	return env.First("local", "TILLBOOK_INSTANCE_ID", "DYNO", "WORKER_ID")
}
