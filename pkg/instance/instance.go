package instance

import "os"

// GetID returns the identifier for this process instance. Heroku-style
// deploys export DYNO; container deploys set WORKER_ID.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "worker-0"
}
