// pkg/registry/schema.go
package registry

import "time"

// ActivityRegistry describes the operations this service exposes.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one budget operation, reachable over HTTP at Endpoint and as
// a Zeebe service task of TaskType.
type Activity struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Version      string                 `json:"version"`
	Endpoint     string                 `json:"endpoint,omitempty"`
	TaskType     string                 `json:"taskType"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	// JobTimeout is how long a Zeebe job stays locked to a worker when
	// camunda.timeout is not configured, e.g. "30s".
	JobTimeout string   `json:"jobTimeout,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// JobLockTimeout parses JobTimeout. It returns 0 when unset; Validate
// rejects unparsable values.
func (a *Activity) JobLockTimeout() time.Duration {
	d, err := time.ParseDuration(a.JobTimeout)
	if err != nil {
		return 0
	}
	return d
}
