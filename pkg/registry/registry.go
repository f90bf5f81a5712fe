// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// CheckCTCActivityID identifies the budget check in the registry.
const CheckCTCActivityID = "budget.ctc.check"

//go:embed activities.json
var defaultRegistry []byte

var activityIDPattern = regexp.MustCompile(`^[a-z]+\.[a-z]+\.[a-z]+$`)

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return parse(defaultRegistry)
}

// LoadRegistry reads a registry file from disk.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks activity naming, uniqueness and job timeouts.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if !activityIDPattern.MatchString(a.ID) {
			return fmt.Errorf("activity ID %q must follow format: domain.subdomain.action (e.g., budget.ctc.check)", a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate activity ID %q", a.ID)
		}
		seen[a.ID] = true
		if a.TaskType == "" {
			return fmt.Errorf("activity %q has no taskType", a.ID)
		}
		if a.JobTimeout != "" {
			if d, err := time.ParseDuration(a.JobTimeout); err != nil || d <= 0 {
				return fmt.Errorf("activity %q: jobTimeout %q must be a positive duration", a.ID, a.JobTimeout)
			}
		}
	}
	return nil
}

// Find returns the activity with the given ID.
func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// MustFind is Find for activities compiled into the binary.
func (r *ActivityRegistry) MustFind(id string) *Activity {
	a, ok := r.Find(id)
	if !ok {
		panic(fmt.Sprintf("registry: activity %q not registered", id))
	}
	return a
}
