// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transfer

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Rules controls the retry loop of Download.
type Rules struct {
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the wait before the second attempt. It doubles for
	// every attempt after that.
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// TransientStatus lists the HTTP statuses worth retrying. Every
	// other non-success status is treated as a definitive rejection.
	TransientStatus []int `json:"transient_status" yaml:"transient_status"`
}

// DefaultRules returns the retry policy used when no rules file is given:
// three attempts, one second base delay, and the usual transient statuses.
func DefaultRules() Rules {
	return Rules{
		MaxAttempts:     3,
		BaseDelay:       1 * time.Second,
		TransientStatus: []int{429, 500, 502, 503, 504},
	}
}

// withDefaults fills zero fields from DefaultRules. A non-nil empty
// TransientStatus is kept as-is: it means nothing is transient.
func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = def.MaxAttempts
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = def.BaseDelay
	}
	if r.TransientStatus == nil {
		r.TransientStatus = def.TransientStatus
	}
	return r
}

func (r Rules) transient(status int) bool {
	for _, s := range r.TransientStatus {
		if s == status {
			return true
		}
	}
	return false
}

// rulesFile is the on-disk shape of a retry policy. BaseDelay is a duration
// string such as "500ms" or "2s".
type rulesFile struct {
	MaxAttempts     int    `yaml:"max_attempts"`
	BaseDelay       string `yaml:"base_delay"`
	TransientStatus []int  `yaml:"transient_status"`
}

// LoadRules reads a YAML retry policy from path. An empty path returns
// DefaultRules(); fields absent from the file keep their default values.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return Rules{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	rules := DefaultRules()
	if rf.MaxAttempts < 0 {
		return Rules{}, fmt.Errorf("rules file %s: max_attempts must be positive", path)
	}
	if rf.MaxAttempts > 0 {
		rules.MaxAttempts = rf.MaxAttempts
	}
	if rf.BaseDelay != "" {
		d, err := time.ParseDuration(rf.BaseDelay)
		if err != nil {
			return Rules{}, fmt.Errorf("rules file %s: %w", path, err)
		}
		if d <= 0 {
			return Rules{}, fmt.Errorf("rules file %s: base_delay must be positive", path)
		}
		rules.BaseDelay = d
	}
	if rf.TransientStatus != nil {
		rules.TransientStatus = rf.TransientStatus
	}

	return rules, nil
}
