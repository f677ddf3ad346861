// Package appconf holds the server configuration read from command-line
// flags and the planner rules read from a YAML file.
package appconf

import "strings"

// Environment is the deployment the server runs in.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag to an Environment. Unknown values
// mean Development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config is the server configuration.
type Config struct {
	Port          int
	Env           Environment
	ApiKeys       []string
	ExemptApiKeys []string // not rate limited
	Verbose       bool
	RateLimit     int // requests per second per API key

	// RulesPath points at the planner rules file; empty means no rules.
	RulesPath string
	// Timezone names the zone used for "leave now" queries. It overrides the
	// rules file when set.
	Timezone string
	// DeparturesLimit caps departures.json; it overrides the rules file
	// when positive.
	DeparturesLimit int
	// ClockFile holds a pinned current time. When it or PinnedTimeEnvVar is
	// set the server answers "leave now" queries at that moment.
	ClockFile string
}

// PinnedTimeEnvVar names the environment variable that pins the clock.
const PinnedTimeEnvVar = "BUSPLANNER_NOW"

// IsExempt reports whether key skips rate limiting.
func (c Config) IsExempt(key string) bool {
	for _, k := range c.ExemptApiKeys {
		if k == key {
			return true
		}
	}
	return false
}
