package appconf

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // zone names must resolve in minimal containers

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

// DefaultDeparturesLimit caps departures.json when nothing else does.
const DefaultDeparturesLimit = 10

// ExclusionConfig is the YAML form of a timegraph.ExclusionRule.
type ExclusionConfig struct {
	Route   string   `yaml:"route" validate:"required"`
	Stop    string   `yaml:"stop" validate:"required"`
	Trigger string   `yaml:"trigger"`
	Days    []string `yaml:"days" validate:"dive,weekday"`
}

// Rules is the planner rules file.
//
//	timezone: America/Chicago
//	departures_limit: 8
//	exclusions:
//	  - route: "68"
//	    stop: Hospital Loop
//	    trigger: Medical Center
//	    days: [saturday, sunday]
type Rules struct {
	Timezone        string            `yaml:"timezone" validate:"omitempty,timezone"`
	DeparturesLimit int               `yaml:"departures_limit" validate:"gte=0"`
	Exclusions      []ExclusionConfig `yaml:"exclusions" validate:"dive"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := schedule.ParseWeekday(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	if err := newValidator().Struct(r); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &r, nil
}

// LoadRules reads the rules file at path. An empty path yields empty rules.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ExclusionRules converts the configured exclusions for the graph builder.
func (r *Rules) ExclusionRules() []timegraph.ExclusionRule {
	if r == nil {
		return nil
	}
	out := make([]timegraph.ExclusionRule, 0, len(r.Exclusions))
	for _, e := range r.Exclusions {
		var days schedule.WeekdaySet
		for _, d := range e.Days {
			// Validated by ParseRules.
			if wd, err := schedule.ParseWeekday(d); err == nil {
				days = days.Add(wd)
			}
		}
		out = append(out, timegraph.ExclusionRule{
			Route:   schedule.RouteID(e.Route),
			Stop:    schedule.StopID(e.Stop),
			Trigger: schedule.StopID(e.Trigger),
			Days:    days,
		})
	}
	return out
}

// Location loads the configured time zone, defaulting to the local zone.
func (r *Rules) Location() (*time.Location, error) {
	if r == nil || r.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

// Merge applies the flag overrides in cfg on top of r.
func (r *Rules) Merge(cfg Config) {
	if cfg.Timezone != "" {
		r.Timezone = cfg.Timezone
	}
	if cfg.DeparturesLimit > 0 {
		r.DeparturesLimit = cfg.DeparturesLimit
	}
	if r.DeparturesLimit == 0 {
		r.DeparturesLimit = DefaultDeparturesLimit
	}
}
