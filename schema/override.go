package schema

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ClassRule classifies replayed issues into a named reporting class.
// Every configured condition must hold for an issue to match.
type ClassRule struct {
	Name              string   `json:"name" yaml:"name"`                                         // class display name
	LinkMarker        string   `json:"link_marker,omitempty" yaml:"link-marker,omitempty"`       // required among issue links
	Pack              string   `json:"pack,omitempty" yaml:"pack,omitempty"`                     // required exact pack value
	ExcludePriorities []string `json:"exclude_priorities,omitempty" yaml:"exclude-priorities,omitempty"` // priorities rejected from the class
}

// Matches reports whether a replayed issue state satisfies every
// configured condition of the rule. A rule with no conditions matches
// everything.
func (r ClassRule) Matches(state IssueState) bool {
	if r.LinkMarker != "" && !lo.Contains(state.Links, r.LinkMarker) {
		return false
	}
	if r.Pack != "" && state.Pack != r.Pack {
		return false
	}
	if lo.Contains(r.ExcludePriorities, state.Priority) {
		return false
	}
	return true
}

// Classification segments snapshot counts into deployment classes and
// screens out issues whose components mark them as out of scope.
type Classification struct {
	ExcludeComponents []string    `json:"exclude_components,omitempty" yaml:"exclude-components,omitempty"` // component markers that drop an issue
	Classes           []ClassRule `json:"classes,omitempty" yaml:"classes,omitempty"`                       // ordered class rules
}

// Excluded reports whether any issue component carries one of the
// configured exclusion markers. Matching is case-insensitive and by
// substring, so a marker of "hw" also drops "HW Board" components.
func (c Classification) Excluded(components []string) bool {
	for _, comp := range components {
		lower := strings.ToLower(comp)
		for _, marker := range c.ExcludeComponents {
			if strings.Contains(lower, strings.ToLower(marker)) {
				return true
			}
		}
	}
	return false
}

// ClassNames returns the class names in configured order.
func (c Classification) ClassNames() []string {
	return lo.Map(c.Classes, func(r ClassRule, _ int) string { return r.Name })
}

// Override is a deployment-specific profile overlay loaded from YAML.
// Absent sections leave the built-in profile untouched.
type Override struct {
	ExtractionDay  string          `yaml:"extraction-day,omitempty"` // weekday name for checkpoints
	Taxonomy       []StatusGroup   `yaml:"taxonomy,omitempty"`       // replacement status taxonomy
	Classification *Classification `yaml:"classification,omitempty"` // class rules and exclusions
}

// LoadOverride reads and validates an override file.
func LoadOverride(path string) (*Override, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read override file: %w", err)
	}
	var o Override
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("parse override file: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid override file %s: %w", path, err)
	}
	return &o, nil
}

// Validate checks the override for holes that would silently skew
// metrics, like unnamed groups or an unparseable extraction day.
func (o *Override) Validate() error {
	if o.ExtractionDay != "" {
		if _, err := ParseWeekday(o.ExtractionDay); err != nil {
			return err
		}
	}
	for _, g := range o.Taxonomy {
		if g.Name == "" {
			return fmt.Errorf("taxonomy group with no name")
		}
		if len(g.Statuses) == 0 {
			return fmt.Errorf("taxonomy group %s has no statuses", g.Name)
		}
	}
	if o.Classification != nil {
		for _, r := range o.Classification.Classes {
			if r.Name == "" {
				return fmt.Errorf("classification class with no name")
			}
		}
	}
	return nil
}

// Weekday returns the configured extraction weekday. The boolean is
// false when the override leaves the day unset.
func (o *Override) Weekday() (time.Weekday, bool) {
	if o.ExtractionDay == "" {
		return time.Sunday, false
	}
	day, err := ParseWeekday(o.ExtractionDay)
	if err != nil {
		// Validate runs at load time, so this cannot happen for a
		// loaded override.
		return time.Sunday, false
	}
	return day, true
}

// Apply overlays the override onto a built-in profile. Only sections
// present in the override replace their profile counterparts.
func (o *Override) Apply(p Profile) Profile {
	if len(o.Taxonomy) > 0 {
		p.Taxonomy = Taxonomy{Groups: o.Taxonomy}
	}
	return p
}
