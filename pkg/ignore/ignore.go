// Package ignore implements the version ignore-policy applied to resolved
// latest versions before an update is proposed.
package ignore

import (
	"fmt"
	"regexp"
)

// Rule suppresses updates for one asset when the resolved latest version
// matches the Version regular expression.
type Rule struct {
	CDN     string `json:"cdn" mapstructure:"cdn"`
	Name    string `json:"name" mapstructure:"name"`
	Version string `json:"version" mapstructure:"version"`
}

// Rules is the ordered set of ignore rules from the configuration file.
type Rules []Rule

// Validate compiles every rule's version pattern so malformed configuration
// fails at load time instead of mid-run.
func (rs Rules) Validate() error {
	for i, rule := range rs {
		if _, err := regexp.Compile(rule.Version); err != nil {
			return fmt.Errorf("ignore rule %d (%s/%s): invalid version pattern: %w", i, rule.CDN, rule.Name, err)
		}
	}
	return nil
}

// Match reports whether the resolved version of the given asset is suppressed
// by any applicable rule. Rules whose pattern fails to compile are skipped;
// Validate catches those at configuration load.
func (rs Rules) Match(cdnName, assetName, version string) bool {
	for _, rule := range rs {
		if rule.CDN != cdnName || rule.Name != assetName {
			continue
		}
		expression, err := regexp.Compile(rule.Version)
		if err != nil {
			continue
		}
		if expression.MatchString(version) {
			return true
		}
	}
	return false
}
