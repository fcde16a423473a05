package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/topicscan/internal/apperr"
)

// RequiredSections must appear in the merged configuration.
var RequiredSections = []string{"general", "sources", "processing", "scoring", "categories"}

// MissingSections lists required sections that neither the defaults nor
// config.yaml provide.
func (c *Config) MissingSections() []string {
	var missing []string
	for _, s := range RequiredSections {
		if _, ok := c.sections[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

// Validate reports missing sections and values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	var problems []string
	if missing := c.MissingSections(); len(missing) > 0 {
		problems = append(problems, "missing sections: "+strings.Join(missing, ", "))
	}
	cl := c.Processing.Clustering
	if cl.MinClusters < 1 || cl.MaxClusters < cl.MinClusters {
		problems = append(problems, fmt.Sprintf("processing.clustering: need 1 <= min_clusters (%d) <= max_clusters (%d)", cl.MinClusters, cl.MaxClusters))
	}
	if r := c.Processing.NGramRange; r[0] < 1 || r[1] < r[0] {
		problems = append(problems, fmt.Sprintf("processing.ngram_range: invalid %v", r))
	}
	if c.Scoring.RecencyDecayHours <= 0 {
		problems = append(problems, "scoring.recency_decay_hours must be positive")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", apperr.ErrInvalidConfig, strings.Join(problems, "; "))
}
