package service

import (
	"fmt"
	"strings"

	"github.com/agentdesk/agentdesk/internal/models"
)

// Rule maps a set of keywords to a category
type Rule struct {
	Category models.Category `yaml:"category" json:"category"`
	Keywords []string        `yaml:"keywords" json:"keywords"`
}

// Classification contains the routing decision and why it was made
type Classification struct {
	Category  models.Category
	Keyword   string
	Matched   bool
	Reasoning string
}

// Classifier maps a query to a category. Rules are evaluated in order and the
// first rule with a keyword contained in the lowercased query wins, even if a
// later rule matches more keywords. Queries that match nothing get the
// default category, so Classify is total.
type Classifier struct {
	rules           []Rule
	defaultCategory models.Category
}

// NewClassifier validates and normalizes the rule set. The default category
// must be one of the rule categories.
func NewClassifier(rules []Rule, defaultCategory models.Category) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("classifier: at least one rule is required")
	}

	seen := make(map[models.Category]bool, len(rules))
	normalized := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Category == "" {
			return nil, fmt.Errorf("classifier: rule %d has no category", i)
		}
		if seen[r.Category] {
			return nil, fmt.Errorf("classifier: duplicate rule for category %q", r.Category)
		}
		seen[r.Category] = true

		var kws []string
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("classifier: rule %q has no keywords", r.Category)
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: kws})
	}

	if !seen[defaultCategory] {
		return nil, fmt.Errorf("classifier: default category %q has no rule", defaultCategory)
	}

	return &Classifier{rules: normalized, defaultCategory: defaultCategory}, nil
}

// Classify returns the category for a query
func (c *Classifier) Classify(query string) models.Category {
	return c.ClassifyDetail(query).Category
}

// ClassifyDetail is Classify plus the matched keyword
func (c *Classifier) ClassifyDetail(query string) Classification {
	lower := strings.ToLower(query)

	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return Classification{
					Category:  r.Category,
					Keyword:   kw,
					Matched:   true,
					Reasoning: fmt.Sprintf("matched keyword %q", kw),
				}
			}
		}
	}

	return Classification{
		Category:  c.defaultCategory,
		Reasoning: fmt.Sprintf("no keywords matched, defaulting to %s", c.defaultCategory),
	}
}

// Categories lists the categories in priority order
func (c *Classifier) Categories() []models.Category {
	out := make([]models.Category, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Category
	}
	return out
}

// Default returns the fallback category
func (c *Classifier) Default() models.Category {
	return c.defaultCategory
}
