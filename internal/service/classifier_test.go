package service_test

import (
	"testing"

	"github.com/agentdesk/agentdesk/internal/config"
	"github.com/agentdesk/agentdesk/internal/models"
	"github.com/agentdesk/agentdesk/internal/service"
)

func newDefaultClassifier(t *testing.T) *service.Classifier {
	t.Helper()
	c, err := service.NewClassifier(config.DefaultRules(), config.DefaultCategory)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func TestClassifier_IT(t *testing.T) {
	c := newDefaultClassifier(t)

	itQueries := []string{
		"my VPN is not connecting",
		"Laptop screen flickers",
		"cannot receive EMAIL since monday",
		"wifi drops every hour",
		"how do I install software on my machine",
	}
	for _, q := range itQueries {
		if got := c.Classify(q); got != models.CategoryIT {
			d := c.ClassifyDetail(q)
			t.Errorf("expected IT for %q, got %q (%s)", q, got, d.Reasoning)
		}
	}
}

func TestClassifier_Finance(t *testing.T) {
	c := newDefaultClassifier(t)

	financeQueries := []string{
		"need reimbursement for travel",
		"when is PAYROLL processed",
		"where do I send an invoice",
		"what is the marketing budget",
	}
	for _, q := range financeQueries {
		if got := c.Classify(q); got != models.CategoryFinance {
			d := c.ClassifyDetail(q)
			t.Errorf("expected Finance for %q, got %q (%s)", q, got, d.Reasoning)
		}
	}
}

func TestClassifier_FirstRuleWins(t *testing.T) {
	c := newDefaultClassifier(t)

	// Finance has more keyword hits here, but IT is evaluated first
	q := "laptop purchase from the budget needs an invoice and reimbursement"
	if got := c.Classify(q); got != models.CategoryIT {
		t.Errorf("mixed query should go to the first rule (IT), got %q", got)
	}

	reordered, err := service.NewClassifier([]service.Rule{
		{Category: models.CategoryFinance, Keywords: []string{"budget"}},
		{Category: models.CategoryIT, Keywords: []string{"laptop"}},
	}, models.CategoryIT)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	if got := reordered.Classify(q); got != models.CategoryFinance {
		t.Errorf("with Finance first, expected Finance, got %q", got)
	}
}

func TestClassifier_NoKeywords(t *testing.T) {
	c := newDefaultClassifier(t)

	for _, q := range []string{"hello world", "", "   ", "what's for lunch?"} {
		d := c.ClassifyDetail(q)
		if d.Category != config.DefaultCategory {
			t.Errorf("default should be %s for %q, got %q", config.DefaultCategory, q, d.Category)
		}
		if d.Matched {
			t.Errorf("%q should not report a keyword match", q)
		}
		if d.Reasoning == "" {
			t.Error("reasoning should not be empty")
		}
	}

	finDefault, err := service.NewClassifier(config.DefaultRules(), models.CategoryFinance)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	if got := finDefault.Classify("hello world"); got != models.CategoryFinance {
		t.Errorf("configured default Finance not honored, got %q", got)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := newDefaultClassifier(t)

	queries := []string{"my VPN is not connecting", "need reimbursement for travel", "hello", "email the invoice"}
	for _, q := range queries {
		first := c.Classify(q)
		for i := 0; i < 50; i++ {
			if got := c.Classify(q); got != first {
				t.Fatalf("Classify(%q) changed from %q to %q", q, first, got)
			}
		}
	}
}

func TestClassifier_MatchedKeyword(t *testing.T) {
	c := newDefaultClassifier(t)
	d := c.ClassifyDetail("My VPN is down")
	if !d.Matched || d.Keyword != "vpn" {
		t.Errorf("expected match on vpn, got %+v", d)
	}
}

func TestNewClassifier_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rules []service.Rule
		def   models.Category
	}{
		{"no rules", nil, models.CategoryIT},
		{"empty category", []service.Rule{{Keywords: []string{"x"}}}, models.CategoryIT},
		{"no keywords", []service.Rule{{Category: models.CategoryIT, Keywords: []string{" "}}}, models.CategoryIT},
		{"duplicate", []service.Rule{
			{Category: models.CategoryIT, Keywords: []string{"a"}},
			{Category: models.CategoryIT, Keywords: []string{"b"}},
		}, models.CategoryIT},
		{"unknown default", []service.Rule{{Category: models.CategoryIT, Keywords: []string{"a"}}}, "HR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.NewClassifier(tt.rules, tt.def); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
