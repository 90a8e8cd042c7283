package gatekeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/gatekeeper/ledger"
	"github.com/viant/gatekeeper/policy"
	"github.com/viant/gatekeeper/service/orchestrator"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the service configuration.  It
// can be populated from YAML or JSON; all amounts are dollars and are
// converted to cents internally.  The zero-value is useful – nested sections
// inherit their package defaults.
type Config struct {
	Budget   BudgetConfig    `json:"budget" yaml:"budget"`
	Catalog  []CatalogItem   `json:"catalog" yaml:"catalog"`
	Policy   PolicyConfig    `json:"policy" yaml:"policy"`
	Approval ApprovalConfig  `json:"approval" yaml:"approval"`
	History  HistoryConfig   `json:"history" yaml:"history"`
	Tracing  *TracingConfig  `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

type BudgetConfig struct {
	Remaining    float64 `json:"remaining" yaml:"remaining"`
	MonthlyLimit float64 `json:"monthlyLimit" yaml:"monthlyLimit"`
	// MaxLimit caps what emergency increases can raise the monthly limit
	// to; zero leaves it unbounded.
	MaxLimit float64 `json:"maxLimit,omitempty" yaml:"maxLimit,omitempty"`
}

type CatalogItem struct {
	Name      string  `json:"name" yaml:"name"`
	UnitPrice float64 `json:"unitPrice" yaml:"unitPrice"`
	Stock     int     `json:"stock" yaml:"stock"`
}

type PolicyConfig struct {
	Mode           string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	LowRiskCeiling float64  `json:"lowRiskCeiling,omitempty" yaml:"lowRiskCeiling,omitempty"`
	AllowList      []string `json:"allowList,omitempty" yaml:"allowList,omitempty"`
	BlockList      []string `json:"blockList,omitempty" yaml:"blockList,omitempty"`
}

type ApprovalConfig struct {
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	WaitMode string        `json:"waitMode,omitempty" yaml:"waitMode,omitempty"`
	// QueueVendor selects the event queue backing the gateway: "memory"
	// (default) or "fs" for a durable queue under QueueBasePath.
	QueueVendor   string `json:"queueVendor,omitempty" yaml:"queueVendor,omitempty"`
	QueueBasePath string `json:"queueBasePath,omitempty" yaml:"queueBasePath,omitempty"`
}

// UnmarshalYAML accepts human-friendly durations ("30s", "5m") for the
// approval timeout.
func (c *ApprovalConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw struct {
		Timeout       string `yaml:"timeout"`
		WaitMode      string `yaml:"waitMode"`
		QueueVendor   string `yaml:"queueVendor"`
		QueueBasePath string `yaml:"queueBasePath"`
	}
	var value raw
	if err := node.Decode(&value); err != nil {
		return err
	}
	if value.Timeout != "" {
		duration, err := time.ParseDuration(value.Timeout)
		if err != nil {
			return fmt.Errorf("approval.timeout: %w", err)
		}
		c.Timeout = duration
	}
	if value.WaitMode != "" {
		c.WaitMode = value.WaitMode
	}
	if value.QueueVendor != "" {
		c.QueueVendor = value.QueueVendor
	}
	if value.QueueBasePath != "" {
		c.QueueBasePath = value.QueueBasePath
	}
	return nil
}

type HistoryConfig struct {
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

type TracingConfig struct {
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns the stock office-supply setup: a $5,000 monthly
// budget and the default catalog.
func DefaultConfig() *Config {
	return &Config{
		Budget: BudgetConfig{Remaining: 5000, MonthlyLimit: 5000},
		Catalog: []CatalogItem{
			{Name: "paper clips", UnitPrice: 12.99, Stock: 500},
			{Name: "pens", UnitPrice: 8.50, Stock: 200},
			{Name: "staplers", UnitPrice: 24.99, Stock: 50},
			{Name: "coffee", UnitPrice: 15.99, Stock: 30},
			{Name: "desk chairs", UnitPrice: 149.99, Stock: 15},
			{Name: "standing desks", UnitPrice: 299.99, Stock: 8},
			{Name: "coffee machine", UnitPrice: 799.99, Stock: 3},
			{Name: "gaming chair", UnitPrice: 1299.99, Stock: 2},
			{Name: "executive desk", UnitPrice: 2499.99, Stock: 1},
		},
		Approval: ApprovalConfig{Timeout: 5 * time.Minute},
		History:  HistoryConfig{Limit: 100},
	}
}

// LoadConfig reads a YAML configuration from the supplied URL (any scheme
// supported by afs: file, mem, s3, gs…).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fservice := afs.New()
	data, err := fservice.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Budget.Remaining < 0 || c.Budget.MonthlyLimit < 0 {
		return fmt.Errorf("budget amounts must not be negative")
	}
	for i, item := range c.Catalog {
		if item.Name == "" {
			return fmt.Errorf("catalog[%v].name is required", i)
		}
		if item.UnitPrice <= 0 {
			return fmt.Errorf("catalog[%v].unitPrice must be > 0", i)
		}
		if item.Stock < 0 {
			return fmt.Errorf("catalog[%v].stock must not be negative", i)
		}
	}
	switch c.Approval.WaitMode {
	case "", string(orchestrator.WaitModeBlock), string(orchestrator.WaitModeNotify):
	default:
		return fmt.Errorf("approval.waitMode must be %q or %q", orchestrator.WaitModeBlock, orchestrator.WaitModeNotify)
	}
	switch c.Policy.Mode {
	case "", policy.ModeAsk, policy.ModeAuto, policy.ModeDeny:
	default:
		return fmt.Errorf("policy.mode must be one of ask, auto, deny")
	}
	return nil
}

// budget converts the configured dollar amounts to a ledger budget.
func (c *Config) budget() ledger.Budget {
	return ledger.Budget{
		Remaining:    ledger.Cents(c.Budget.Remaining),
		MonthlyLimit: ledger.Cents(c.Budget.MonthlyLimit),
	}
}

// catalog converts the configured catalog to ledger items.
func (c *Config) catalog() []ledger.Item {
	out := make([]ledger.Item, 0, len(c.Catalog))
	for _, item := range c.Catalog {
		out = append(out, ledger.Item{
			Name:      item.Name,
			UnitPrice: ledger.Cents(item.UnitPrice),
			Stock:     item.Stock,
		})
	}
	return out
}

// riskPolicy converts the policy section, falling back to package defaults.
func (c *Config) riskPolicy() *policy.Policy {
	ret := policy.Default()
	if c.Policy.Mode != "" {
		ret.Mode = c.Policy.Mode
	}
	if c.Policy.LowRiskCeiling > 0 {
		ret.LowRiskCeiling = ledger.Cents(c.Policy.LowRiskCeiling)
	}
	ret.AllowList = append(ret.AllowList, c.Policy.AllowList...)
	ret.BlockList = append(ret.BlockList, c.Policy.BlockList...)
	return ret
}
