package entity

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// SiteConfig is one entry of the site-configuration file, keyed by site
// name in the loaded map.
type SiteConfig struct {
	Name             string
	Spider           string // currently only "rss"
	SourceName       string // defaults to Name when empty
	FeedURL          string
	Cron             string
	QPS              float64
	Concurrency      int
	MaxItems         int
	FetchFullContent bool
	Headers          map[string]string
	UseRender        bool
	Delay            time.Duration
	Jitter           bool
}

// EffectiveSourceName returns SourceName, falling back to Name.
func (s *SiteConfig) EffectiveSourceName() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return s.Name
}

// Validate applies defaults and checks that the config is crawlable.
func (s *SiteConfig) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "site name is required"}
	}
	if s.Spider == "" {
		s.Spider = "rss"
	}
	if s.Spider != "rss" {
		return &ValidationError{Field: "spider", Message: fmt.Sprintf("unknown spider kind %q", s.Spider)}
	}
	if s.FeedURL == "" {
		return &ValidationError{Field: "feed_url", Message: "feed_url is required"}
	}
	if err := ValidateURL(s.FeedURL); err != nil {
		return err
	}
	if s.Cron == "" {
		return &ValidationError{Field: "cron", Message: "cron is required"}
	}
	if _, err := cron.ParseStandard(s.Cron); err != nil {
		return &ValidationError{Field: "cron", Message: fmt.Sprintf("invalid cron expression: %v", err)}
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 2
	}
	if s.QPS < 0 {
		return &ValidationError{Field: "qps", Message: "qps must not be negative"}
	}
	return nil
}
