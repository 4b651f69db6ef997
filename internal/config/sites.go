// Package config loads the crawler's on-disk configuration: the
// site-configuration file consumed by both cmd/worker and cmd/api.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/catchup-feed/sitecrawler/internal/domain/entity"
)

// sitesFile is the on-disk shape of the site-configuration YAML: a mapping
// under a top-level "sites" key, keyed by site name.
type sitesFile struct {
	Sites map[string]siteEntry `yaml:"sites"`
}

type siteEntry struct {
	Spider           string            `yaml:"spider"`
	SourceName       string            `yaml:"source_name"`
	FeedURL          string            `yaml:"feed_url"`
	Cron             string            `yaml:"cron"`
	QPS              float64           `yaml:"qps"`
	Concurrency      int               `yaml:"concurrency"`
	MaxItems         int               `yaml:"max_items"`
	FetchFullContent bool              `yaml:"fetch_full_content"`
	Headers          map[string]string `yaml:"headers"`
	UseRender        bool              `yaml:"use_render"`
	DelayMillis      int               `yaml:"delay_ms"`
	Jitter           bool              `yaml:"jitter"`
}

// LoadSites reads a site-configuration YAML file and returns the validated
// result keyed by site name. path is expected from a trusted source (CLI
// flag or deployment manifest), not user input.
func LoadSites(path string) (map[string]entity.SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var file sitesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}

	sites := make(map[string]entity.SiteConfig, len(file.Sites))
	for name, entry := range file.Sites {
		cfg := entity.SiteConfig{
			Name:             name,
			Spider:           entry.Spider,
			SourceName:       entry.SourceName,
			FeedURL:          entry.FeedURL,
			Cron:             entry.Cron,
			QPS:              entry.QPS,
			Concurrency:      entry.Concurrency,
			MaxItems:         entry.MaxItems,
			FetchFullContent: entry.FetchFullContent,
			Headers:          entry.Headers,
			UseRender:        entry.UseRender,
			Delay:            time.Duration(entry.DelayMillis) * time.Millisecond,
			Jitter:           entry.Jitter,
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		sites[cfg.Name] = cfg
	}
	return sites, nil
}
