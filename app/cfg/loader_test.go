package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:                 "8080",
		UserAgent:            "Test Agent",
		SyndicationURL:       "https://syndication.example.com",
		RSSURL:               "https://rss.example.com",
		FetchTimeout:         7,
		RateLimitRetries:     2,
		RetryBackoff:         500,
		BatchSize:            5,
		BatchPacing:          200,
		MaxEntriesPerAccount: 20,
		FreshWindow:          4,
		StaleWindow:          24,
		MaxPosts:             60,
		RefreshInterval:      900,
		WorkerCount:          2,
		DBPath:               "./test.db",
		Version:              "test-version",
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.FetchTimeout != 7 {
		t.Errorf("Expected fetch timeout 7, got %d", cfg.FetchTimeout)
	}
	if cfg.RateLimitRetries != 2 {
		t.Errorf("Expected 2 rate limit retries, got %d", cfg.RateLimitRetries)
	}
	if cfg.BatchSize != 5 {
		t.Errorf("Expected batch size 5, got %d", cfg.BatchSize)
	}
	if cfg.FreshWindow != 4 || cfg.StaleWindow != 24 {
		t.Errorf("Expected freshness windows 4/24, got %d/%d", cfg.FreshWindow, cfg.StaleWindow)
	}
	if cfg.MaxPosts != 60 {
		t.Errorf("Expected max posts 60, got %d", cfg.MaxPosts)
	}
	if cfg.PerHandleCap != 0 {
		t.Errorf("Expected per-handle cap disabled by default, got %d", cfg.PerHandleCap)
	}
}
