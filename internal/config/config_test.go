package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Assessment.StalenessDays != 30 {
		t.Errorf("StalenessDays = %d, want 30", cfg.Assessment.StalenessDays)
	}
	if cfg.Assessment.PassRateBar != 95.0 {
		t.Errorf("PassRateBar = %v, want 95", cfg.Assessment.PassRateBar)
	}
	if cfg.Scheduler.Enabled {
		t.Error("scheduler should default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("ASSESSMENT_ORG", "globex")
	t.Setenv("ASSESSMENT_REQUIRED_PLATFORMS", "VMware, AWS ,Azure")
	t.Setenv("ASSESSMENT_PASS_RATE_BAR", "99.5")
	t.Setenv("SCHEDULER_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Backend != "sql" || cfg.Store.Driver != "postgres" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Assessment.Org != "globex" {
		t.Errorf("Org = %q", cfg.Assessment.Org)
	}
	want := []string{"VMware", "AWS", "Azure"}
	if len(cfg.Assessment.RequiredPlatforms) != 3 {
		t.Fatalf("RequiredPlatforms = %v", cfg.Assessment.RequiredPlatforms)
	}
	for i, p := range want {
		if cfg.Assessment.RequiredPlatforms[i] != p {
			t.Errorf("RequiredPlatforms[%d] = %q, want %q", i, cfg.Assessment.RequiredPlatforms[i], p)
		}
	}
	if cfg.Assessment.PassRateBar != 99.5 {
		t.Errorf("PassRateBar = %v", cfg.Assessment.PassRateBar)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("scheduler should be enabled")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("SCHEDULER_ENABLED", "definitely")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("malformed port should fall back to 8080, got %d", cfg.Server.Port)
	}
	if cfg.Scheduler.Enabled {
		t.Error("malformed bool should fall back to false")
	}
}
