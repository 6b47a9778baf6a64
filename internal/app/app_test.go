package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := Config{
		Addr:           ":8080",
		TickRate:       60,
		SaveBackend:    "memory",
		SavePath:       "neon-siege.db",
		SaveKey:        "autosave",
		AutosaveTicks:  1800,
		ActionLogCap:   256,
		QueueCapacity:  256,
		LogMinSeverity: "info",
		LogSinks:       []string{"console"},
		LogJSONPath:    "events.jsonl",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("NEON_ADDR", ":9000")
	t.Setenv("NEON_TICK_RATE", "30")
	t.Setenv("NEON_SAVE_BACKEND", "sqlite")
	t.Setenv("NEON_LOG_SINKS", "console,json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.TickRate != 30 || cfg.SaveBackend != "sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"console", "json"}, cfg.LogSinks); diff != "" {
		t.Fatalf("sink list mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenBlobStoreRefusesUnknownBackend(t *testing.T) {
	if _, err := openBlobStore(Config{SaveBackend: "redis"}); err == nil {
		t.Fatalf("expected an error for an unknown backend")
	}
}

func TestOpenBlobStoreBackends(t *testing.T) {
	dir := t.TempDir()
	cases := []Config{
		{SaveBackend: "memory"},
		{SaveBackend: "bbolt", SavePath: dir + "/saves.bolt"},
		{SaveBackend: "sqlite", SavePath: dir + "/saves.db"},
	}
	for _, cfg := range cases {
		blob, err := openBlobStore(cfg)
		if err != nil {
			t.Fatalf("open %s: %v", cfg.SaveBackend, err)
		}
		if err := blob.Close(); err != nil {
			t.Fatalf("close %s: %v", cfg.SaveBackend, err)
		}
	}
}
