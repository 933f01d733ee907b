package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:8501" || c.MaxUploadMB != 200 || c.SessionCapacity != 256 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	ttl, err := c.TTL()
	if err != nil || ttl != time.Hour {
		t.Fatalf("TTL = %v, %v", ttl, err)
	}
	if s := c.Site(); s.Name != "Universidad EAFIT" || s.Latitude != 6.2006 || s.Zoom != 15 {
		t.Fatalf("site = %+v", s)
	}
	if c.UploadLimit() != 200<<20 {
		t.Fatalf("upload limit = %d", c.UploadLimit())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "luxboard.yaml")
	if err := os.WriteFile(p, []byte("listen_addr: 0.0.0.0:9000\nsession_ttl: PT30M\nsite_zoom: 12\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LUXBOARD_SITE_ZOOM", "17")

	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("listen_addr = %q", c.ListenAddr)
	}
	if c.SiteZoom != 17 {
		t.Fatalf("env should win over file, site_zoom = %d", c.SiteZoom)
	}
	if ttl, _ := c.TTL(); ttl != 30*time.Minute {
		t.Fatalf("TTL = %v", ttl)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(p, []byte("session_ttl: half an hour\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected invalid session_ttl to fail")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected explicit missing config file to fail")
	}
}

func TestSetGetSaveRoundTrip(t *testing.T) {
	c := Default()
	for _, kv := range [][2]string{
		{"chart_width", "1200"},
		{"delimiter", ";"},
		{"decimal_separator", ","},
		{"value_column", "lux"},
		{"site_latitude", "6.25"},
		{"log_format", "JSON"},
	} {
		if err := c.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s): %v", kv[0], err)
		}
	}
	if got, _ := c.Get("log_format"); got != "json" {
		t.Fatalf("log_format = %q", got)
	}

	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := Save(c, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, k := range Keys {
		want, _ := c.Get(k)
		got, err := back.Get(k)
		if err != nil || got != want {
			t.Fatalf("%s = %q, want %q (%v)", k, got, want, err)
		}
	}

	opt := back.ParserOptions()
	if opt.Delimiter != ';' || opt.Normalize.ValueColumn != "lux" {
		t.Fatalf("parser options = %+v", opt)
	}
	if opt.Normalize.Numbers.DecimalSeparator != ',' || opt.Normalize.Numbers.ThousandsSeparator != '.' {
		t.Fatalf("number format = %+v", opt.Normalize.Numbers)
	}
}

func TestSetRejectsInvalid(t *testing.T) {
	c := Default()
	cases := map[string]string{
		"max_upload_mb":  "0",
		"chart_width":    "wide",
		"session_ttl":    "30m",
		"delimiter":      ";;",
		"site_longitude": "200",
		"log_level":      "loud",
		"nope":           "x",
	}
	for k, v := range cases {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%s, %s) should fail", k, v)
		}
	}
	if c.MaxUploadMB != 200 || c.SessionTTL != "PT1H" {
		t.Fatalf("failed Set must not modify config: %+v", c)
	}
}
