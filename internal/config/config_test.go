package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	if cfg.Resolution == nil || *cfg.Resolution != 1.0 {
		t.Errorf("Expected Resolution 1.0, got %v", cfg.Resolution)
	}
	if cfg.Radius == nil || *cfg.Radius != 0 {
		t.Errorf("Expected Radius 0, got %v", cfg.Radius)
	}
	if cfg.Sigma != nil {
		t.Errorf("Expected Sigma unset (box kernel), got %v", *cfg.Sigma)
	}
	if !math.IsInf(cfg.GetSigma(), 1) {
		t.Errorf("GetSigma() = %v, want +Inf", cfg.GetSigma())
	}
	if cfg.GetNoData() != -9999 {
		t.Errorf("GetNoData() = %v, want -9999", cfg.GetNoData())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must pass Validate(): %v", err)
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyConfig()

	if cfg.GetResolution() != 1.0 {
		t.Errorf("GetResolution() = %v, want 1.0", cfg.GetResolution())
	}
	if cfg.GetRadius() != 0 {
		t.Errorf("GetRadius() = %d, want 0", cfg.GetRadius())
	}
	if cfg.GetBand() != 0 {
		t.Errorf("GetBand() = %d, want 0", cfg.GetBand())
	}
	if cfg.GetHeatmapSizeCm() != 15 {
		t.Errorf("GetHeatmapSizeCm() = %v, want 15", cfg.GetHeatmapSizeCm())
	}
	if cfg.GetDBPath() != "" {
		t.Errorf("GetDBPath() = %q, want empty", cfg.GetDBPath())
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "job.json")

	testJSON := `{
  "resolution": 0.5,
  "radius": 2,
  "sigma": 0.75,
  "band": 1,
  "roi": {"x_off": 10, "y_off": 20, "width": 40, "height": 30},
  "db_path": "rasters.db"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GetResolution() != 0.5 {
		t.Errorf("GetResolution() = %v, want 0.5", cfg.GetResolution())
	}
	if cfg.GetRadius() != 2 {
		t.Errorf("GetRadius() = %d, want 2", cfg.GetRadius())
	}
	if cfg.GetSigma() != 0.75 {
		t.Errorf("GetSigma() = %v, want 0.75", cfg.GetSigma())
	}
	if cfg.GetBand() != 1 {
		t.Errorf("GetBand() = %d, want 1", cfg.GetBand())
	}
	if cfg.ROI == nil || cfg.ROI.Width != 40 || cfg.ROI.Height != 30 || cfg.ROI.XOff != 10 || cfg.ROI.YOff != 20 {
		t.Errorf("ROI = %+v, want {10 20 40 30}", cfg.ROI)
	}
	if cfg.GetDBPath() != "rasters.db" {
		t.Errorf("GetDBPath() = %q, want rasters.db", cfg.GetDBPath())
	}
	// Unset fields keep their defaults.
	if cfg.GetNoData() != -9999 {
		t.Errorf("GetNoData() = %v, want -9999", cfg.GetNoData())
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "job.yaml", `{}`, "extension"},
		{"bad json", "bad.json", `{"resolution":`, "parse"},
		{"negative radius", "radius.json", `{"radius": -1}`, "radius"},
		{"zero resolution", "res.json", `{"resolution": 0}`, "resolution"},
		{"negative sigma", "sigma.json", `{"sigma": -0.5}`, "sigma"},
		{"empty roi", "roi.json", `{"roi": {"width": 0, "height": 3}}`, "roi"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tc.file)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfigMerge(t *testing.T) {
	base := MustLoadDefaultConfig()
	override := &Config{Radius: ptrInt(3), Sigma: ptrFloat64(1.5), DBPath: ptrString("x.db")}

	got := base.Merge(override)

	if got.GetRadius() != 3 {
		t.Errorf("GetRadius() = %d, want 3", got.GetRadius())
	}
	if got.GetSigma() != 1.5 {
		t.Errorf("GetSigma() = %v, want 1.5", got.GetSigma())
	}
	if got.GetResolution() != 1.0 {
		t.Errorf("GetResolution() = %v, want 1.0 (kept from base)", got.GetResolution())
	}
	if got.GetDBPath() != "x.db" {
		t.Errorf("GetDBPath() = %q, want x.db", got.GetDBPath())
	}

	// Merged values must not alias the override.
	*override.Radius = 9
	if got.GetRadius() != 3 {
		t.Errorf("Merge aliased override: radius now %d", got.GetRadius())
	}
	if base.Merge(nil) != base {
		t.Error("Merge(nil) should return the receiver")
	}
}
