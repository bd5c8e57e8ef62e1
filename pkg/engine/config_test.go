// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
timezone: America/Sao_Paulo
lookback_days: [30, 90]
risk:
  healthy_days: 7
  churning_days: 21
  lost_days: 45
  new_customer_days: 30
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.LookbackDays) != 2 || cfg.LookbackDays[1] != 90 {
		t.Errorf("LookbackDays = %v, want [30 90]", cfg.LookbackDays)
	}
	if cfg.Risk.HealthyDays != 7 {
		t.Errorf("Risk.HealthyDays = %d, want 7", cfg.Risk.HealthyDays)
	}
	// Sections left out of the file keep their defaults.
	if cfg.Retention.EligibilityMinDays != 31 {
		t.Errorf("Retention.EligibilityMinDays = %d, want default 31", cfg.Retention.EligibilityMinDays)
	}
	if cfg.Conversion.WindowDays != 30 {
		t.Errorf("Conversion.WindowDays = %d, want default 30", cfg.Conversion.WindowDays)
	}
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	t.Setenv("ANALYTICS_TIMEZONE", "UTC")

	path := writeConfig(t, "timezone: ${ANALYTICS_TIMEZONE:America/Sao_Paulo}\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC from environment", cfg.Timezone)
	}
}

func TestLoadConfigEnvDefault(t *testing.T) {
	path := writeConfig(t, "timezone: ${UNSET_ANALYTICS_TZ:America/Bahia}\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timezone != "America/Bahia" {
		t.Errorf("Timezone = %q, want fallback default", cfg.Timezone)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name: "inverted risk ladder",
			content: `
risk:
  healthy_days: 30
  churning_days: 14
  lost_days: 60
  new_customer_days: 30
`,
		},
		{
			name: "overlapping retention slices",
			content: `
retention:
  eligibility_min_days: 20
  eligibility_max_days: 60
  measurement_days: 30
  overdue_days: 21
  new_customer_days: 90
`,
		},
		{
			name:    "empty timezone",
			content: "timezone: \"\"\n",
		},
		{
			name:    "empty lookbacks",
			content: "lookback_days: []\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}
