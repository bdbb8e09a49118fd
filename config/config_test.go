package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pwm.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	p := writeFile(t, `
bus:
  path: /dev/i2c-1
channels:
  - channel: 0
    duty_cycle: 0.5
    start: true
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bus.Path != "/dev/i2c-1" {
		t.Fatalf("bus path = %q", cfg.Bus.Path)
	}
	if cfg.Chip.FrequencyHz != 50 {
		t.Fatalf("default frequency = %d, want 50", cfg.Chip.FrequencyHz)
	}
	if len(cfg.Channels) != 1 || !cfg.Channels[0].Start || cfg.Channels[0].DutyCycle != 0.5 {
		t.Fatalf("channels = %+v", cfg.Channels)
	}
}

func TestLoadFull(t *testing.T) {
	p := writeFile(t, `
bus:
  path: /dev/i2c-3
chip:
  address: 0x41
  oe_pin: 17
  frequency_hz: 200
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chip.Address != 0x41 || cfg.Chip.OEPin != 17 || cfg.Chip.FrequencyHz != 200 {
		t.Fatalf("chip = %+v", cfg.Chip)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing bus path", "chip:\n  frequency_hz: 50\n"},
		{"channel out of range", "bus:\n  path: /dev/i2c-1\nchannels:\n  - channel: 16\n"},
		{"duty out of range", "bus:\n  path: /dev/i2c-1\nchannels:\n  - channel: 0\n    duty_cycle: 1.5\n"},
	}
	for _, c := range cases {
		if _, err := Load(writeFile(t, c.yaml)); err == nil {
			t.Errorf("%s: accepted", c.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("accepted missing file")
	}
}
