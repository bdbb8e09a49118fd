// Package config loads the host-side YAML describing which bus, chip and
// channels a tool or service should drive.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus      BusConfig       `yaml:"bus"`
	Chip     ChipConfig      `yaml:"chip"`
	Channels []ChannelConfig `yaml:"channels"`
}

type BusConfig struct {
	// Path of the I2C adapter, e.g. /dev/i2c-1.
	Path string `yaml:"path"`
}

type ChipConfig struct {
	// Address is the 7-bit chip address; the part's default when zero.
	Address uint16 `yaml:"address"`
	// OEPin is the SoC GPIO number wired to the active-low OE input;
	// 0 means not wired.
	OEPin int `yaml:"oe_pin"`
	// OEChip optionally pins the gpiochip device; empty means scan.
	OEChip string `yaml:"oe_chip"`
	// FrequencyHz is the PWM frequency programmed at start-up.
	FrequencyHz uint32 `yaml:"frequency_hz"`
}

type ChannelConfig struct {
	Channel   uint8   `yaml:"channel"`
	DutyCycle float32 `yaml:"duty_cycle"`
	Start     bool    `yaml:"start"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Bus.Path == "" {
		return Config{}, fmt.Errorf("bus.path is required")
	}
	if cfg.Chip.FrequencyHz == 0 {
		cfg.Chip.FrequencyHz = 50
	}
	if cfg.Chip.OEPin < 0 {
		return Config{}, fmt.Errorf("chip.oe_pin must be >= 0")
	}
	for i, ch := range cfg.Channels {
		if ch.Channel > 15 {
			return Config{}, fmt.Errorf("channels[%d].channel %d out of range", i, ch.Channel)
		}
		if ch.DutyCycle < 0 || ch.DutyCycle > 1 {
			return Config{}, fmt.Errorf("channels[%d].duty_cycle %g out of range", i, ch.DutyCycle)
		}
	}
	return cfg, nil
}
