//go:build linux

// Package linuxgpio drives single GPIO lines through the Linux GPIO
// character device. It covers the discrete pins around a PWM controller,
// typically the active-low output-enable line.
package linuxgpio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"

	"hfdrivers-go/errcode"
)

// Pin is one requested output line. Get reports the last driven level, not
// a hardware readback.
type Pin struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	number int
	level  bool
}

// RequestOutput claims line `number` on the named chip as an output at the
// initial level.
func RequestOutput(chipPath string, number int, initial bool, consumer string) (*Pin, error) {
	chip, err := gpiocdev.NewChip(chipPath)
	if err != nil {
		return nil, errcode.Wrap(errcode.HardwareError, "gpio_chip_open", err)
	}
	line, err := chip.RequestLine(number, gpiocdev.AsOutput(boolToInt(initial)), gpiocdev.WithConsumer(consumer))
	if err != nil {
		_ = chip.Close()
		return nil, errcode.Wrap(errcode.HardwareError, "gpio_line_request", err)
	}
	return &Pin{chip: chip, line: line, number: number, level: initial}, nil
}

// FindOutput scans the /dev/gpiochip* devices for a line named "GPIO<n>"
// (the common SoC naming) and claims it as an output. Useful when the
// chip that carries a given header pin varies between board revisions.
func FindOutput(number int, initial bool, consumer string) (*Pin, error) {
	if number <= 0 {
		return nil, errcode.InvalidArgument
	}
	lineName := fmt.Sprintf("GPIO%d", number)

	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "gpiochip") {
			continue
		}
		chipPath := filepath.Join("/dev", e.Name())
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(boolToInt(initial)), gpiocdev.WithConsumer(consumer))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &Pin{chip: chip, line: line, number: number, level: initial}, nil
	}
	return nil, errcode.Wrap(errcode.HardwareError, "gpio_find",
		fmt.Errorf("line %q not found or busy", lineName))
}

func (p *Pin) Number() int { return p.number }

// ConfigureOutput re-drives the line to the initial level. The direction
// was fixed at request time, so this only settles the level.
func (p *Pin) ConfigureOutput(initial bool) error {
	if p.line == nil {
		return errcode.NotInitialized
	}
	if err := p.line.SetValue(boolToInt(initial)); err != nil {
		return errcode.Wrap(errcode.HardwareError, "gpio_set", err)
	}
	p.level = initial
	return nil
}

// Set drives the line. Errors from the character device are swallowed; the
// mirrored level always tracks the request.
func (p *Pin) Set(level bool) {
	if p.line == nil {
		return
	}
	_ = p.line.SetValue(boolToInt(level))
	p.level = level
}

func (p *Pin) Get() bool { return p.level }

// Close drives the line low, releases it and closes the chip handle.
func (p *Pin) Close() error {
	if p.line == nil {
		return nil
	}
	_ = p.line.SetValue(0)
	err := p.line.Close()
	p.line = nil
	if p.chip != nil {
		_ = p.chip.Close()
		p.chip = nil
	}
	if err != nil {
		return errcode.Wrap(errcode.HardwareError, "gpio_close", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
