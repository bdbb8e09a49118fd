// cmd/pwmtool/main.go
//
// pwmtool exercises a PCA9685 from the host: it loads the YAML config,
// opens the I2C adapter, applies the configured channel presets and
// optionally sweeps a servo back and forth.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"hfdrivers-go/config"
	"hfdrivers-go/drivers/pca9685"
	"hfdrivers-go/platform/linuxgpio"
	"hfdrivers-go/platform/linuxi2c"
	"hfdrivers-go/types"
	"hfdrivers-go/x/ramp"
)

const sweepTop = 1000

func main() {
	cfgPath := flag.String("config", "/etc/pwmtool.yaml", "config file path")
	sweepCh := flag.Int("sweep", -1, "servo-sweep the given channel (-1 = off)")
	sweepDur := flag.Duration("sweep-time", 2*time.Second, "one sweep direction duration")
	cycles := flag.Int("cycles", 1, "sweep cycles (0 = forever)")
	flag.Parse()

	if err := run(*cfgPath, *sweepCh, *sweepDur, *cycles); err != nil {
		fmt.Fprintln(os.Stderr, "pwmtool:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, sweepCh int, sweepDur time.Duration, cycles int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	i2c := linuxi2c.New(cfg.Bus.Path)

	devCfg := pca9685.Config{Address: cfg.Chip.Address}
	var oe *linuxgpio.Pin
	if cfg.Chip.OEPin != 0 {
		if cfg.Chip.OEChip != "" {
			oe, err = linuxgpio.RequestOutput(cfg.Chip.OEChip, cfg.Chip.OEPin, true, "pwmtool")
		} else {
			oe, err = linuxgpio.FindOutput(cfg.Chip.OEPin, true, "pwmtool")
		}
		if err != nil {
			return err
		}
		defer oe.Close()
		devCfg.OutputEnable = oe
	}

	dev := pca9685.New(i2c, devCfg)
	if err := dev.Initialize(); err != nil {
		return err
	}
	defer dev.Deinitialize()

	for _, ch := range cfg.Channels {
		err := dev.ConfigureChannel(ch.Channel, types.ChannelConfig{
			FrequencyHz:      cfg.Chip.FrequencyHz,
			InitialDutyCycle: ch.DutyCycle,
		})
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch.Channel, err)
		}
		if ch.Start {
			if err := dev.Start(ch.Channel); err != nil {
				return fmt.Errorf("channel %d: %w", ch.Channel, err)
			}
		}
		fmt.Printf("channel %2d  duty %.3f  started %v\n", ch.Channel, ch.DutyCycle, ch.Start)
	}

	if sweepCh >= 0 {
		return sweep(dev, uint8(sweepCh), cfg.Chip.FrequencyHz, sweepDur, cycles)
	}
	return nil
}

// sweep drives a servo on one channel end to end and back.
func sweep(dev *pca9685.Device, channel uint8, freqHz uint32, dur time.Duration, cycles int) error {
	servo := pca9685.NewServo(dev, pca9685.ServoConfig{
		Channel:     channel,
		FrequencyHz: freqHz,
	})
	if err := servo.Configure(); err != nil {
		return err
	}

	var firstErr error
	tick := func(d time.Duration) bool { time.Sleep(d); return firstErr == nil }
	set := func(level uint16) {
		if err := servo.SetPosition(float32(level) / sweepTop); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	durMs := uint32(dur.Milliseconds())
	for i := 0; cycles == 0 || i < cycles; i++ {
		fmt.Printf("sweep %d up\n", i+1)
		ramp.StartLinear(0, sweepTop, sweepTop, durMs, 50, tick, set)
		fmt.Printf("sweep %d down\n", i+1)
		ramp.StartLinear(sweepTop, 0, sweepTop, durMs, 50, tick, set)
		if firstErr != nil {
			return firstErr
		}
	}
	return dev.Stop(channel)
}
