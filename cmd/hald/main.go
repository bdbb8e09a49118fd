// cmd/hald/main.go
//
// hald runs the HAL service on a Linux host: it loads a YAML device
// manifest, binds the configured I2C adapters and GPIO lines, and serves
// control messages on the in-process bus until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"
	"tinygo.org/x/drivers"

	"hfdrivers-go/bus"
	"hfdrivers-go/platform/linuxgpio"
	"hfdrivers-go/platform/linuxi2c"
	"hfdrivers-go/services/hal"
	halconfig "hfdrivers-go/services/hal/config"
	_ "hfdrivers-go/services/hal/devices/pwmchip"
)

type manifest struct {
	// Buses maps a bus id (referenced by devices) to an adapter path,
	// e.g. i2c0: /dev/i2c-1.
	Buses map[string]string `yaml:"buses"`

	halconfig.HALConfig `yaml:",inline"`
}

func main() {
	path := "/etc/hald.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := run(path); err != nil {
		fmt.Fprintln(os.Stderr, "hald:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return err
	}
	if len(m.Buses) == 0 {
		return fmt.Errorf("no buses configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(32)

	pins := &pinFactory{consumer: "hald"}
	defer pins.closeAll()

	h := hal.NewHAL(b.NewConnection("hal"), hal.Resources{
		Buses: busFactory{paths: m.Buses},
		Pins:  pins,
	})

	// Feed the device manifest through the same topic external
	// configuration arrives on. Retained, so the service picks it up when
	// its subscription comes online.
	cfgConn := b.NewConnection("hald-config")
	cfgConn.Publish(cfgConn.NewMessage(bus.T("config", "hal"), m.HALConfig, true))

	h.Run(ctx)
	return nil
}

// busFactory hands out unopened adapter handles; the owning driver opens
// the node during its own initialisation.
type busFactory struct {
	paths map[string]string
}

func (f busFactory) ByID(id string) (drivers.I2C, bool) {
	path, ok := f.paths[id]
	if !ok {
		return nil, false
	}
	return linuxi2c.New(path), true
}

// pinFactory claims GPIO lines on demand and keeps them for release at
// shutdown. Lines start high, which holds an active-low OE disabled until
// a driver takes over.
type pinFactory struct {
	consumer string
	claimed  []*linuxgpio.Pin
}

func (f *pinFactory) ByNumber(n int) (hal.GPIOPin, bool) {
	pin, err := linuxgpio.FindOutput(n, true, f.consumer)
	if err != nil {
		return nil, false
	}
	f.claimed = append(f.claimed, pin)
	return pin, true
}

func (f *pinFactory) closeAll() {
	for _, p := range f.claimed {
		_ = p.Close()
	}
	f.claimed = nil
}
