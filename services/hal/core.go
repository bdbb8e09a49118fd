// Package hal exposes hardware devices as bus capabilities. A device is
// built from configuration by a registered Builder, announces its
// capabilities as retained info documents, and answers control messages on
// hal/cap/<domain>/<kind>/<name>/control/<method>.
package hal

import (
	"context"
	"fmt"
	"sync"

	"tinygo.org/x/drivers"

	"hfdrivers-go/errcode"
	"hfdrivers-go/types"
)

// ---- Capability & device model ----

type CapabilitySpec struct {
	Domain string
	Kind   types.Kind
	Name   string
	Info   types.Info
}

// Device is one managed hardware unit. Control is invoked from the HAL
// goroutine; devices must not touch the bus or spawn goroutines.
type Device interface {
	ID() string
	Capabilities() []CapabilitySpec
	Init(ctx context.Context) error
	Control(kind types.Kind, method string, payload any) (any, error)
	Close() error
}

// ---- Injected platform resources ----

// I2CBusFactory hands out configured I²C buses by id (e.g. "i2c0").
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// GPIOPin is the minimal output-capable pin handle devices consume.
type GPIOPin interface {
	Number() int
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

type Resources struct {
	Buses I2CBusFactory
	Pins  PinFactory
}

// ---- Builder registry ----

type BuilderInput struct {
	ID     string
	Type   string
	Params any
	Res    Resources
	// Mirrors the config BusRef shape without pulling the config package in.
	BusRef struct {
		Type string
		ID   string
	}
}

type Builder interface {
	Build(ctx context.Context, in BuilderInput) (Device, error)
}

var (
	regMu    sync.RWMutex
	builders = map[string]Builder{}
)

// RegisterBuilder installs a builder for a device type string. It panics on
// duplicates to catch mistakes at start-up.
func RegisterBuilder(typ string, b Builder) {
	regMu.Lock()
	defer regMu.Unlock()
	if typ == "" {
		panic("hal: empty device type for builder")
	}
	if _, exists := builders[typ]; exists {
		panic(fmt.Sprintf("hal: duplicate device builder: %s", typ))
	}
	builders[typ] = b
}

func lookupBuilder(typ string) (Builder, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	b, ok := builders[typ]
	return b, ok
}

// As asserts a payload to the concrete value type T. Pointers are not
// accepted. A nil payload is treated as the zero value of T.
func As[T any](v any) (T, errcode.Code) {
	var zero T
	if v == nil {
		return zero, ""
	}
	t, ok := v.(T)
	if !ok {
		return zero, errcode.InvalidPayload
	}
	return t, ""
}
