// Package pca9685 drives the PCA9685 16-channel, 12-bit PWM controller over
// I²C. One prescaler clocks all sixteen outputs, so the PWM frequency is a
// device-wide setting; duty cycle is per channel.
//
// The driver mirrors per-channel state (active flag, duty cycle, edge
// counters) in memory so queries never touch the bus. Mirrors are updated
// only after the corresponding register write succeeds; a failed write
// leaves the mirror at its last known-good value.
//
// The handle is synchronous and single-owner: every method completes its bus
// traffic in-line and no internal locking is performed. Serialise access from
// one goroutine/task.
package pca9685

import (
	"time"

	"tinygo.org/x/drivers"

	"hfdrivers-go/errcode"
	"hfdrivers-go/types"
)

// Compile-time check: the PCA9685 is one PWMController variant.
var _ types.PWMController = (*Device)(nil)

// OutputEnablePin is the optional discrete line wired to the chip's
// active-low OE input. The driver only sets logical levels; direction and
// electrical setup belong to the pin's owner.
type OutputEnablePin interface {
	ConfigureOutput(initial bool) error
	Set(level bool)
}

// busInitializer/busCloser are optional upgrades on the I²C transport.
// Host-side buses (e.g. /dev/i2c-*) implement them; MCU buses usually come
// pre-configured and don't.
type busInitializer interface{ Init() error }
type busCloser interface{ Close() error }

// Oscillator stabilisation after any SLEEP-bit clear; the part needs at
// least 500 µs before its outputs are trustworthy.
const oscStabilisation = 500 * time.Microsecond

// Settling time after a general-call software reset.
const resetSettle = time.Millisecond

// DefaultFrequency is programmed during Initialize.
const DefaultFrequency = 1000

type lifecycle uint8

const (
	stateUninitialized lifecycle = iota
	stateInitializing
	stateRunning
	stateSleeping
	stateDeinitialized // terminal; construct a fresh handle to start over
)

type channelState struct {
	active    bool
	dutyCycle float32
	onTime    uint16
	offTime   uint16
}

// Config carries construction-time options.
type Config struct {
	// Address defaults to AddressDefault if zero.
	Address uint16
	// OutputEnable is the optional OE line; nil means the pin is not wired
	// and SetOutputEnable reports not_supported.
	OutputEnable OutputEnablePin
}

// Device is a PCA9685 handle. It owns the channel-state mirror and borrows
// the bus and OE pin for the duration of each call.
type Device struct {
	bus  drivers.I2C
	addr uint16
	oe   OutputEnablePin

	state       lifecycle
	frequencyHz uint32
	prescale    uint8
	channels    [MaxChannels]channelState

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [1]byte
}

// New constructs a Device. It does not touch the bus; call Initialize.
func New(bus drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Device{
		bus:         bus,
		addr:        addr,
		oe:          cfg.OutputEnable,
		frequencyHz: DefaultFrequency,
	}
}

// Initialize brings the device to the Running state: transport init,
// general-call software reset, default frequency, totem-pole outputs, wake.
// Calling it on a Running device is a no-op. Any step failure reverts the
// handle to Uninitialized and returns that step's error.
func (d *Device) Initialize() error {
	switch d.state {
	case stateRunning:
		return nil
	case stateDeinitialized:
		return errcode.InvalidState
	}
	if d.bus == nil {
		return errcode.InvalidArgument
	}

	d.state = stateInitializing
	err := d.initSequence()
	if err != nil {
		d.state = stateUninitialized
		return err
	}
	d.state = stateRunning
	return nil
}

func (d *Device) initSequence() error {
	if b, ok := d.bus.(busInitializer); ok {
		if err := b.Init(); err != nil {
			return errcode.Wrap(errcode.HardwareError, "bus_init", err)
		}
	}

	// OE is active low: drive low so outputs follow the registers.
	if d.oe != nil {
		if err := d.oe.ConfigureOutput(false); err != nil {
			return errcode.Wrap(errcode.HardwareError, "oe_configure", err)
		}
	}

	if err := d.reset(); err != nil {
		return err
	}
	if err := d.programFrequency(d.frequencyHz); err != nil {
		return err
	}
	if err := d.writeRegister(regMode2, mode2OutDrv); err != nil {
		return err
	}
	return d.wake()
}

// Deinitialize stops every channel, puts the chip to sleep and releases the
// transport. It is best-effort: all steps run, the first error is returned,
// and the handle always ends Deinitialized (terminal).
func (d *Device) Deinitialize() error {
	if d.state != stateRunning && d.state != stateSleeping {
		return errcode.NotInitialized
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Force the "always off" code so hardware output state matches the
	// software state, not merely the active flags.
	for ch := uint8(0); ch < MaxChannels; ch++ {
		err := d.setChannelTiming(ch, 0, PWMMax)
		if err == nil {
			d.channels[ch].active = false
		}
		keep(err)
	}

	keep(d.assertSleep())

	if d.oe != nil {
		d.oe.Set(true) // disable outputs
	}
	if b, ok := d.bus.(busCloser); ok {
		keep(b.Close())
	}

	d.state = stateDeinitialized
	return firstErr
}

// Sleep stops the oscillator. Channel registers survive; outputs halt until
// Wakeup.
func (d *Device) Sleep() error {
	if !d.initialized() {
		return errcode.NotInitialized
	}
	if err := d.assertSleep(); err != nil {
		return err
	}
	d.state = stateSleeping
	return nil
}

// Wakeup restarts the oscillator and waits out the stabilisation time.
func (d *Device) Wakeup() error {
	if !d.initialized() {
		return errcode.NotInitialized
	}
	if err := d.wake(); err != nil {
		return err
	}
	d.state = stateRunning
	return nil
}

// SetOutputEnable drives the OE line: enabled pulls it low (outputs follow
// registers), disabled releases them high-impedance/off per MODE2.
func (d *Device) SetOutputEnable(enabled bool) error {
	if d.oe == nil {
		return errcode.NotSupported
	}
	d.oe.Set(!enabled)
	return nil
}

// ConfigureExternalClock switches the prescaler input to the EXTCLK pin.
// The datasheet makes this sticky: only a power cycle or software reset
// clears the bit again. Prescale maths keeps using the internal-oscillator
// constant; callers running exotic clocks must derive their own prescale.
func (d *Device) ConfigureExternalClock(externalClockHz uint32) error {
	if !d.initialized() {
		return errcode.NotInitialized
	}
	if externalClockHz == 0 {
		return errcode.InvalidArgument
	}
	return d.modifyRegister(regMode1, mode1ExtClk, 0)
}

// SetOutputDriver selects totem-pole (true) or open-drain (false) output
// structure.
func (d *Device) SetOutputDriver(totemPole bool) error {
	if !d.initialized() {
		return errcode.NotInitialized
	}
	if totemPole {
		return d.modifyRegister(regMode2, mode2OutDrv, 0)
	}
	return d.modifyRegister(regMode2, 0, mode2OutDrv)
}

// SetOutputInvert inverts the output logic state of every channel.
func (d *Device) SetOutputInvert(inverted bool) error {
	if !d.initialized() {
		return errcode.NotInitialized
	}
	if inverted {
		return d.modifyRegister(regMode2, mode2Invrt, 0)
	}
	return d.modifyRegister(regMode2, 0, mode2Invrt)
}

// MaxChannels reports the channel count; valid in every lifecycle state.
func (d *Device) MaxChannels() uint8 { return MaxChannels }

// Address returns the configured 7-bit bus address.
func (d *Device) Address() uint16 { return d.addr }

func (d *Device) initialized() bool {
	return d.state == stateRunning || d.state == stateSleeping
}

func (d *Device) running() bool { return d.state == stateRunning }

// assertSleep sets MODE1.SLEEP, stopping the oscillator.
func (d *Device) assertSleep() error {
	return d.modifyRegister(regMode1, mode1Sleep, 0)
}

// wake clears MODE1.SLEEP and blocks for the stabilisation time.
func (d *Device) wake() error {
	if err := d.modifyRegister(regMode1, 0, mode1Sleep); err != nil {
		return err
	}
	time.Sleep(oscStabilisation)
	return nil
}

// programFrequency runs the full prescaler sequence: sleep, write prescale,
// wake, stabilise. The prescale register latches only while the clock is
// stopped, hence the mandatory sleep. A mid-sequence bus failure is
// surfaced as-is and may leave the chip between steps; the caller decides
// whether to retry or re-initialise.
func (d *Device) programFrequency(frequencyHz uint32) error {
	prescale := CalculatePrescale(frequencyHz)

	mode1, err := d.readRegister(regMode1)
	if err != nil {
		return err
	}
	if err := d.writeRegister(regMode1, mode1|mode1Sleep); err != nil {
		return err
	}
	if err := d.writeRegister(regPreScale, prescale); err != nil {
		return err
	}
	if err := d.writeRegister(regMode1, mode1&^mode1Sleep); err != nil {
		return err
	}
	time.Sleep(oscStabilisation)

	d.frequencyHz = frequencyHz
	d.prescale = prescale
	return nil
}

// reset issues the general-call SWRST and zeroes the channel mirror.
func (d *Device) reset() error {
	if err := d.generalCall(swRstCommand); err != nil {
		return err
	}
	time.Sleep(resetSettle)
	for i := range d.channels {
		d.channels[i] = channelState{}
	}
	return nil
}
