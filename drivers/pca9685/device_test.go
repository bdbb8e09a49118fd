package pca9685

import (
	"errors"
	"testing"

	"hfdrivers-go/errcode"
)

func TestInitializeSequence(t *testing.T) {
	bus := newFakeBus()
	oe := &fakeOEPin{}
	dev := New(bus, Config{OutputEnable: oe})

	if err := dev.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if bus.inits != 1 {
		t.Fatalf("bus inits = %d, want 1", bus.inits)
	}
	if !oe.configured || oe.levels[0] != false {
		t.Fatalf("OE not driven low at init: %+v", oe)
	}

	// First bus transaction is the general-call software reset.
	if len(bus.writes) == 0 || bus.writes[0].addr != generalCallAddr {
		t.Fatalf("first write not general call: %+v", bus.writes)
	}
	if got := bus.writes[0].data; len(got) != 2 || got[0] != 0x00 || got[1] != swRstCommand {
		t.Fatalf("SWRST payload = %v", got)
	}

	// Default frequency lands in the prescaler.
	if got := bus.lastWrite(regPreScale); got != int(CalculatePrescale(DefaultFrequency)) {
		t.Fatalf("prescale = %d, want %d", got, CalculatePrescale(DefaultFrequency))
	}
	if bus.regs[regMode2]&mode2OutDrv == 0 {
		t.Fatalf("MODE2 OUTDRV not set: %#02x", bus.regs[regMode2])
	}
	if bus.regs[regMode1]&mode1Sleep != 0 {
		t.Fatalf("device left asleep: MODE1 = %#02x", bus.regs[regMode1])
	}

	if f, err := dev.GetFrequency(0); err != nil || f != DefaultFrequency {
		t.Fatalf("GetFrequency = %d, %v", f, err)
	}
}

func TestInitializeRunningIsNoop(t *testing.T) {
	dev, bus := newRunningDevice(t)
	if err := dev.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if len(bus.writes) != 0 {
		t.Fatalf("re-initialize touched the bus: %+v", bus.writes)
	}
}

func TestInitializeNilBus(t *testing.T) {
	dev := New(nil, Config{})
	if err := dev.Initialize(); !errcode.Is(err, errcode.InvalidArgument) {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
}

func TestInitializeFailureRevertsAndRetries(t *testing.T) {
	bus := newFakeBus()
	boom := errors.New("bus stuck")
	bus.failOn = func(addr uint16, w, r []byte) error {
		if addr == generalCallAddr {
			return boom
		}
		return nil
	}
	dev := New(bus, Config{})

	err := dev.Initialize()
	if !errcode.Is(err, errcode.HardwareError) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want hardware_error wrapping cause", err)
	}
	if _, err := dev.GetDutyCycle(0); !errcode.Is(err, errcode.NotInitialized) {
		t.Fatalf("handle not reverted: %v", err)
	}

	// The handle stays usable; a retry after the fault clears succeeds.
	bus.failOn = nil
	if err := dev.Initialize(); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestDeinitialize(t *testing.T) {
	bus := newFakeBus()
	oe := &fakeOEPin{}
	dev := New(bus, Config{OutputEnable: oe})
	if err := dev.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := dev.Start(3); err != nil {
		t.Fatalf("start: %v", err)
	}
	bus.writes = nil

	if err := dev.Deinitialize(); err != nil {
		t.Fatalf("deinitialize: %v", err)
	}

	// Every channel gets the "always off" code.
	for ch := uint8(0); ch < MaxChannels; ch++ {
		base := channelBase(ch)
		if bus.lastWrite(base+2) != 0xFF || bus.lastWrite(base+3) != 0x0F {
			t.Fatalf("channel %d not forced off: off=(%#02x,%#02x)",
				ch, bus.lastWrite(base+2), bus.lastWrite(base+3))
		}
	}
	if bus.regs[regMode1]&mode1Sleep == 0 {
		t.Fatalf("chip not asleep after deinit")
	}
	if oe.last() != true {
		t.Fatalf("OE not released high")
	}
	if bus.closes != 1 {
		t.Fatalf("bus closes = %d, want 1", bus.closes)
	}

	// Terminal: the handle cannot be revived.
	if err := dev.Initialize(); !errcode.Is(err, errcode.InvalidState) {
		t.Fatalf("re-init after deinit: %v, want invalid_state", err)
	}
	if err := dev.SetDutyCycle(0, 0.5); !errcode.Is(err, errcode.NotInitialized) {
		t.Fatalf("set duty after deinit: %v", err)
	}
	if err := dev.Deinitialize(); !errcode.Is(err, errcode.NotInitialized) {
		t.Fatalf("double deinit: %v", err)
	}
}

func TestSleepWakeGating(t *testing.T) {
	dev, bus := newRunningDevice(t)

	if err := dev.SetDutyCycle(2, 0.25); err != nil {
		t.Fatalf("set duty: %v", err)
	}
	if err := dev.Sleep(); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if bus.regs[regMode1]&mode1Sleep == 0 {
		t.Fatalf("SLEEP bit not set")
	}

	// Mutations are refused while sleeping; queries still answer from the
	// mirror.
	if err := dev.SetDutyCycle(2, 0.5); !errcode.Is(err, errcode.NotInitialized) {
		t.Fatalf("set duty while sleeping: %v", err)
	}
	if err := dev.Start(2); !errcode.Is(err, errcode.NotInitialized) {
		t.Fatalf("start while sleeping: %v", err)
	}
	if d, err := dev.GetDutyCycle(2); err != nil || d != 0.25 {
		t.Fatalf("GetDutyCycle while sleeping = %g, %v", d, err)
	}

	if err := dev.Wakeup(); err != nil {
		t.Fatalf("wakeup: %v", err)
	}
	if bus.regs[regMode1]&mode1Sleep != 0 {
		t.Fatalf("SLEEP bit still set after wake")
	}
	if err := dev.SetDutyCycle(2, 0.5); err != nil {
		t.Fatalf("set duty after wake: %v", err)
	}
}

func TestSetOutputEnable(t *testing.T) {
	bus := newFakeBus()
	oe := &fakeOEPin{}
	dev := New(bus, Config{OutputEnable: oe})
	if err := dev.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := dev.SetOutputEnable(false); err != nil || oe.last() != true {
		t.Fatalf("disable: err=%v level=%v", err, oe.last())
	}
	if err := dev.SetOutputEnable(true); err != nil || oe.last() != false {
		t.Fatalf("enable: err=%v level=%v", err, oe.last())
	}

	bare := New(newFakeBus(), Config{})
	if err := bare.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := bare.SetOutputEnable(true); !errcode.Is(err, errcode.NotSupported) {
		t.Fatalf("no OE pin: %v, want not_supported", err)
	}
}

func TestOutputModeBits(t *testing.T) {
	dev, bus := newRunningDevice(t)

	if err := dev.SetOutputInvert(true); err != nil {
		t.Fatalf("invert on: %v", err)
	}
	if bus.regs[regMode2]&mode2Invrt == 0 {
		t.Fatalf("INVRT not set: %#02x", bus.regs[regMode2])
	}
	// OUTDRV from init must survive the read-modify-write.
	if bus.regs[regMode2]&mode2OutDrv == 0 {
		t.Fatalf("OUTDRV lost: %#02x", bus.regs[regMode2])
	}

	if err := dev.SetOutputInvert(false); err != nil {
		t.Fatalf("invert off: %v", err)
	}
	if bus.regs[regMode2]&mode2Invrt != 0 {
		t.Fatalf("INVRT not cleared: %#02x", bus.regs[regMode2])
	}

	if err := dev.SetOutputDriver(false); err != nil {
		t.Fatalf("open drain: %v", err)
	}
	if bus.regs[regMode2]&mode2OutDrv != 0 {
		t.Fatalf("OUTDRV not cleared: %#02x", bus.regs[regMode2])
	}
}

func TestConfigureExternalClock(t *testing.T) {
	dev, bus := newRunningDevice(t)

	if err := dev.ConfigureExternalClock(0); !errcode.Is(err, errcode.InvalidArgument) {
		t.Fatalf("zero clock: %v", err)
	}
	if err := dev.ConfigureExternalClock(50_000_000); err != nil {
		t.Fatalf("extclk: %v", err)
	}
	if bus.regs[regMode1]&mode1ExtClk == 0 {
		t.Fatalf("EXTCLK not set: %#02x", bus.regs[regMode1])
	}
}

func TestMaxChannelsAndAddress(t *testing.T) {
	dev := New(newFakeBus(), Config{})
	if dev.MaxChannels() != 16 {
		t.Fatalf("MaxChannels = %d", dev.MaxChannels())
	}
	if dev.Address() != AddressDefault {
		t.Fatalf("Address = %#02x", dev.Address())
	}
	custom := New(newFakeBus(), Config{Address: 0x41})
	if custom.Address() != 0x41 {
		t.Fatalf("custom Address = %#02x", custom.Address())
	}
}
