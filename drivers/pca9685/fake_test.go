package pca9685

import (
	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeBus)(nil)

type busWrite struct {
	addr uint16
	data []byte
}

// fakeBus is a scripted PCA9685-shaped transport: a 256-byte register file,
// a write log, and an injectable failure hook. Reads are served from the
// register file; a general-call SWRST restores power-on defaults.
type fakeBus struct {
	regs   [256]byte
	writes []busWrite
	inits  int
	closes int

	// failOn, when set, is consulted before every transaction.
	failOn func(addr uint16, w, r []byte) error
}

func newFakeBus() *fakeBus {
	f := &fakeBus{}
	f.powerOn()
	return f
}

// powerOn loads the datasheet reset values (MODE1 sleeping with ALLCALL,
// prescale for ~200 Hz).
func (f *fakeBus) powerOn() {
	f.regs = [256]byte{}
	f.regs[regMode1] = mode1Sleep | mode1AllCall
	f.regs[regPreScale] = 0x1E
}

func (f *fakeBus) Init() error  { f.inits++; return nil }
func (f *fakeBus) Close() error { f.closes++; return nil }

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	if f.failOn != nil {
		if err := f.failOn(addr, w, r); err != nil {
			return err
		}
	}

	if len(r) > 0 {
		if len(w) != 1 {
			panic("fakeBus: read without register select")
		}
		for i := range r {
			r[i] = f.regs[int(w[0])+i]
		}
		return nil
	}

	f.writes = append(f.writes, busWrite{addr, append([]byte(nil), w...)})

	if addr == generalCallAddr {
		if len(w) == 2 && w[1] == swRstCommand {
			f.powerOn()
		}
		return nil
	}
	if len(w) == 2 {
		f.regs[w[0]] = w[1]
	}
	return nil
}

// countWrites tallies logged device writes to one register.
func (f *fakeBus) countWrites(reg byte) int {
	n := 0
	for _, wr := range f.writes {
		if wr.addr != generalCallAddr && len(wr.data) == 2 && wr.data[0] == reg {
			n++
		}
	}
	return n
}

// lastWrite returns the value of the most recent write to reg, or -1.
func (f *fakeBus) lastWrite(reg byte) int {
	for i := len(f.writes) - 1; i >= 0; i-- {
		wr := f.writes[i]
		if wr.addr != generalCallAddr && len(wr.data) == 2 && wr.data[0] == reg {
			return int(wr.data[1])
		}
	}
	return -1
}

// fakeOEPin records OE line activity.
type fakeOEPin struct {
	configured bool
	levels     []bool
}

func (p *fakeOEPin) ConfigureOutput(initial bool) error {
	p.configured = true
	p.levels = append(p.levels, initial)
	return nil
}

func (p *fakeOEPin) Set(level bool) { p.levels = append(p.levels, level) }

func (p *fakeOEPin) last() bool { return p.levels[len(p.levels)-1] }

// newRunningDevice is the common fixture: a device brought to Running on a
// fresh fake bus, with the init-time write log cleared.
func newRunningDevice(t interface{ Fatalf(string, ...any) }) (*Device, *fakeBus) {
	bus := newFakeBus()
	dev := New(bus, Config{})
	if err := dev.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	bus.writes = nil
	return dev, bus
}
