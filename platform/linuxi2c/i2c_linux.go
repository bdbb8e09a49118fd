//go:build linux

// Package linuxi2c adapts a /dev/i2c-* character device to the drivers.I2C
// transport the chip drivers consume. Transfers use the I2C_RDWR ioctl so a
// combined write+read gets a repeated start, which register reads require.
package linuxi2c

import (
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"

	"hfdrivers-go/errcode"
)

var _ drivers.I2C = (*Bus)(nil)

const (
	i2cMRd  = 0x0001
	i2cRdwr = 0x0707
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// Bus is one opened I2C adapter. It is not safe for concurrent transfers;
// one owner coordinates access.
type Bus struct {
	path string
	f    *os.File
}

// New prepares a handle without touching the device node. Drivers that
// probe for an Init upgrade on their transport will open it during their
// own initialisation.
func New(path string) *Bus { return &Bus{path: filepath.Clean(path)} }

// Open returns a ready bus in one call.
func Open(path string) (*Bus, error) {
	b := New(path)
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}

// Init opens the device node; calling it on an open bus is a no-op.
func (b *Bus) Init() error {
	if b.f != nil {
		return nil
	}
	f, err := os.OpenFile(b.path, os.O_RDWR, 0)
	if err != nil {
		return errcode.Wrap(errcode.HardwareError, "i2c_open", err)
	}
	b.f = f
	return nil
}

// Close releases the device node.
func (b *Bus) Close() error {
	if b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	if err != nil {
		return errcode.Wrap(errcode.HardwareError, "i2c_close", err)
	}
	return nil
}

// Tx performs a write, a read, or a combined write-then-read against addr.
// Address 0x00 is the general call and is passed through for broadcast
// commands such as SWRST.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if b.f == nil {
		return errcode.NotInitialized
	}
	if addr > 0x7F {
		return errcode.InvalidArgument
	}

	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{
			addr: addr,
			len:  uint16(len(w)),
			buf:  uintptr(unsafe.Pointer(&w[0])),
		})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{
			addr:  addr,
			flags: i2cMRd,
			len:   uint16(len(r)),
			buf:   uintptr(unsafe.Pointer(&r[0])),
		})
	}
	if len(msgs) == 0 {
		return nil
	}

	data := rdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, b.f.Fd(), uintptr(i2cRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return errcode.Wrap(errcode.HardwareError, "i2c_rdwr", errno)
	}
	return nil
}
