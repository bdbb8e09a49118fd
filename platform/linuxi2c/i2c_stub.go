//go:build !linux

package linuxi2c

import (
	"tinygo.org/x/drivers"

	"hfdrivers-go/errcode"
)

var _ drivers.I2C = (*Bus)(nil)

type Bus struct{}

func New(path string) *Bus { return &Bus{} }

func Open(path string) (*Bus, error) { return nil, errcode.NotSupported }

func (b *Bus) Init() error                       { return errcode.NotSupported }
func (b *Bus) Close() error                      { return nil }
func (b *Bus) Tx(addr uint16, w, r []byte) error { return errcode.NotSupported }
