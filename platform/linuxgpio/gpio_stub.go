//go:build !linux

package linuxgpio

import "hfdrivers-go/errcode"

type Pin struct{}

func RequestOutput(chipPath string, number int, initial bool, consumer string) (*Pin, error) {
	return nil, errcode.NotSupported
}

func FindOutput(number int, initial bool, consumer string) (*Pin, error) {
	return nil, errcode.NotSupported
}

func (p *Pin) Number() int                        { return 0 }
func (p *Pin) ConfigureOutput(initial bool) error { return errcode.NotSupported }
func (p *Pin) Set(level bool)                     {}
func (p *Pin) Get() bool                          { return false }
func (p *Pin) Close() error                       { return nil }
