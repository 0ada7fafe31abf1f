package encdec

import "fmt"

// FrameCfg describes the raw frames a producer emits.
type FrameCfg struct {
	Width  int
	Height int
}

func (f *FrameCfg) Validate() error {
	if f.Width < 1 {
		return fmt.Errorf("width must be at least 1")
	}
	if f.Height < 1 {
		return fmt.Errorf("height must be at least 1")
	}
	return nil
}

// CalcBufSize is the number of bytes one packed RGB frame occupies.
func (f *FrameCfg) CalcBufSize() int {
	return f.Width * f.Height * RGBChannels
}
