package encdec

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"image/color"
	"image/draw"
)

// RGBChannels is the only channel count the viewer renders.
const RGBChannels = 3

// Frame is packed 8-bit RGB, rows top to bottom, no padding.
type Frame struct {
	Pixels   []byte
	Width    int
	Height   int
	Channels int
}

// MalformedFrameError reports a buffer whose length does not match its
// declared dimensions.
type MalformedFrameError struct {
	Width    int
	Height   int
	Channels int
	Len      int
}

func (e *MalformedFrameError) Error() string {
	if !dimensionsFit(e.Width, e.Height, e.Channels) {
		return fmt.Sprintf(
			"malformed frame: %dx%d with %d channels is not a valid size, got %d bytes",
			e.Width, e.Height, e.Channels, e.Len,
		)
	}
	return fmt.Sprintf(
		"malformed frame: %dx%d with %d channels needs %d bytes but got %d",
		e.Width, e.Height, e.Channels, e.Width*e.Height*e.Channels, e.Len,
	)
}

// dimensionsFit reports whether the sizes are positive, fit a GL texture
// dimension and multiply without overflowing int.
func dimensionsFit(width, height, channels int) bool {
	if width <= 0 || height <= 0 || channels <= 0 {
		return false
	}
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return false
	}
	return width <= math.MaxInt/height/channels
}

// Validate checks the frame invariant len(pixels) == width*height*channels.
func Validate(pixels []byte, channels, width, height int) error {
	if channels != RGBChannels || !dimensionsFit(width, height, channels) ||
		width > len(pixels)/height/channels || len(pixels) != width*height*channels {
		return &MalformedFrameError{Width: width, Height: height, Channels: channels, Len: len(pixels)}
	}
	return nil
}

func (f *Frame) Validate() error {
	return Validate(f.Pixels, f.Channels, f.Width, f.Height)
}

// Clone returns a frame that does not share memory with f.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Pixels = make([]byte, len(f.Pixels))
	copy(c.Pixels, f.Pixels)
	return &c
}

// FrameFromImage converts any image into a packed RGB frame, dropping alpha.
// into.Pixels is reused when it already has the right size.
func FrameFromImage(img image.Image, into *Frame) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	n := w * h * RGBChannels
	if len(into.Pixels) != n {
		into.Pixels = make([]byte, n)
	}
	into.Width = w
	into.Height = h
	into.Channels = RGBChannels

	src := nrgba.Pix
	dst := into.Pixels
	for i, j := 0, 0; j < n; i, j = i+4, j+3 {
		dst[j] = src[i]
		dst[j+1] = src[i+1]
		dst[j+2] = src[i+2]
	}
}

// DecodeRGBfromImage decodes an encoded still (png, jpeg, whatever is
// registered with package image) into a frame.
func DecodeRGBfromImage(buf []byte, into *Frame) error {
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return err
	}
	FrameFromImage(img, into)
	return nil
}

// Image wraps the frame as an opaque image. The pixels are copied.
func (f *Frame) Image() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	n := f.Width * f.Height * RGBChannels
	for i, j := 0, 0; i < n; i, j = i+3, j+4 {
		img.Pix[j] = f.Pixels[i]
		img.Pix[j+1] = f.Pixels[i+1]
		img.Pix[j+2] = f.Pixels[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Fill paints the whole frame in one colour.
func (f *Frame) Fill(c color.RGBA) {
	for i := 0; i+2 < len(f.Pixels); i += RGBChannels {
		f.Pixels[i] = c.R
		f.Pixels[i+1] = c.G
		f.Pixels[i+2] = c.B
	}
}
