package steg

import (
	"fmt"
	"image/color"
)

const (
	bitsPerByte      uint8 = 8
	channelsPerPixel uint8 = 3
	// Sentinel marks the end of the hidden message. It is encoded like any other text.
	Sentinel   string = "<STOP>"
	VersionMax uint8  = 1
	VersionMid uint8  = 0
	VersionMin uint8  = 0
)

// Shared types

// Pixel is a single RGB pixel, channels in R, G, B order.
type Pixel [channelsPerPixel]uint8

// PixelGrid is the row-major pixel sequence of an image, top-left pixel first.
type PixelGrid []Pixel

// Capacity returns the number of bits that can be hidden in the grid, one per channel.
func (grid PixelGrid) Capacity() int64 {
	return int64(len(grid)) * int64(channelsPerPixel)
}

type imgInfo struct {
	W, H  int
	Model color.Model // The colour model of the source image, before normalization to RGB.
}

// Error types

// InvalidFormatError is returned when an operation's configuration is unusable.
type InvalidFormatError struct {
	ErrorDesc string
}

func (e *InvalidFormatError) Error() string {
	if len(e.ErrorDesc) > 0 {
		return e.ErrorDesc
	}
	return "The provided data is of an invalid format."
}

// InsufficientHidingSpotsError is returned when the message needs more bits than the image has channels.
// Nothing is embedded or written when it occurs.
type InsufficientHidingSpotsError struct {
	RequiredBits  int64
	AvailableBits int64
}

func (e *InsufficientHidingSpotsError) Error() string {
	return fmt.Sprintf("message too long for this image: it needs %d bits but only %d are available",
		e.RequiredBits, e.AvailableBits)
}

// UnencodableCharError is returned when the text holds a character outside the 8-bit range.
type UnencodableCharError struct {
	Char  rune
	Index int // Byte offset of the character in the text.
}

func (e *UnencodableCharError) Error() string {
	return fmt.Sprintf("character %q (U+%04X) at offset %d cannot be encoded in 8 bits", e.Char, e.Char, e.Index)
}

// ImageIOError is returned when an image cannot be read from or written to disk.
type ImageIOError struct {
	Op   string // "load" or "write"
	Path string
	Err  error
}

func (e *ImageIOError) Error() string {
	return fmt.Sprintf("unable to %s the image '%v': %v", e.Op, e.Path, e.Err)
}

func (e *ImageIOError) Unwrap() error {
	return e.Err
}

// Library methods

func Version() string {
	return fmt.Sprintf("%02d.%02d.%02d", VersionMax, VersionMid, VersionMin)
}

// Shared methods

// PC = Pixel, Channel
func bitAddrToPC(addr int64) (pix int64, channel uint8) {
	pix = addr / int64(channelsPerPixel)
	channel = uint8(addr % int64(channelsPerPixel))
	return
}

func posToXY(pos int64, w int) (x, y int) {
	x = int(pos % int64(w))
	y = int(pos / int64(w))
	return
}
