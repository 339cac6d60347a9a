package steg

import (
	"strings"
	"unicode/utf8"

	"github.com/zedseven/binmani"
)

const maxEncodableChar rune = 1<<bitsPerByte - 1

// EncodeText converts text to bits, 8 per character, most-significant bit first.
// Every character must have a code point of at most 255.
func EncodeText(text string) ([]uint8, error) {
	bits := make([]uint8, 0, utf8.RuneCountInString(text)*int(bitsPerByte))
	for i, c := range text {
		if c > maxEncodableChar {
			return nil, &UnencodableCharError{Char: c, Index: i}
		}
		for j := uint8(0); j < bitsPerByte; j++ {
			bits = append(bits, uint8(binmani.ReadFrom(uint16(c), bitsPerByte-j-1, 1)))
		}
	}
	return bits, nil
}

// DecodeBits converts bits back to text, reading them in groups of 8, most-significant bit first.
// Each group becomes the character with that code point. A trailing group shorter than 8 bits is dropped.
func DecodeBits(bits []uint8) string {
	var sb strings.Builder
	n := len(bits) / int(bitsPerByte)
	sb.Grow(n)
	for i := 0; i < n; i++ {
		var c uint16
		for j := uint8(0); j < bitsPerByte; j++ {
			c = binmani.WriteTo(c, bitsPerByte-j-1, 1, uint16(bits[i*int(bitsPerByte)+int(j)]&1))
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
