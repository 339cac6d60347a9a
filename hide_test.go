package steg

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomGrid(r *rand.Rand, n int) PixelGrid {
	pixels := make(PixelGrid, n)
	for i := range pixels {
		pixels[i] = Pixel{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256))}
	}
	return pixels
}

func TestEmbedChannelOrder(t *testing.T) {
	pixels := PixelGrid{{0, 0, 0}, {255, 255, 255}, {10, 11, 12}}
	out, err := Embed(pixels, []uint8{1, 0, 1, 0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, PixelGrid{{1, 0, 1}, {254, 255, 254}, {10, 11, 12}}, out)
}

func TestEmbedPartialPixel(t *testing.T) {
	pixels := PixelGrid{{2, 4, 6}, {8, 10, 12}}
	out, err := Embed(pixels, []uint8{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, PixelGrid{{3, 5, 7}, {9, 10, 12}}, out)
}

func TestEmbedDoesNotMutateInput(t *testing.T) {
	pixels := randomGrid(rand.New(rand.NewSource(1)), 32)
	before := make(PixelGrid, len(pixels))
	copy(before, pixels)

	bits, err := EncodeText("abc")
	require.NoError(t, err)
	_, err = Embed(pixels, bits)
	require.NoError(t, err)
	assert.Equal(t, before, pixels)
}

func TestEmbedLSBIsolationAndTail(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	pixels := randomGrid(r, 100)

	bits, err := EncodeText("x" + Sentinel)
	require.NoError(t, err)
	out, err := Embed(pixels, bits)
	require.NoError(t, err)
	require.Len(t, out, len(pixels))

	for i := range pixels {
		for c := 0; c < int(channelsPerPixel); c++ {
			slot := i*int(channelsPerPixel) + c
			assert.Equal(t, pixels[i][c]>>1, out[i][c]>>1, "upper bits of pixel %d channel %d", i, c)
			if slot < len(bits) {
				assert.Equal(t, bits[slot], out[i][c]&1, "lsb of pixel %d channel %d", i, c)
			} else {
				assert.Equal(t, pixels[i][c], out[i][c], "untouched pixel %d channel %d", i, c)
			}
		}
	}
	// 56 bits end in the middle of pixel 18.
	assert.Equal(t, pixels[19:], out[19:])
}

func TestEmbedCapacityBoundary(t *testing.T) {
	// 16 pixels hold 48 bits: exactly the sentinel on its own.
	pixels := make(PixelGrid, 16)
	bits, err := EncodeText(Sentinel)
	require.NoError(t, err)
	require.Len(t, bits, 48)

	out, err := Embed(pixels, bits)
	require.NoError(t, err)
	message, found := Extract(out)
	assert.True(t, found)
	assert.Equal(t, "", message)

	out, err = Embed(pixels, append(bits, 1))
	assert.Nil(t, out)
	var capErr *InsufficientHidingSpotsError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(49), capErr.RequiredBits)
	assert.Equal(t, int64(48), capErr.AvailableBits)
}

func TestEmbedTooSmall(t *testing.T) {
	test := []struct {
		name      string
		pixels    int
		message   string
		required  int64
		available int64
	}{
		{"2x2_empty_message", 4, "", 48, 12},
		{"1x1_one_char", 1, "a", 56, 3},
		{"empty_grid", 0, "", 48, 0},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			bits, err := EncodeText(tt.message + Sentinel)
			require.NoError(t, err)
			_, err = Embed(make(PixelGrid, tt.pixels), bits)
			var capErr *InsufficientHidingSpotsError
			require.ErrorAs(t, err, &capErr)
			assert.Equal(t, tt.required, capErr.RequiredBits)
			assert.Equal(t, tt.available, capErr.AvailableBits)
		})
	}
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	alphabet := []rune("abcdefghijklmnopqrstuvwxyz ABC0123456789.,!?äöüßé\n\t")

	for _, n := range []int{16, 17, 100, 1000} {
		pixels := randomGrid(r, n)
		maxChars := int(pixels.Capacity())/int(bitsPerByte) - len(Sentinel)
		for _, length := range []int{0, maxChars / 2, maxChars} {
			msg := make([]rune, length)
			for i := range msg {
				msg[i] = alphabet[r.Intn(len(alphabet))]
			}

			bits, err := EncodeText(string(msg) + Sentinel)
			require.NoError(t, err)
			out, err := Embed(pixels, bits)
			require.NoError(t, err, "pixels %d, length %d", n, length)

			message, found := Extract(out)
			assert.True(t, found)
			assert.Equal(t, string(msg), message)
		}
	}
}

func TestHideRevealUniformGray(t *testing.T) {
	in := writeTestPNG(t, uniformRGBA(100, 100, color.RGBA{128, 128, 128, 255}))
	out := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, Hide(&HideConfig{ImagePath: in, OutPath: out, Message: "hi"}, OutputNone))

	message, found, err := Reveal(RevealConfig{ImagePath: out})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hi", message)
}

func TestHidePreservesImage(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	src := image.NewNRGBA(image.Rect(0, 0, 37, 23))
	for i := range src.Pix {
		src.Pix[i] = uint8(r.Intn(256))
		if i%4 == 3 {
			src.Pix[i] = 0xff
		}
	}
	in := writeTestPNG(t, src)
	out := filepath.Join(t.TempDir(), "out.png")

	const msg = "The quick brown fox jumps over the lazy dog"
	require.NoError(t, Hide(&HideConfig{ImagePath: in, OutPath: out, Message: msg}, OutputNone))

	before, beforeInfo, err := loadImage(in, OutputNone)
	require.NoError(t, err)
	after, afterInfo, err := loadImage(out, OutputNone)
	require.NoError(t, err)
	assert.Equal(t, beforeInfo.W, afterInfo.W)
	assert.Equal(t, beforeInfo.H, afterInfo.H)
	require.Len(t, after, len(before))

	used := (len(msg) + len(Sentinel)) * int(bitsPerByte)
	for i := range before {
		for c := 0; c < int(channelsPerPixel); c++ {
			assert.Equal(t, before[i][c]>>1, after[i][c]>>1)
		}
		if i*int(channelsPerPixel) >= used {
			assert.Equal(t, before[i], after[i])
		}
	}

	message, found := Extract(after)
	assert.True(t, found)
	assert.Equal(t, msg, message)
}

func TestHideMessageTooLong(t *testing.T) {
	in := writeTestPNG(t, uniformRGBA(2, 2, color.RGBA{0, 0, 0, 255}))
	out := filepath.Join(t.TempDir(), "out.png")

	err := Hide(&HideConfig{ImagePath: in, OutPath: out, Message: ""}, OutputNone)
	var capErr *InsufficientHidingSpotsError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(48), capErr.RequiredBits)
	assert.Equal(t, int64(12), capErr.AvailableBits)
	assert.NoFileExists(t, out)
}

func TestHideUnencodableMessage(t *testing.T) {
	in := writeTestPNG(t, uniformRGBA(50, 50, color.RGBA{1, 2, 3, 255}))
	out := filepath.Join(t.TempDir(), "out.png")

	err := Hide(&HideConfig{ImagePath: in, OutPath: out, Message: "こんにちは"}, OutputNone)
	var charErr *UnencodableCharError
	require.ErrorAs(t, err, &charErr)
	assert.Equal(t, 'こ', charErr.Char)
	assert.NoFileExists(t, out)
}

func TestHideInvalidConfig(t *testing.T) {
	test := []struct {
		name   string
		config HideConfig
	}{
		{"no_image", HideConfig{OutPath: "out.png", Message: "x"}},
		{"no_out", HideConfig{ImagePath: "in.png", Message: "x"}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			var formatErr *InvalidFormatError
			assert.ErrorAs(t, Hide(&tt.config, OutputNone), &formatErr)
		})
	}
}

func TestHideMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	err := Hide(&HideConfig{ImagePath: filepath.Join(dir, "missing.png"), OutPath: out, Message: "x"}, OutputNone)
	var ioErr *ImageIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "load", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, out)
}

func TestHideOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	in := writeTestPNG(t, uniformRGBA(10, 10, color.RGBA{9, 9, 9, 255}))
	out := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, Hide(&HideConfig{ImagePath: in, OutPath: out, Message: "a"}, OutputDebug))

	logged := buf.String()
	assert.Contains(t, logged, "Loading the image from")
	assert.Contains(t, logged, "Colour model: RGBA")
	assert.Contains(t, logged, "Message bits to write (including sentinel): 56")
	assert.Contains(t, logged, "addr: 0, pixel: 0, channel: 0")
	// 56 bits end in pixel 18 of a 10 pixel wide image.
	assert.Contains(t, logged, "The message ends in pixel (8, 1).")
	assert.Contains(t, logged, "All done!")

	buf.Reset()
	require.NoError(t, Hide(&HideConfig{ImagePath: in, OutPath: out, Message: "a"}, OutputNone))
	assert.Empty(t, buf.String())
}
