package steg

import (
	"fmt"

	"github.com/stegcloak/stegcloak/internal/algos"
	"github.com/zedseven/binmani"
)

// HideConfig stores the configuration options for the Hide operation.
type HideConfig struct {
	// ImagePath is the path on disk to a supported image.
	ImagePath string
	// OutPath is the path on disk to write the output image. Its extension picks the format.
	OutPath string
	// Message is the text to hide. Every character must fit in 8 bits.
	Message string
}

// Hide hides a text message in a provided image on disk, and saves the result to a new image.
// The message is terminated by Sentinel. Nothing is written when the message does not fit.
func Hide(config *HideConfig, outputLevel OutputLevel) error {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return &InvalidFormatError{"ImagePath is empty."}
	}
	if len(config.OutPath) <= 0 {
		return &InvalidFormatError{"OutPath is empty."}
	}

	printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("StegCloak v%v.", Version()))
	printlnLvl(outputLevel, OutputDebug, "This tool has been set to display debug output.")

	printlnLvl(outputLevel, OutputSteps, "Encoding the message...")
	bits, err := EncodeText(config.Message + Sentinel)
	if err != nil {
		printlnLvl(outputLevel, OutputSteps, "The message contains characters that can't be hidden.")
		return err
	}
	printlnLvl(outputLevel, OutputInfo, "Message bits to write (including sentinel):", len(bits))

	printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Loading the image from '%v'...", config.ImagePath))
	pixels, info, err := loadImage(config.ImagePath, outputLevel)
	if err != nil {
		printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Unable to load the image at '%v'!", config.ImagePath))
		return err
	}

	printlnLvl(outputLevel, OutputInfo,
		fmt.Sprintf("Image info:\n\tDimensions: %dx%dpx\n\tColour model: %v\n\tMaximum writable bits: %d",
			info.W, info.H, colourModelToStr(info.Model), pixels.Capacity()))

	printlnLvl(outputLevel, OutputSteps, "Encoding the message into the image...")
	stegPixels, err := embed(pixels, bits, outputLevel)
	if err != nil {
		return err
	}

	if len(bits) > 0 {
		last, _ := bitAddrToPC(int64(len(bits) - 1))
		x, y := posToXY(last, info.W)
		printlnLvl(outputLevel, OutputInfo, fmt.Sprintf("The message ends in pixel (%d, %d).", x, y))
	}

	printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Writing the encoded image to '%v' now...", config.OutPath))
	if err = writeImage(stegPixels, info, config.OutPath, outputLevel); err != nil {
		printlnLvl(outputLevel, OutputSteps, "An error occurred while writing to the final image.")
		return err
	}

	printlnLvl(outputLevel, OutputSteps, "All done! c:")

	return nil
}

// Embed returns a copy of pixels with bits written to the least-significant bit of each channel,
// in R, G, B order across the grid. Pixels past the last bit are copied unchanged.
// If bits does not fit, an *InsufficientHidingSpotsError is returned and nothing is embedded.
func Embed(pixels PixelGrid, bits []uint8) (PixelGrid, error) {
	return embed(pixels, bits, OutputNone)
}

// Helper functions

func embed(pixels PixelGrid, bits []uint8, outputLevel OutputLevel) (PixelGrid, error) {
	required, available := int64(len(bits)), pixels.Capacity()
	if required > available {
		return nil, &InsufficientHidingSpotsError{RequiredBits: required, AvailableBits: available}
	}

	out := make(PixelGrid, len(pixels))
	copy(out, pixels)

	pos := algos.SequentialAddressor(available)
	for i := range bits {
		addr, err := pos()
		if err != nil {
			return nil, &InsufficientHidingSpotsError{RequiredBits: required, AvailableBits: available}
		}
		p, c := bitAddrToPC(addr)

		if outputLevel >= OutputDebug {
			printlnLvl(outputLevel, OutputDebug, fmt.Sprintf("addr: %d, pixel: %d, channel: %d, RGB: %v", addr, p, c, out[p]))
			printlnLvl(outputLevel, OutputDebug, fmt.Sprintf("\tWriting %d...", bits[i]&1))
		}

		out[p][c] = uint8(binmani.WriteTo(uint16(out[p][c]), 0, 1, uint16(bits[i]&1)))

		if outputLevel >= OutputDebug {
			printlnLvl(outputLevel, OutputDebug, fmt.Sprintf("\tChannel after: %#08b - %v", out[p][c], out[p]))
		}
	}

	return out, nil
}
