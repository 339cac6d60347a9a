package steg

import (
	"fmt"
	"strings"

	"github.com/stegcloak/stegcloak/internal/algos"
	"github.com/zedseven/binmani"
)

// Types

// RevealConfig stores the configuration options for the Reveal operation.
type RevealConfig struct {
	ImagePath   string      // The path on disk to a supported image.
	OutputLevel OutputLevel // The amount of output to provide.
}

// Primary method

// Reveal extracts a hidden text message from a provided image on disk.
// found is false when no Sentinel appears in the image's bits; that is not an error.
func Reveal(config RevealConfig) (message string, found bool, err error) {
	// Input validation
	if len(config.ImagePath) <= 0 {
		return "", false, &InvalidFormatError{"ImagePath is empty."}
	}

	printlnLvl(config.OutputLevel, OutputDebug, "This tool has been set to display debug output.")

	printlnLvl(config.OutputLevel, OutputSteps, fmt.Sprintf("Loading the image from '%v'...", config.ImagePath))
	pixels, info, err := loadImage(config.ImagePath, config.OutputLevel)
	if err != nil {
		printlnLvl(config.OutputLevel, OutputSteps, fmt.Sprintf("Unable to load the image at '%v'!", config.ImagePath))
		return "", false, err
	}

	printlnLvl(config.OutputLevel, OutputInfo,
		fmt.Sprintf("Image info:\n\tDimensions: %dx%d px\n\tColour model: %v\n\tMaximum readable bits: %d",
			info.W, info.H, colourModelToStr(info.Model), pixels.Capacity()))

	printlnLvl(config.OutputLevel, OutputSteps, "Reading the message from the image...")
	message, found = Extract(pixels)
	if found {
		printlnLvl(config.OutputLevel, OutputInfo, fmt.Sprintf("Found a %d character message.", len([]rune(message))))
	} else {
		printlnLvl(config.OutputLevel, OutputSteps, "No sentinel was found in the image.")
	}

	printlnLvl(config.OutputLevel, OutputSteps, "All done! c:")

	return message, found, nil
}

// Extract recovers the message hidden in pixels. found is false when there is none.
func Extract(pixels PixelGrid) (message string, found bool) {
	return FindMessage(DecodeBits(CollectBits(pixels)))
}

// CollectBits reads the least-significant bit of every channel, in R, G, B order across the grid.
// Every pixel contributes 3 bits, whether or not it holds part of a message.
func CollectBits(pixels PixelGrid) []uint8 {
	bits := make([]uint8, 0, pixels.Capacity())
	pos := algos.SequentialAddressor(pixels.Capacity())
	for {
		addr, err := pos()
		if err != nil {
			break
		}
		p, c := bitAddrToPC(addr)
		bits = append(bits, uint8(binmani.ReadFrom(uint16(pixels[p][c]), 0, 1)))
	}
	return bits
}

// FindMessage returns the text before the first Sentinel.
// A message that itself contains Sentinel is cut at that point.
func FindMessage(text string) (message string, found bool) {
	i := strings.Index(text, Sentinel)
	if i < 0 {
		return "", false
	}
	return text[:i], true
}
