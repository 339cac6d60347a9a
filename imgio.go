package steg

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register the WebP decoder
)

const nrgbaChannels = 4

// Primary methods

func loadImage(imgPath string, outputLevel OutputLevel) (PixelGrid, imgInfo, error) {
	img, err := imaging.Open(imgPath)
	if err != nil {
		printlnLvl(outputLevel, OutputSteps, "The image couldn't be opened or decoded:", err.Error())
		return nil, imgInfo{}, &ImageIOError{Op: "load", Path: imgPath, Err: err}
	}

	pixels, info := readPixels(img)
	return pixels, info, nil
}

func writeImage(pixels PixelGrid, info imgInfo, outPath string, outputLevel OutputLevel) (err error) {
	if len(pixels) != info.W*info.H {
		return &ImageIOError{Op: "write", Path: outPath,
			Err: fmt.Errorf("%d pixels do not fill a %dx%d image", len(pixels), info.W, info.H)}
	}

	format, err := imaging.FormatFromFilename(outPath)
	if err != nil {
		printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Unsupported output format for '%v'.", outPath))
		return &ImageIOError{Op: "write", Path: outPath, Err: err}
	}
	if isLossy(format) {
		printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Warning: %v output is lossy and will likely destroy the hidden message.", format))
	}

	img := image.NewNRGBA(image.Rect(0, 0, info.W, info.H))
	updatePixWithPixels(img.Pix, pixels)

	// The image is written beside the destination and only renamed into place once fully encoded.
	f, err := os.CreateTemp(filepath.Dir(outPath), "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("There was an error creating a file beside '%v'.", outPath))
		return &ImageIOError{Op: "write", Path: outPath, Err: err}
	}
	tmpPath := f.Name()

	defer func() {
		if err != nil {
			f.Close()
			if rerr := os.Remove(tmpPath); rerr != nil && !os.IsNotExist(rerr) {
				printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("Error removing the file '%v': %v", tmpPath, rerr.Error()))
			}
			err = &ImageIOError{Op: "write", Path: outPath, Err: err}
		}
	}()

	if err = imaging.Encode(f, img, format, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		printlnLvl(outputLevel, OutputSteps, "There was an error encoding the image to the new file.")
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, outPath); err != nil {
		printlnLvl(outputLevel, OutputSteps, fmt.Sprintf("There was an error moving the image into place at '%v'.", outPath))
		return err
	}

	return nil
}

// Helper functions

// readPixels normalizes any colour model to 8-bit RGB. Alpha is dropped without compositing.
func readPixels(img image.Image) (PixelGrid, imgInfo) {
	info := imgInfo{Model: img.ColorModel()}

	nrgba := imaging.Clone(img)
	info.W, info.H = nrgba.Rect.Dx(), nrgba.Rect.Dy()

	pixels := make(PixelGrid, 0, info.W*info.H)
	for y := 0; y < info.H; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+info.W*nrgbaChannels]
		for x := 0; x < info.W; x++ {
			i := x * nrgbaChannels
			pixels = append(pixels, Pixel{row[i], row[i+1], row[i+2]})
		}
	}
	return pixels, info
}

func updatePixWithPixels(pix []uint8, pixels PixelGrid) {
	for i, p := range pixels {
		copy(pix[i*nrgbaChannels:], p[:])
		pix[i*nrgbaChannels+int(channelsPerPixel)] = 0xff
	}
}

func isLossy(format imaging.Format) bool {
	return format == imaging.JPEG || format == imaging.GIF
}

func colourModelToStr(model color.Model) string {
	switch model {
	case color.Alpha16Model:
		return "Alpha16"
	case color.AlphaModel:
		return "Alpha"
	case color.CMYKModel:
		return "CMYK"
	case color.Gray16Model:
		return "Gray16"
	case color.GrayModel:
		return "Gray"
	case color.NRGBA64Model:
		return "NRGBA64"
	case color.NRGBAModel:
		return "NRGBA"
	case color.RGBA64Model:
		return "RGBA64"
	case color.RGBAModel:
		return "RGBA"
	case color.NYCbCrAModel:
		return "NYCbCrA"
	case color.YCbCrModel:
		return "YCbCr"
	}
	if _, ok := model.(color.Palette); ok {
		return "Paletted"
	}
	return "<Unknown>"
}
