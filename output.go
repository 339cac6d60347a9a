package steg

import (
	"fmt"
	"io"
	"os"
)

// OutputLevel is the amount of progress output an operation provides.
type OutputLevel uint8

const (
	OutputNone  OutputLevel = iota // No output at all.
	OutputSteps                    // The major steps of the operation.
	OutputInfo                     // Steps plus image and payload details.
	OutputDebug                    // Everything, including every channel write.
)

var outputWriter io.Writer = os.Stderr

// SetOutput sets the destination of progress output. The default is os.Stderr.
func SetOutput(w io.Writer) {
	outputWriter = w
}

func printlnLvl(current, required OutputLevel, a ...interface{}) {
	if current < required {
		return
	}
	fmt.Fprintln(outputWriter, a...)
}
