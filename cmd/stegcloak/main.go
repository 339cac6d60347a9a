package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	steg "github.com/stegcloak/stegcloak"
)

const usage = `stegcloak - hide text in the least-significant bits of an image

Usage:
  stegcloak hide <input_image> <output_image> <message>
  stegcloak reveal <input_image>
  stegcloak version
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Program entry point

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "hide":
		return runHide(args[1:], stdout, stderr)
	case "reveal":
		return runReveal(args[1:], stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "stegcloak %v\n", steg.Version())
		return exitOK
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "Unknown command %q.\n\n%v", args[0], usage)
		return exitUsage
	}
}

func runHide(args []string, stdout, stderr io.Writer) int {
	hideCmd := newCommand("hide", "<input_image> <output_image> <message>", stderr)
	if code, ok := parse(hideCmd, args, 3); !ok {
		return code
	}

	config := &steg.HideConfig{
		ImagePath: hideCmd.Arg(0),
		OutPath:   hideCmd.Arg(1),
		Message:   hideCmd.Arg(2),
	}
	if err := steg.Hide(config, steg.OutputNone); err != nil {
		return reportError(stderr, err)
	}

	fmt.Fprintf(stdout, "Message hidden successfully in %v\n", config.OutPath)
	return exitOK
}

func runReveal(args []string, stdout, stderr io.Writer) int {
	revealCmd := newCommand("reveal", "<input_image>", stderr)
	if code, ok := parse(revealCmd, args, 1); !ok {
		return code
	}

	message, found, err := steg.Reveal(steg.RevealConfig{ImagePath: revealCmd.Arg(0), OutputLevel: steg.OutputNone})
	if err != nil {
		return reportError(stderr, err)
	}

	if !found {
		fmt.Fprintln(stdout, "No hidden message found or message corrupted (missing delimiter).")
		return exitOK
	}
	fmt.Fprintln(stdout, "Hidden Message Found:")
	fmt.Fprintln(stdout, message)
	return exitOK
}

// Helper functions

func newCommand(name, positional string, stderr io.Writer) *flag.FlagSet {
	cmd := flag.NewFlagSet(name, flag.ContinueOnError)
	cmd.SetOutput(stderr)
	cmd.Usage = func() {
		fmt.Fprintf(stderr, "Usage: stegcloak %v %v\n", name, positional)
	}
	return cmd
}

// parse reports whether the command may run, and the exit code to use when it may not.
func parse(cmd *flag.FlagSet, args []string, nArgs int) (int, bool) {
	if err := cmd.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	if cmd.NArg() != nArgs {
		cmd.Usage()
		return exitUsage, false
	}
	return exitOK, true
}

func reportError(stderr io.Writer, err error) int {
	var capErr *steg.InsufficientHidingSpotsError
	if errors.As(err, &capErr) {
		fmt.Fprintln(stderr, "Error: Message too long for this image.", fmt.Sprintf("(%d bits needed, %d available)",
			capErr.RequiredBits, capErr.AvailableBits))
		return exitError
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}
