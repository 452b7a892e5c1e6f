// Package ui provides colored console output for pipegen commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
)

// ConfigureColor disables color when disable is set or stdout is not a terminal.
func ConfigureColor(disable bool) {
	if disable || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
}

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Printf("✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Printf("✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Printf("⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Printf(format+"\n", args...)
}

// Step prints a numbered step in cyan.
func Step(n int, format string, args ...any) {
	Cyan.Printf("[%d] ", n)
	fmt.Fprintf(color.Output, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Printf(format+"\n", args...)
}

// Wrote reports a generated pipeline file.
func Wrote(path string, jobs int) {
	Green.Printf("✓ wrote %s (%d jobs)\n", path, jobs)
}

// Diff writes a unified-style diff, coloring added and removed lines.
func Diff(w io.Writer, diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		marker := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(marker, "+"):
			Green.Fprint(w, line)
		case strings.HasPrefix(marker, "-"):
			Red.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}
