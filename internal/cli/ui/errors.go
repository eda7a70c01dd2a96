package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Detail       string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a message like:
//
//	❌ INVALID DOCUMENT: S003 at operations[0]
//	   Invalid json. Property kind wasn't specified
//
//	   → Get help: extmodel validate --help
func FormatError(opts ErrorOptions) string {
	var (
		b      strings.Builder
		header *color.Color
		body   *color.Color
		symbol string
	)
	switch opts.Level {
	case ErrorLevelWarning:
		header, body, symbol = newColor(opts.NoColor, color.FgYellow, color.Bold), newColor(opts.NoColor, color.FgYellow), "⚠️"
	case ErrorLevelInfo:
		header, body, symbol = newColor(opts.NoColor, color.FgCyan, color.Bold), newColor(opts.NoColor, color.FgCyan), "ℹ️"
	default:
		header, body, symbol = newColor(opts.NoColor, color.FgRed, color.Bold), newColor(opts.NoColor, color.FgRed), "❌"
	}

	if opts.Context != "" {
		header.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		header.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}
	if opts.Detail != "" {
		body.Fprintf(&b, "   %s\n", opts.Detail)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(opts.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := newColor(opts.NoColor, color.FgCyan)
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}
	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	return newColor(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// DocumentError reports a document that could not be read.
func DocumentError(location, message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "INVALID DOCUMENT",
		Problem: location,
		Detail:  message,
		HelpCommands: []string{
			"Check the document: extmodel validate <file>",
			"Get help: extmodel --help",
		},
		NoColor: noColor,
	})
}

// DocumentNotFoundError reports a name missing from the store.
func DocumentNotFoundError(name string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "DOCUMENT NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find extension '%s' in the store.", name),
		Suggestions: suggestions,
		HelpCommands: []string{
			"See stored extensions: extmodel store list",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat extmodel.yaml",
			"Get help: extmodel --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}
