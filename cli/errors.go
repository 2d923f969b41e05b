package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	cperrors "github.com/opal-lang/colorprop/core/errors"
	"github.com/opal-lang/colorprop/runtime/compiler"
	"github.com/opal-lang/colorprop/runtime/parser"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "usage", "io", "config"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var pe *parser.ParseError
	var ce *CLIError
	switch {
	case errors.As(err, &pe):
		formatParseError(w, pe, useColor)
	case errors.As(err, &ce):
		formatCLIError(w, ce, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
		if path := pathOf(err); path != "" {
			_, _ = fmt.Fprintf(w, "%s\n", Colorize("  in "+path, ColorGray, useColor))
		}
	}
}

// formatParseError formats parse errors with location and suggestion
func formatParseError(w io.Writer, err *parser.ParseError, useColor bool) {
	loc := fmt.Sprintf("%d:%d", err.Position.Line, err.Position.Column)
	if err.Filename != "" {
		loc = err.Filename + ":" + loc
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", Colorize("Error: ", ColorRed, useColor), loc, err.Message)

	if err.Context != "" {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize("  Context: "+err.Context, ColorGray, useColor))
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize("  "+err.Suggestion, ColorYellow, useColor))
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

// FormatDiagnostics prints skipped declarations as warnings.
func FormatDiagnostics(w io.Writer, name string, diags []compiler.Diagnostic, useColor bool) {
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "%s%s:%d:%d: %s: %s\n",
			Colorize("Warning: ", ColorYellow, useColor),
			name, d.Position.Line, d.Position.Column, d.Context, d.Err)
	}
}

// pathOf returns the file a configuration error came from.
func pathOf(err error) string {
	var e *cperrors.Error
	if !errors.As(err, &e) || e.Kind != cperrors.ConfigError {
		return ""
	}
	path, _ := e.Context["path"].(string)
	return path
}
