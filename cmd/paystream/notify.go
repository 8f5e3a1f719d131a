package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/KSimonJNR/paystream/types"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

func notifySuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

func notifyError(w io.Writer, err error) {
	var perr *types.Error
	if errors.As(err, &perr) {
		errorColor.Fprintf(w, "Error [%s]: %s\n", perr.Code, err)
		return
	}
	errorColor.Fprintf(w, "Error: %s\n", err)
}

func printField(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelColor.Sprintf("%-12s", label+":"), value)
}
