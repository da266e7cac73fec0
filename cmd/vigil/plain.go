package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"vigil/internal/doctor"
)

// plainSink renders events as one line per state change, for non-TTY runs
// and CI logs.
type plainSink struct {
	out   io.Writer
	quiet bool
}

var (
	plainRunning = color.New(color.FgCyan)
	plainOK      = color.New(color.FgGreen)
	plainFailed  = color.New(color.FgRed, color.Bold)
	plainDone    = color.New(color.FgGreen, color.Bold)
)

func (s plainSink) OnEvent(evt doctor.Event) {
	switch evt.Status {
	case doctor.StatusRunning:
		if !s.quiet {
			fmt.Fprintf(s.out, "%s %s...\n", plainRunning.Sprint("*"), evt.Check)
		}
	case doctor.StatusCompleted:
		fmt.Fprintf(s.out, "%s %s\n", plainOK.Sprint("ok"), evt.Check)
	case doctor.StatusFailed:
		fmt.Fprintf(s.out, "%s %s\n", plainFailed.Sprint("failed"), evt.Check)
	case doctor.StatusSuccess:
		fmt.Fprintf(s.out, "%s\n", plainDone.Sprint("all checks passed"))
	}
}
