package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vigil/internal/doctor"
	"vigil/internal/ui"
)

// doctorEventCap comfortably holds every event one run can emit (two per
// check plus the success sentinel), so the pipeline never blocks on a
// consumer that quit early.
const doctorEventCap = 16

// startDoctor runs the pipeline in a goroutine and returns its event stream
// plus a channel delivering the run's outcome. The event channel is closed
// once the run finishes; abandoning it mid-stream is always safe.
func startDoctor(ctx context.Context, req *doctor.Request) (chan doctor.Event, <-chan error) {
	events := make(chan doctor.Event, doctorEventCap)
	outcomeCh := make(chan error, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = doctor.ChannelSink{Ch: events}
		outcomeCh <- doctor.Run(ctx, &reqCopy)
		close(events)
	}()
	return events, outcomeCh
}

// runDoctorWithUI executes the pipeline in a goroutine and feeds its events
// into the Bubble Tea renderer.
func runDoctorWithUI(ctx context.Context, title string, req *doctor.Request) error {
	if req == nil {
		return fmt.Errorf("missing doctor request")
	}
	events, outcomeCh := startDoctor(ctx, req)

	model := ui.NewDoctorModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// The renderer may quit early (interrupt, render error); drain whatever
	// it left behind so the pipeline can finish and report its outcome.
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return uiErr
	}
	return outcome
}
