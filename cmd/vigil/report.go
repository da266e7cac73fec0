package main

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"vigil/internal/doctor"
)

type reportCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type reportError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

type runReport struct {
	RunID     string        `json:"run_id"`
	Dir       string        `json:"dir"`
	OK        bool          `json:"ok"`
	Checks    []reportCheck `json:"checks"`
	Error     *reportError  `json:"error,omitempty"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// recordingSink keeps every event for the JSON report.
type recordingSink struct {
	events []doctor.Event
}

func (s *recordingSink) OnEvent(evt doctor.Event) { s.events = append(s.events, evt) }

func buildReport(dir string, events []doctor.Event, runErr error, elapsed time.Duration) runReport {
	report := runReport{
		RunID:     uuid.NewString(),
		Dir:       dir,
		OK:        runErr == nil,
		ElapsedMS: elapsed.Milliseconds(),
	}
	statuses := make(map[doctor.Check]string, len(doctor.Checks))
	for _, evt := range events {
		if evt.Status == doctor.StatusSuccess {
			continue
		}
		label := "running"
		switch evt.Status {
		case doctor.StatusCompleted:
			label = "ok"
		case doctor.StatusFailed:
			label = "failed"
		}
		statuses[evt.Check] = label
	}
	for _, check := range doctor.Checks {
		status, ok := statuses[check]
		if !ok {
			status = "skipped"
		}
		report.Checks = append(report.Checks, reportCheck{Name: check.String(), Status: status})
	}
	if runErr != nil {
		report.Error = describeError(runErr)
	}
	return report
}

func describeError(err error) *reportError {
	var uerr *doctor.UserError
	if errors.As(err, &uerr) {
		return &reportError{Kind: "user", Message: uerr.Message, Hint: uerr.Hint}
	}
	var xerr *doctor.ExternalError
	if errors.As(err, &xerr) {
		out := &reportError{Kind: "external", Message: xerr.Message}
		if xerr.Cause != nil {
			out.Cause = xerr.Cause.Error()
		}
		return out
	}
	return &reportError{Kind: "internal", Message: err.Error()}
}

func renderReportJSON(out io.Writer, report runReport) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
