package main

import (
	"strings"
	"testing"

	"vigil/internal/doctor"
)

func TestPlainSink(t *testing.T) {
	var b strings.Builder
	sink := plainSink{out: &b}

	sink.OnEvent(doctor.Event{Check: doctor.CheckTypeScript, Status: doctor.StatusRunning})
	sink.OnEvent(doctor.Event{Check: doctor.CheckTypeScript, Status: doctor.StatusCompleted})
	sink.OnEvent(doctor.Event{Check: doctor.CheckDependencies, Status: doctor.StatusFailed})
	sink.OnEvent(doctor.Event{Status: doctor.StatusSuccess})

	out := b.String()
	for _, want := range []string{
		"TypeScript version...",
		"ok TypeScript version",
		"failed Installed dependencies",
		"all checks passed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlainSink_QuietSkipsRunning(t *testing.T) {
	var b strings.Builder
	sink := plainSink{out: &b, quiet: true}

	sink.OnEvent(doctor.Event{Check: doctor.CheckTypeScript, Status: doctor.StatusRunning})
	if b.Len() != 0 {
		t.Errorf("quiet sink should drop running lines, got %q", b.String())
	}
}
