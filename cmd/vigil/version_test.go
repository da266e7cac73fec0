package main

import (
	"strings"
	"testing"
)

func TestCollectVersionPayload(t *testing.T) {
	payload := collectVersionPayload(false)
	if payload.Tool != "vigil" {
		t.Errorf("Tool = %q, want vigil", payload.Tool)
	}
	if payload.Version == "" {
		t.Error("Version should never be empty")
	}
	if payload.GitCommit != "" || payload.BuildDate != "" {
		t.Error("build metadata should only appear with --full")
	}

	full := collectVersionPayload(true)
	if full.GitCommit == "" || full.BuildDate == "" {
		t.Error("full payload should report metadata, or \"unknown\" when unset")
	}
}

func TestRenderVersionPretty(t *testing.T) {
	var b strings.Builder
	renderVersionPretty(&b, versionPayload{Tool: "vigil", Version: "1.2.3", GitCommit: "abc123"})
	out := b.String()
	if !strings.Contains(out, "vigil 1.2.3") {
		t.Errorf("output missing version line:\n%s", out)
	}
	if !strings.Contains(out, "commit: abc123") {
		t.Errorf("output missing commit line:\n%s", out)
	}
}
