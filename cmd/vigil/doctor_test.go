package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"vigil/internal/doctor"
	"vigil/internal/schema"
	"vigil/internal/tsconfig"
)

// setupProject lays out a minimal healthy project on disk.
func setupProject(t *testing.T, schemaValue string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"package.json": `{
			"devDependencies": {
				"typescript": "^5.3.3",
				"@0no-co/graphqlsp": "^1.3.0",
				"gql.tada": "^1.2.1"
			}
		}`,
		"tsconfig.json": `{
			"compilerOptions": {
				"plugins": [{"name": "@0no-co/graphqlsp", "schema": ` + schemaValue + `}]
			}
		}`,
		"schema.graphql": "type Query { hello: String }",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func realRequest(dir string, sink doctor.Sink) *doctor.Request {
	return &doctor.Request{
		Dir:          dir,
		Requirements: doctor.DefaultRequirements(),
		Manifest:     manifestReader{},
		Config:       configResolver{},
		Schema: func(origin tsconfig.SchemaRef, rootPath string, headers map[string]string) doctor.SchemaLoader {
			return schema.New(origin, rootPath, schema.Options{Headers: headers})
		},
		Progress: sink,
	}
}

type eventRecorder struct {
	events []doctor.Event
}

func (r *eventRecorder) OnEvent(evt doctor.Event) { r.events = append(r.events, evt) }

func TestDoctor_EndToEnd_FileSchema(t *testing.T) {
	dir := setupProject(t, `"./schema.graphql"`)
	sink := &eventRecorder{}

	if err := doctor.Run(context.Background(), realRequest(dir, sink)); err != nil {
		t.Fatalf("doctor run failed: %v", err)
	}
	last := sink.events[len(sink.events)-1]
	if last.Status != doctor.StatusSuccess {
		t.Errorf("last event = %+v, want success sentinel", last)
	}
}

func TestDoctor_EndToEnd_URLSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"__schema": {"queryType": {"name": "Query"}, "types": [{"name": "Query"}]}}}`))
	}))
	defer server.Close()

	dir := setupProject(t, `"`+server.URL+`"`)
	if err := doctor.Run(context.Background(), realRequest(dir, &eventRecorder{})); err != nil {
		t.Fatalf("doctor run failed: %v", err)
	}
}

func TestDoctor_EndToEnd_MissingSchemaFile(t *testing.T) {
	dir := setupProject(t, `"./missing.graphql"`)

	err := doctor.Run(context.Background(), realRequest(dir, &eventRecorder{}))
	if err == nil {
		t.Fatal("expected failure for a missing schema file")
	}
	if !strings.Contains(err.Error(), "failed to load schema") {
		t.Errorf("error = %v, want schema-load failure", err)
	}
}

func newDoctorTestRoot() (*cobra.Command, *strings.Builder) {
	root := &cobra.Command{Use: "vigil"}
	root.PersistentFlags().String("color", "auto", "")
	root.PersistentFlags().Bool("quiet", false, "")
	root.AddCommand(doctorCmd)
	var out strings.Builder
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestDoctorCommand_FailureReturnsSentinel(t *testing.T) {
	dir := setupProject(t, `"./missing.graphql"`)
	root, out := newDoctorTestRoot()
	root.SetArgs([]string{"doctor", "--dir", dir, "--format", "json", "--ci"})

	err := root.Execute()
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("Execute error = %v, want errChecksFailed", err)
	}
	if !strings.Contains(out.String(), `"ok": false`) {
		t.Errorf("report should record the failure:\n%s", out.String())
	}
}

func TestDoctorCommand_SuccessJSON(t *testing.T) {
	dir := setupProject(t, `"./schema.graphql"`)
	root, out := newDoctorTestRoot()
	root.SetArgs([]string{"doctor", "--dir", dir, "--format", "json", "--ci"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), `"ok": true`) {
		t.Errorf("report should record success:\n%s", out.String())
	}
}
