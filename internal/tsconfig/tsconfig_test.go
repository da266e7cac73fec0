package tsconfig

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestResolve_PluginBlock(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{
		"compilerOptions": {
			"strict": true,
			"plugins": [
				{"name": "other-plugin"},
				{"name": "@0no-co/graphqlsp", "schema": "./schema.graphql"}
			]
		}
	}`)

	resolved, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Path != filepath.Join(dir, FileName) {
		t.Errorf("Path = %q, want %q", resolved.Path, filepath.Join(dir, FileName))
	}
	cfg, err := ParsePluginConfig(resolved.PluginRaw)
	if err != nil {
		t.Fatalf("ParsePluginConfig failed: %v", err)
	}
	if diff := cmp.Diff(SchemaRef{"./schema.graphql"}, cfg.Schema); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `{
		"compilerOptions": {"plugins": [{"name": "@0no-co/graphqlsp", "schema": "api.graphql"}]}
	}`)
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	resolved, err := Resolve(nested)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Root() != root {
		t.Errorf("Root() = %q, want %q", resolved.Root(), root)
	}
}

func TestResolve_NotFound(t *testing.T) {
	// Relies on temp dirs never living under a tsconfig-bearing parent.
	_, err := Resolve(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve error = %v, want ErrNotFound", err)
	}
}

func TestResolve_NoPluginBlockResolvesEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"compilerOptions": {}}`)

	resolved, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	cfg, err := ParsePluginConfig(resolved.PluginRaw)
	if err != nil {
		t.Fatalf("ParsePluginConfig failed: %v", err)
	}
	if !cfg.Schema.Empty() {
		t.Errorf("expected empty schema ref, got %v", cfg.Schema)
	}
}

func TestResolve_GraphqlrcFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"compilerOptions": {}}`)
	writeFile(t, filepath.Join(dir, ".graphqlrc.yml"), "schema: https://api.example.com/graphql\n")

	resolved, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	cfg, err := ParsePluginConfig(resolved.PluginRaw)
	if err != nil {
		t.Fatalf("ParsePluginConfig failed: %v", err)
	}
	if !cfg.Schema.IsURL() {
		t.Errorf("expected URL schema ref, got %v", cfg.Schema)
	}
}

func TestResolve_InvalidTsconfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `{"compilerOptions": `)

	_, err := Resolve(dir)
	if err == nil {
		t.Fatal("expected error for invalid tsconfig")
	}
}

func TestParsePluginConfig_Invalid(t *testing.T) {
	if _, err := ParsePluginConfig(json.RawMessage(`{"schema": 42}`)); err == nil {
		t.Error("expected error for non-string schema option")
	}
	if _, err := ParsePluginConfig(nil); err == nil {
		t.Error("expected error for empty raw block")
	}
}

func TestSchemaRef_Forms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SchemaRef
	}{
		{"single string", `{"schema": "./a.graphql"}`, SchemaRef{"./a.graphql"}},
		{"array", `{"schema": ["a.graphql", "b.graphql"]}`, SchemaRef{"a.graphql", "b.graphql"}},
		{"blank string", `{"schema": "  "}`, nil},
		{"absent", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParsePluginConfig(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("ParsePluginConfig failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, cfg.Schema); diff != "" {
				t.Errorf("schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSchemaRef_IsURL(t *testing.T) {
	if !(SchemaRef{"https://example.com/graphql"}).IsURL() {
		t.Error("https ref should be a URL")
	}
	if (SchemaRef{"./schema.graphql"}).IsURL() {
		t.Error("file ref should not be a URL")
	}
	if (SchemaRef{"https://a", "https://b"}).IsURL() {
		t.Error("multiple refs are file globs, not a URL")
	}
}
