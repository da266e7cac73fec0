package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vigil/internal/manifest"
	"vigil/internal/schema"
	"vigil/internal/semver"
	"vigil/internal/tsconfig"
)

// Packages the doctor validates.
const (
	PackageTypeScript = "typescript"
	PackageLSP        = "@0no-co/graphqlsp"
	PackageCore       = "gql.tada"
)

// Requirements holds the minimum version per checked package. Fixed for the
// process lifetime.
type Requirements struct {
	TypeScript string
	LSP        string
	Core       string
}

// DefaultRequirements returns the minimums the doctor enforces.
func DefaultRequirements() Requirements {
	return Requirements{
		TypeScript: "4.1.0",
		LSP:        "1.0.0",
		Core:       "1.0.0",
	}
}

func (r Requirements) forPackage(name string) string {
	switch name {
	case PackageTypeScript:
		return r.TypeScript
	case PackageLSP:
		return r.LSP
	case PackageCore:
		return r.Core
	}
	return ""
}

// ManifestReader reads the project's dependency declarations.
type ManifestReader interface {
	Read(dir string) (manifest.DependencyMap, error)
}

// ConfigResolver locates and parses the plugin configuration.
type ConfigResolver interface {
	Resolve(startDir string) (*tsconfig.Resolved, error)
	Parse(raw json.RawMessage) (*tsconfig.PluginConfig, error)
}

// SchemaLoader attempts to resolve the configured schema. A nil result with
// a nil error means the schema was absent.
type SchemaLoader interface {
	LoadIntrospection(ctx context.Context) (*schema.Result, error)
}

// LoaderFactory builds a SchemaLoader for a resolved configuration.
type LoaderFactory func(origin tsconfig.SchemaRef, rootPath string, headers map[string]string) SchemaLoader

// Request describes one doctor run. Collaborators are explicit so the
// pipeline stays a pure function of its inputs; in particular the CI signal
// is modeled as Delay == 0 rather than read from the environment here.
type Request struct {
	Dir          string
	Requirements Requirements
	Manifest     ManifestReader
	Config       ConfigResolver
	Schema       LoaderFactory
	Progress     Sink
	// Delay paces each check for perceptibility in a live display. It never
	// affects outcomes and zero disables it.
	Delay time.Duration
}

type runner struct {
	req *Request
}

// Run executes the ordered checks, emitting Running and Completed/Failed
// events to the progress sink as it goes. The first failing check emits its
// Failed event and aborts the run; the returned error is a *UserError or
// *ExternalError. On success the final Completed event carries Final=true,
// one StatusSuccess sentinel follows, and Run returns nil. No two checks
// ever overlap and no check is revisited.
func Run(ctx context.Context, req *Request) error {
	if req == nil {
		return fmt.Errorf("missing doctor request")
	}
	r := &runner{req: req}

	deps, err := r.checkTypeScript(ctx)
	if err != nil {
		return err
	}
	if err := r.checkDependencies(ctx, deps); err != nil {
		return err
	}
	cfg, root, err := r.checkConfig(ctx)
	if err != nil {
		return err
	}
	if err := r.checkSchema(ctx, cfg, root); err != nil {
		return err
	}
	r.emit(Event{Status: StatusSuccess})
	return nil
}

func (r *runner) emit(evt Event) {
	if r.req.Progress != nil {
		r.req.Progress.OnEvent(evt)
	}
}

func (r *runner) begin(ctx context.Context, check Check) error {
	r.emit(Event{Check: check, Status: StatusRunning})
	if r.req.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(r.req.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *runner) fail(check Check, err error) error {
	r.emit(Event{Check: check, Status: StatusFailed})
	return err
}

func (r *runner) complete(check Check, final bool) {
	r.emit(Event{Check: check, Status: StatusCompleted, Final: final})
}

func (r *runner) checkTypeScript(ctx context.Context) (manifest.DependencyMap, error) {
	if err := r.begin(ctx, CheckTypeScript); err != nil {
		return nil, err
	}
	deps, err := r.req.Manifest.Read(r.req.Dir)
	if err != nil {
		uerr := &UserError{
			Message: "package.json not found in the working directory",
			Hint:    "run vigil doctor from your project root",
		}
		var merr *manifest.ManifestError
		if errors.As(err, &merr) && !merr.NotFound {
			uerr.Message = "could not read package.json"
			uerr.Hint = "check the manifest for syntax errors"
		}
		return nil, r.fail(CheckTypeScript, uerr)
	}
	if err := r.requireCompliant(CheckTypeScript, deps, PackageTypeScript); err != nil {
		return nil, err
	}
	r.complete(CheckTypeScript, false)
	return deps, nil
}

func (r *runner) checkDependencies(ctx context.Context, deps manifest.DependencyMap) error {
	if err := r.begin(ctx, CheckDependencies); err != nil {
		return err
	}
	// Strictly ordered: the core library is never inspected when the
	// language-service plugin already failed.
	for _, name := range []string{PackageLSP, PackageCore} {
		if err := r.requireCompliant(CheckDependencies, deps, name); err != nil {
			return err
		}
	}
	r.complete(CheckDependencies, false)
	return nil
}

func (r *runner) requireCompliant(check Check, deps manifest.DependencyMap, name string) error {
	version, ok := deps.Lookup(name)
	if !ok {
		return r.fail(check, &UserError{
			Message: fmt.Sprintf("%s not found in dependencies", name),
			Hint:    fmt.Sprintf("install it with: npm install --save-dev %s", name),
		})
	}
	minimum := r.req.Requirements.forPackage(name)
	if !semver.Complies(version, minimum) {
		return r.fail(check, &UserError{
			Message: fmt.Sprintf("%s is out of date (found %s, needs at least %s)", name, version, minimum),
			Hint:    fmt.Sprintf("upgrade it with: npm install --save-dev %s@latest", name),
		})
	}
	return nil
}

func (r *runner) checkConfig(ctx context.Context) (*tsconfig.PluginConfig, string, error) {
	if err := r.begin(ctx, CheckConfig); err != nil {
		return nil, "", err
	}
	resolved, err := r.req.Config.Resolve(r.req.Dir)
	if err != nil {
		return nil, "", r.fail(CheckConfig, &ExternalError{
			Message: "could not find a tsconfig.json file",
			Cause:   err,
		})
	}
	cfg, err := r.req.Config.Parse(resolved.PluginRaw)
	if err != nil {
		return nil, "", r.fail(CheckConfig, &ExternalError{
			Message: "could not parse the plugin configuration",
			Cause:   err,
		})
	}
	if cfg.Schema.Empty() {
		return nil, "", r.fail(CheckConfig, &UserError{
			Message: "no schema option found in plugin configuration",
			Hint:    fmt.Sprintf("add a schema entry to the %q plugin in %s", tsconfig.PluginName, resolved.Path),
		})
	}
	r.complete(CheckConfig, false)
	return cfg, resolved.Root(), nil
}

func (r *runner) checkSchema(ctx context.Context, cfg *tsconfig.PluginConfig, root string) error {
	if err := r.begin(ctx, CheckSchema); err != nil {
		return err
	}
	loader := r.req.Schema(cfg.Schema, root, cfg.SchemaHeaders)
	result, err := loader.LoadIntrospection(ctx)
	if err != nil {
		return r.fail(CheckSchema, &ExternalError{
			Message: "failed to load schema",
			Cause:   err,
		})
	}
	if result == nil {
		return r.fail(CheckSchema, &UserError{
			Message: "failed to load schema",
			Hint:    "check that the schema option points at a reachable endpoint or existing files",
		})
	}
	r.complete(CheckSchema, true)
	return nil
}
