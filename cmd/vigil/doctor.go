package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vigil/internal/doctor"
	"vigil/internal/manifest"
	"vigil/internal/schema"
	"vigil/internal/tsconfig"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate the GraphQL development environment",
	Long:  `Run the ordered environment checks: package versions, plugin configuration, and schema availability. The first failure stops the run.`,
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().String("dir", ".", "project directory to check")
	doctorCmd.Flags().String("ui", "auto", "live progress display (auto|on|off)")
	doctorCmd.Flags().Int("delay", 250, "pacing delay per check in milliseconds")
	doctorCmd.Flags().Bool("ci", false, "non-interactive mode: plain output, no pacing delay")
	doctorCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	doctorCmd.Flags().Bool("schema-cache", false, "cache URL introspection results on disk")
}

type manifestReader struct{}

func (manifestReader) Read(dir string) (manifest.DependencyMap, error) {
	return manifest.Read(dir)
}

type configResolver struct{}

func (configResolver) Resolve(startDir string) (*tsconfig.Resolved, error) {
	return tsconfig.Resolve(startDir)
}

func (configResolver) Parse(raw json.RawMessage) (*tsconfig.PluginConfig, error) {
	return tsconfig.ParsePluginConfig(raw)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return fmt.Errorf("failed to get dir flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	delayMS, err := cmd.Flags().GetInt("delay")
	if err != nil {
		return fmt.Errorf("failed to get delay flag: %w", err)
	}
	ciFlag, err := cmd.Flags().GetBool("ci")
	if err != nil {
		return fmt.Errorf("failed to get ci flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("schema-cache")
	if err != nil {
		return fmt.Errorf("failed to get schema-cache flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}

	if delayMS < 0 {
		return fmt.Errorf("invalid --delay value %d (must be >= 0)", delayMS)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	// vigil.toml supplies defaults; explicit flags win.
	if cfg, ok, err := loadToolConfig(dir); err != nil {
		return err
	} else if ok {
		if cfg.Doctor.UI != "" && !cmd.Flags().Changed("ui") {
			uiValue = cfg.Doctor.UI
		}
		if cfg.Doctor.DelayMS > 0 && !cmd.Flags().Changed("delay") {
			d, err := cfg.delay()
			if err != nil {
				return err
			}
			delayMS = int(d / time.Millisecond)
		}
		if cfg.Doctor.SchemaCache && !cmd.Flags().Changed("schema-cache") {
			useCache = true
		}
	}

	// The CI signal is resolved here, once, and handed to the pipeline as an
	// explicit zero delay.
	ci := ciFlag || os.Getenv("CI") != ""
	delay := time.Duration(delayMS) * time.Millisecond
	if ci {
		delay = 0
	}

	display, err := resolveDisplay(uiValue, ci)
	if err != nil {
		return err
	}

	var cache *schema.Cache
	if useCache {
		cache, err = schema.OpenCache("vigil")
		if err != nil {
			// Best effort: a broken cache dir should not fail the doctor.
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: schema cache disabled: %v\n", err)
			}
			cache = nil
		}
	}

	req := &doctor.Request{
		Dir:          dir,
		Requirements: doctor.DefaultRequirements(),
		Manifest:     manifestReader{},
		Config:       configResolver{},
		Schema: func(origin tsconfig.SchemaRef, rootPath string, headers map[string]string) doctor.SchemaLoader {
			return schema.New(origin, rootPath, schema.Options{Headers: headers, Cache: cache})
		},
		Delay: delay,
	}

	ctx := cmd.Context()
	var runErr error
	switch {
	case format == "json":
		sink := &recordingSink{}
		req.Progress = sink
		start := time.Now()
		runErr = doctor.Run(ctx, req)
		report := buildReport(dir, sink.events, runErr, time.Since(start))
		if err := renderReportJSON(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	case display == displayTUI:
		runErr = runDoctorWithUI(ctx, "vigil doctor", req)
		if runErr != nil {
			renderFailure(os.Stderr, runErr)
		}
	default:
		req.Progress = plainSink{out: cmd.OutOrStdout(), quiet: quiet}
		runErr = doctor.Run(ctx, req)
		if runErr != nil {
			renderFailure(os.Stderr, runErr)
		}
	}

	if runErr != nil {
		// Suppress cobra usage output; the failure is already rendered.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errChecksFailed
	}
	return nil
}

// errChecksFailed only carries the non-zero exit code; the failure itself is
// rendered before it is returned.
var errChecksFailed = errors.New("doctor checks failed")

var (
	failureColor = color.New(color.FgRed, color.Bold)
	hintColor    = color.New(color.FgYellow)
)

func renderFailure(out io.Writer, err error) {
	desc := describeError(err)
	fmt.Fprintf(out, "%s %s\n", failureColor.Sprint("error:"), desc.Message)
	if desc.Cause != "" {
		fmt.Fprintf(out, "  caused by: %s\n", desc.Cause)
	}
	if desc.Hint != "" {
		fmt.Fprintf(out, "%s %s\n", hintColor.Sprint("hint:"), desc.Hint)
	}
}
