package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vigil/internal/tsconfig"
)

// introspectionQuery is the minimal query vigil needs: enough to tell a live
// schema from an empty or broken endpoint.
const introspectionQuery = `query VigilIntrospection { __schema { queryType { name } types { name } } }`

// Result is what a reachable schema looks like to the doctor. A nil Result
// with a nil error means the schema was absent (endpoint answered with no
// data, or the file set was empty).
type Result struct {
	Source    string
	TypeCount int
	SDL       string
}

// Options tune a Loader. The zero value is usable.
type Options struct {
	Headers map[string]string
	Client  *http.Client
	Cache   *Cache
}

// Loader resolves a schema reference against a project root.
type Loader struct {
	origin tsconfig.SchemaRef
	root   string
	opts   Options
}

// New builds a Loader for the given schema reference. rootPath anchors
// relative file references.
func New(origin tsconfig.SchemaRef, rootPath string, opts Options) *Loader {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Loader{origin: origin, root: rootPath, opts: opts}
}

// LoadIntrospection resolves the schema reference. URL references are
// introspected over HTTP; file references are read from disk, glob patterns
// allowed. Failures are reported as errors; an unreachable-but-answering
// source (no data, no files) is reported as (nil, nil).
func (l *Loader) LoadIntrospection(ctx context.Context) (*Result, error) {
	if l.origin.Empty() {
		return nil, nil
	}
	if l.origin.IsURL() {
		return l.loadURL(ctx, l.origin[0])
	}
	return l.loadFiles(ctx)
}

type introspectionResponse struct {
	Data struct {
		Schema *struct {
			QueryType struct {
				Name string `json:"name"`
			} `json:"queryType"`
			Types []struct {
				Name string `json:"name"`
			} `json:"types"`
		} `json:"__schema"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (l *Loader) loadURL(ctx context.Context, url string) (*Result, error) {
	if l.opts.Cache != nil {
		if res, ok := l.opts.Cache.Get(url, l.root); ok {
			return res, nil
		}
	}

	body, err := json.Marshal(map[string]string{"query": introspectionQuery})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid schema URL %q: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range l.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("introspection request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("introspection request failed: %s returned %s", url, resp.Status)
	}

	var decoded introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("invalid introspection response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("introspection failed: %s", decoded.Errors[0].Message)
	}
	if decoded.Data.Schema == nil || decoded.Data.Schema.QueryType.Name == "" {
		return nil, nil
	}

	res := &Result{Source: url, TypeCount: len(decoded.Data.Schema.Types)}
	if l.opts.Cache != nil {
		l.opts.Cache.Put(url, l.root, res)
	}
	return res, nil
}

func (l *Loader) loadFiles(ctx context.Context) (*Result, error) {
	var paths []string
	for _, entry := range l.origin {
		pattern := entry
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(l.root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid schema pattern %q: %w", entry, err)
		}
		if matches == nil && !strings.ContainsAny(entry, "*?[") {
			// A plain path that matched nothing is a read error, not an
			// empty glob.
			matches = []string{pattern}
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	docs := make([]string, len(paths))
	group, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}
			docs[i] = string(data)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged := strings.TrimSpace(strings.Join(docs, "\n"))
	if merged == "" {
		return nil, nil
	}
	return &Result{
		Source:    strings.Join(l.origin, ","),
		TypeCount: strings.Count(merged, "type "),
		SDL:       merged,
	}, nil
}
