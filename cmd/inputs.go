package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/session"
)

// ingested is one photo added to the session together with its source file.
type ingested struct {
	ID   string
	Name string
}

// collectInputs reads the files named by args. Directories contribute their
// regular files in name order; non-image files are skipped later on decode.
func collectInputs(args []string) ([]session.Input, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", arg, err)
		}
		var names []string
		for _, e := range entries {
			if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)
		for _, name := range names {
			paths = append(paths, filepath.Join(arg, name))
		}
	}

	inputs := make([]session.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // paths come from the command line
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		inputs = append(inputs, session.Input{Name: p, Data: data})
	}
	return inputs, nil
}

// loadCaptions reads a YAML map of file name to caption. Keys may be the
// path as given on the command line or just the base name.
func loadCaptions(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read captions file: %w", err)
	}
	captions := make(map[string]string)
	if err := yaml.Unmarshal(data, &captions); err != nil {
		return nil, fmt.Errorf("failed to parse captions file: %w", err)
	}
	return captions, nil
}

// captionFor looks a file up by its full path first, then by base name.
func captionFor(captions map[string]string, name string) (string, bool) {
	if c, ok := captions[name]; ok {
		return c, true
	}
	c, ok := captions[filepath.Base(name)]
	return c, ok
}

// loadSessionConfig applies the shared command flags on top of the environment.
func loadSessionConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if v := mustGetString(cmd, "variant"); v != "" {
		cfg.Report.Variant = v
	}
	if cmd.Flags().Lookup("target") != nil {
		if t := mustGetInt(cmd, "target"); t > 0 {
			cfg.Report.TargetBytes = t
		}
	}
	if cmd.Flags().Lookup("per-page") != nil {
		if n := mustGetInt(cmd, "per-page"); n > 0 {
			cfg.Report.PerPage = n
		}
	}
	return cfg
}

// ingestFiles adds every decodable input to s, warning about the rest.
func ingestFiles(s *session.Session, inputs []session.Input) []ingested {
	var out []ingested
	for _, in := range inputs {
		id, err := s.Ingest(in.Data)
		if err != nil {
			log.Printf("WARNING: skipping %s: %v", in.Name, err)
			continue
		}
		out = append(out, ingested{ID: id, Name: in.Name})
	}

	names := make(map[string]string, len(out))
	for _, p := range out {
		names[p.ID] = p.Name
	}
	for _, a := range s.Assets() {
		if a.DuplicateOf != "" {
			log.Printf("WARNING: %s looks like a duplicate of %s", names[a.ID], names[a.DuplicateOf])
		}
	}
	return out
}

func newCompressProgressBar(count int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Compressing photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

// compressAll fills the compression cache in page order so that estimating
// and generating afterwards reuse the results.
func compressAll(s *session.Session, photos []ingested, target int, quiet bool) error {
	bar := newCompressProgressBar(len(photos), quiet)
	for _, p := range photos {
		res, err := s.Compressed(p.ID, target)
		if err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
		if !res.WithinTarget {
			log.Printf("WARNING: %s could not be compressed below %d bytes (%d bytes at %dx%d)",
				p.Name, target, res.Size(), res.Width, res.Height)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}
	return nil
}

func formatMB(n int) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1e6)
}
