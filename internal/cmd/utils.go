package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pydiff/pydiff/internal/cache"
	"github.com/pydiff/pydiff/internal/config"
	"github.com/pydiff/pydiff/internal/exclude"
	"github.com/pydiff/pydiff/internal/output"
	"github.com/pydiff/pydiff/internal/walk"
)

// settings holds the resolved per-invocation options: config file values
// overridden by command line flags.
type settings struct {
	cfg       *config.Config
	highlight output.Highlight
	format    output.Format
}

// resolveSettings loads the config file and applies flag overrides.
func resolveSettings() (*settings, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	highlightValue := cfg.Output.Highlight
	if highlightFlag != "" {
		highlightValue = highlightFlag
	}
	highlight, err := output.ParseHighlight(highlightValue)
	if err != nil {
		return nil, err
	}

	formatValue := cfg.Output.Format
	if formatFlag != "" {
		formatValue = formatFlag
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return nil, err
	}

	debugf("highlight=%s format=%s exclude=%v cache_disabled=%v",
		highlight, format, cfg.Compare.Exclude, cfg.Cache.Disabled)
	return &settings{cfg: cfg, highlight: highlight, format: format}, nil
}

// newDiffer builds a tree differ from the resolved settings. The extra
// exclude patterns come from command flags and are applied in addition
// to the configured ones. The returned cleanup closes the cache, if one
// was opened.
func (s *settings) newDiffer(extraExclude []string, noCache bool) (*walk.Differ, func()) {
	d := &walk.Differ{}
	cleanup := func() {}

	patterns := append(append([]string(nil), s.cfg.Compare.Exclude...), extraExclude...)
	if len(patterns) > 0 {
		d.Exclude = exclude.New(patterns)
	}

	if noCache || s.cfg.Cache.Disabled {
		return d, cleanup
	}

	// The cache lives next to the config. No .pydiff directory means
	// no cache; comparison still works, just slower.
	configDir, err := config.FindConfigDir(".")
	if err != nil {
		debugf("no .pydiff directory, caching disabled")
		return d, cleanup
	}
	c, err := cache.Open(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pydiff: cache unavailable: %v\n", err)
		return d, cleanup
	}
	debugf("cache open at %s", c.Path())
	d.Cache = c
	return d, func() { c.Close() }
}

// reportDoc is the structured form of a diff report for yaml and json
// output.
type reportDoc struct {
	Changed bool   `json:"changed" yaml:"changed"`
	Report  string `json:"report,omitempty" yaml:"report,omitempty"`
}

// emitReport writes a diff report in the selected format. The text still
// carries highlight markers; they are rendered here according to the
// selected mode. Structured formats always use plain quotes.
func (s *settings) emitReport(w io.Writer, text string, changed bool) error {
	switch s.format {
	case output.FormatText:
		if !changed {
			fmt.Fprintln(w, "No differences found.")
			return nil
		}
		rendered, err := s.highlight.Render(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, rendered)
		return nil

	case output.FormatYAML, output.FormatJSON:
		doc := reportDoc{Changed: changed}
		if changed {
			rendered, err := output.HighlightQuotes.Render(text)
			if err != nil {
				return err
			}
			doc.Report = rendered
		}
		if s.format == output.FormatJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	default:
		return fmt.Errorf("invalid format: %q", string(s.format))
	}
}
