package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sift/internal/walker"
)

// DefaultConfigFile is looked up in the working directory when --config
// is not given.
const DefaultConfigFile = ".sift.yaml"

// Config is the optional config file. Every field has a flag
// counterpart; a flag set on the command line wins over the file.
type Config struct {
	Exclude          []string `yaml:"exclude"`
	Workers          int      `yaml:"workers"`
	MaxDepth         int      `yaml:"max_depth"`
	MaxDocumentBytes int64    `yaml:"max_document_bytes"`
	FollowSymlinks   bool     `yaml:"follow_symlinks"`
}

// LoadConfig reads the config file. An explicit path must exist; the
// default path may be absent, which yields an empty config. Unknown
// keys are rejected so typos surface instead of being ignored.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// TraversalOptions are the walk-shaping flags shared by find and watch.
type TraversalOptions struct {
	Excludes       []string
	Workers        int
	MaxDepth       int
	MaxDocBytes    int64
	FollowSymlinks bool
}

func addTraversalFlags(cmd *cobra.Command, opts *TraversalOptions) {
	cmd.Flags().StringSliceVar(&opts.Excludes, "exclude", nil, "glob pattern to prune (repeatable)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "evaluation workers (default GOMAXPROCS)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "limit descent below each root (0 = unlimited)")
	cmd.Flags().Int64Var(&opts.MaxDocBytes, "max-document-bytes", 0, "structured decode ceiling in bytes")
	cmd.Flags().BoolVar(&opts.FollowSymlinks, "follow-symlinks", false, "descend into symlinked directories")
}

// merge folds file config under the flags. Only flags left untouched on
// the command line take file values.
func (o *TraversalOptions) merge(cfg *Config, flags *pflag.FlagSet) walker.Options {
	w := walker.Options{
		Excludes:         o.Excludes,
		Workers:          o.Workers,
		MaxDepth:         o.MaxDepth,
		MaxDocumentBytes: o.MaxDocBytes,
		FollowSymlinks:   o.FollowSymlinks,
	}
	if cfg == nil {
		return w
	}
	if !flags.Changed("exclude") && len(cfg.Exclude) > 0 {
		w.Excludes = cfg.Exclude
	}
	if !flags.Changed("workers") && cfg.Workers > 0 {
		w.Workers = cfg.Workers
	}
	if !flags.Changed("max-depth") && cfg.MaxDepth > 0 {
		w.MaxDepth = cfg.MaxDepth
	}
	if !flags.Changed("max-document-bytes") && cfg.MaxDocumentBytes > 0 {
		w.MaxDocumentBytes = cfg.MaxDocumentBytes
	}
	if !flags.Changed("follow-symlinks") && cfg.FollowSymlinks {
		w.FollowSymlinks = true
	}
	return w
}
