package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/streamnet/pkg/pipeline"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given. A missing file is not an error; flags alone are enough.
const defaultConfigFile = "streamnet.toml"

// Config holds file-based defaults for pipeline options. Flags always win
// over config values, which win over built-in defaults.
//
// Example streamnet.toml:
//
//	id_column   = "comid"
//	to_column   = "tonode"
//	from_column = "fromnode"
//	workers     = 8
//
//	[store]
//	mode = "disk"
//	path = "closures.strm"
type Config struct {
	IDColumn     string   `toml:"id_column"`
	ToColumn     string   `toml:"to_column"`
	FromColumn   string   `toml:"from_column"`
	WeightColumn string   `toml:"weight_column"`
	DropColumns  []string `toml:"drop_columns"`
	Direction    string   `toml:"direction"`
	Workers      int      `toml:"workers"`
	Precision    int      `toml:"precision"`

	Store StoreConfig `toml:"store"`
}

// StoreConfig configures the closure store backend.
type StoreConfig struct {
	Mode string `toml:"mode"`
	Path string `toml:"path"`
}

// loadConfig reads a TOML config file. With an explicit path, the file must
// exist and parse; with the default path, absence yields a zero config.
func loadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	var cfg Config
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// apply copies config values onto options, filling only fields the flags
// left empty.
func (cfg Config) apply(opts *pipeline.Options) {
	if opts.IDColumn == "" {
		opts.IDColumn = cfg.IDColumn
	}
	if opts.ToColumn == "" {
		opts.ToColumn = cfg.ToColumn
	}
	if opts.FromColumn == "" {
		opts.FromColumn = cfg.FromColumn
	}
	if opts.WeightColumn == "" {
		opts.WeightColumn = cfg.WeightColumn
	}
	if len(opts.DropColumns) == 0 {
		opts.DropColumns = cfg.DropColumns
	}
	if opts.Direction == "" {
		opts.Direction = cfg.Direction
	}
	if opts.Workers == 0 {
		opts.Workers = cfg.Workers
	}
	if opts.Precision == 0 {
		opts.Precision = cfg.Precision
	}
	if opts.Mode == "" {
		opts.Mode = cfg.Store.Mode
	}
	if opts.StorePath == "" {
		opts.StorePath = cfg.Store.Path
	}
}
