package main

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// config holds CLI defaults, optionally loaded from a TOML file:
//
//	objects_as_stdclass = true
//	max_depth = 64
//	verbose = false
type config struct {
	ObjectsAsStdClass bool `toml:"objects_as_stdclass"`
	MaxDepth          int  `toml:"max_depth"`
	Verbose           bool `toml:"verbose"`
}

func defaultConfig() config {
	return config{}
}

// loadConfig reads a TOML config file. Keys not present keep their defaults.
func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, errors.Wrapf(err, "cannot read %s", path)
	}

	cfg := defaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return config{}, errors.Wrapf(err, "parse error in %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return config{}, errors.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	if cfg.MaxDepth < 0 {
		return config{}, errors.Errorf("max_depth must not be negative in %s", path)
	}
	return cfg, nil
}
