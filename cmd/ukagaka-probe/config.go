package main

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the probe configuration. Values come from flags, then the
// config file for anything not set on the command line.
type Config struct {
	// Plugin is the wasip1 plugin module to probe.
	Plugin string `koanf:"plugin" yaml:"plugin" validate:"required" jsonschema:"description=Path to the wasip1 plugin module"`
	// ModulePath is passed to load/loadu. Defaults to the plugin's directory.
	ModulePath string `koanf:"module_path" yaml:"module_path,omitempty" jsonschema:"description=Module path passed to load and loadu"`
	// Codepage encodes the module path for the legacy load entry point.
	Codepage uint32 `koanf:"codepage" yaml:"codepage,omitempty" validate:"omitempty,oneof=437 850 852 855 858 860 862 863 865 866 874 932 936 949 950 1250 1251 1252 1253 1254 1255 1256 1257 1258 20866 21866 28591 28592 28593 28594 28595 28596 28597 28598 28599 28603 28605 51932 54936 65001"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	// MemoryPages caps guest memory in 64 KiB pages. Zero means the wazero default.
	MemoryPages uint32 `koanf:"memory_pages" yaml:"memory_pages,omitempty" validate:"lte=65536"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadConfig merges the config file at path (optional when empty) with the
// flags in fs and validates the result.
func loadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			code := "CONFIG_READ"
			if errors.Is(err, os.ErrNotExist) {
				code = "CONFIG_NOT_FOUND"
			}
			return nil, oops.Code(code).With("path", path).Wrapf(err, "load config")
		}
	}

	if fs != nil {
		// Flags use dashes, config keys use underscores.
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS").Wrapf(err, "load flags")
		}
	}

	cfg := &Config{LogLevel: "info"}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE").With("path", path).Wrapf(err, "decode config")
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("path", path).
			Hint("run 'ukagaka-probe config-schema' for the accepted keys").
			Wrapf(err, "invalid config")
	}
	return cfg, nil
}
