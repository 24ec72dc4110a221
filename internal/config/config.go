// Package config holds rpmkit configuration and package manifests.
//
// Both are read through viper, so they can come from TOML, YAML, or JSON
// files, with RPMKIT_* environment variables and command-line flags layered
// over the CLI configuration.
package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/meigma/rpm"
)

// EnvPrefix prefixes environment variables read by the CLI.
const EnvPrefix = "RPMKIT"

// Config holds CLI configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogDir   string `mapstructure:"log_dir"`

	// Concurrency bounds how many packages are read at once.
	Concurrency int `mapstructure:"concurrency"`

	// Decode limits. Zero keeps the library defaults.
	MaxHeaderSize uint32 `mapstructure:"max_header_size"`
	MaxEntrySize  uint64 `mapstructure:"max_entry_size"`

	// Compressor forces the payload compressor when reading.
	Compressor string `mapstructure:"compressor"`

	Overwrite  bool `mapstructure:"overwrite"`
	Owner      bool `mapstructure:"owner"`
	SkipUnsafe bool `mapstructure:"skip_unsafe"`
}

// Load decodes the CLI configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// OpenOptions converts the decode settings to rpm options.
func (c *Config) OpenOptions() []rpm.Option {
	var opts []rpm.Option
	if c.MaxHeaderSize > 0 {
		opts = append(opts, rpm.WithMaxHeaderSize(c.MaxHeaderSize))
	}
	if c.MaxEntrySize > 0 {
		opts = append(opts, rpm.WithMaxEntrySize(c.MaxEntrySize))
	}
	if c.Compressor != "" {
		opts = append(opts, rpm.WithCompressor(c.Compressor))
	}
	if c.Concurrency > 0 {
		opts = append(opts, rpm.WithConcurrency(c.Concurrency))
	}
	return opts
}

// ExtractPolicy returns the unsafe-path policy.
func (c *Config) ExtractPolicy() rpm.ExtractPolicy {
	if c.SkipUnsafe {
		return rpm.PolicySkip
	}
	return rpm.PolicyAbort
}

// Manifest describes a package to build: the package configuration at the
// top level and a files list.
type Manifest struct {
	rpm.Config `mapstructure:",squash"`

	Files []ManifestFile `mapstructure:"files"`
}

// ManifestFile is one files entry. Content is inline text; Source is a path
// relative to the manifest.
type ManifestFile struct {
	rpm.FileSpec `mapstructure:",squash"`

	Content *string `mapstructure:"content"`
}

// LoadManifest reads a manifest file. The format follows the extension.
func LoadManifest(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m := &Manifest{}
	if err := v.Unmarshal(m, viper.DecodeHook(DecodeHook())); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Files {
		f := &m.Files[i]
		if f.Content != nil {
			f.FileSpec.Content = []byte(*f.Content)
		}
		if f.Source != "" && !filepath.IsAbs(f.Source) {
			f.Source = filepath.Join(base, f.Source)
		}
	}
	return m, nil
}

// Builder returns a builder holding every manifest file.
func (m *Manifest) Builder(opts ...rpm.BuildOption) *rpm.Builder {
	b := rpm.NewBuilder(m.Config, opts...)
	for _, f := range m.Files {
		b.AddFile(f.FileSpec)
	}
	return b
}

// DecodeHook converts manifest strings: RFC 3339 times, octal modes,
// dependency expressions such as "bash >= 5.0", and package types.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		stringToFileMode,
		stringToDependency,
		stringToPackageType,
	)
}

var (
	fileModeType    = reflect.TypeFor[fs.FileMode]()
	dependencyType  = reflect.TypeFor[rpm.Dependency]()
	packageTypeType = reflect.TypeFor[rpm.PackageType]()
)

func stringToFileMode(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != fileModeType {
		return data, nil
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(data.(string), "0o"), 8, 32)
	if err != nil {
		return nil, fmt.Errorf("mode %q: %w", data, err)
	}
	return fs.FileMode(n), nil
}

func stringToDependency(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != dependencyType {
		return data, nil
	}
	return rpm.ParseDependency(data.(string))
}

func stringToPackageType(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != packageTypeType {
		return data, nil
	}
	switch strings.ToLower(data.(string)) {
	case "binary", "":
		return rpm.Binary, nil
	case "source":
		return rpm.Source, nil
	default:
		return nil, fmt.Errorf("%w: package type %q", rpm.ErrInvalidConfig, data)
	}
}
