package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/deploygraph/pkg/errors"
	"github.com/matzehuels/deploygraph/pkg/workspace"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = appName + ".toml"

// Config is the content of a deploygraph.toml file.
type Config struct {
	LogLevel    string       `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Format      string       `toml:"format" validate:"omitempty,oneof=json yaml dot"`
	Concurrency int          `toml:"concurrency" validate:"gte=0,lte=256"`
	MaxDepth    int          `toml:"max_depth" validate:"gte=0"`
	// CacheDir enables the graph cache of the graph command when set.
	CacheDir    string       `toml:"cache_dir"`
	Server      ServerConfig `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr     string        `toml:"addr" validate:"required,hostname_port"`
	Watch    bool          `toml:"watch"`
	Debounce time.Duration `toml:"debounce" validate:"gte=0"`
}

var validate = validator.New()

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		Format:      "json",
		Concurrency: 4,
		Server: ServerConfig{
			Addr:     "127.0.0.1:7340",
			Debounce: workspace.DefaultDebounce,
		},
	}
}

// LoadConfig reads the config file at path on top of [DefaultConfig]. An
// empty path reads ./deploygraph.toml when it exists and the defaults
// otherwise.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return cfg, nil
		}
		path = defaultConfigFile
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c Config) level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
