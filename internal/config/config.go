// Package config resolves runtime settings from flags, environment
// variables, .env files and an optional config file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/keyspace"
	"github.com/peternagy/dbquerytool/internal/storage"
)

// EnvPrefix prefixes every environment variable, e.g. DBQT_QUERY_TIMEOUT.
const EnvPrefix = "dbqt"

// Flag and config keys.
const (
	KeyConfigFile     = "config-file"
	KeySessionFile    = "session-file"
	KeyThemesDir      = "themes-dir"
	KeyConnectTimeout = "connect-timeout"
	KeyQueryTimeout   = "query-timeout"
	KeyKeyLimit       = "key-limit"
	KeyKeyDelimiter   = "key-delimiter"
	KeyUseKeyring     = "use-keyring"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
)

// Config is the resolved runtime configuration.
type Config struct {
	SessionFile  string
	ThemesDir    string
	Timeouts     core.Timeouts
	KeyLimit     int
	KeyDelimiter string
	UseKeyring   bool
	LogLevel     string
	LogFormat    string
}

// SetupFlags adds the configuration flags to cmd's persistent flags.
func SetupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(KeyConfigFile, "", "Path to a YAML, TOML or JSON file with any of these flags as keys")
	flags.String(KeySessionFile, "", "Session file location (default: user config dir)")
	flags.String(KeyThemesDir, "", "Directory of user highlighting palettes (default: next to the session file)")
	flags.Int(KeyConnectTimeout, int(core.DefaultConnectTimeout/time.Second), "Connect timeout in seconds")
	flags.Int(KeyQueryTimeout, int(core.DefaultQueryTimeout/time.Second), "Query timeout in seconds")
	flags.Int(KeyKeyLimit, keyspace.DefaultMaxKeys, "Maximum keys shown by the key browser")
	flags.String(KeyKeyDelimiter, keyspace.DefaultDelimiter, "Delimiter that groups keys in the key browser")
	flags.Bool(KeyUseKeyring, true, "Store profile passwords in the OS keyring")
	flags.String(KeyLogLevel, "warn", "Log level (debug, info, warn, error)")
	flags.String(KeyLogFormat, "text", "Log format (text, json)")
}

// LoadEnvFiles reads .env and .env.local from the working directory when present.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// NewViper returns a viper instance that reads DBQT_* environment variables
// and, once bound, cmd's flags.
func NewViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load resolves a Config from v. Precedence: flags, environment, config
// file, flag defaults.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, &core.ConfigIOError{Op: "read", Path: path, Err: err}
		}
	}

	cfg := Config{
		SessionFile:  v.GetString(KeySessionFile),
		ThemesDir:    v.GetString(KeyThemesDir),
		KeyLimit:     v.GetInt(KeyKeyLimit),
		KeyDelimiter: v.GetString(KeyKeyDelimiter),
		UseKeyring:   v.GetBool(KeyUseKeyring),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Timeouts: core.Timeouts{
			Connect: time.Duration(v.GetInt(KeyConnectTimeout)) * time.Second,
			Query:   time.Duration(v.GetInt(KeyQueryTimeout)) * time.Second,
		},
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.SessionFile == "" {
		c.SessionFile = storage.DefaultPath()
	}
	if c.ThemesDir == "" {
		c.ThemesDir = filepath.Join(filepath.Dir(c.SessionFile), "themes")
	}
	c.Timeouts = c.Timeouts.WithDefaults()
	if c.KeyLimit <= 0 {
		c.KeyLimit = keyspace.DefaultMaxKeys
	}
	if c.KeyDelimiter == "" {
		c.KeyDelimiter = keyspace.DefaultDelimiter
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	switch c.LogFormat {
	case "":
		c.LogFormat = "text"
	case "text", "json":
	default:
		return &core.ValidationError{Field: KeyLogFormat, Reason: fmt.Sprintf("unknown log format %q", c.LogFormat)}
	}
	return nil
}
