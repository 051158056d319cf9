// Package config loads joinery settings from defaults, a config file,
// .env files, JOINERY_* environment variables and command-line flags.
//
// Later sources win: flags over environment, environment over .env,
// .env over the config file, the config file over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. JOINERY_DSN.
const EnvPrefix = "JOINERY"

// Setting keys. Flags with the same names are bound to them.
const (
	KeyDriver  = "driver"
	KeyDSN     = "dsn"
	KeySchema  = "schema"
	KeyFormat  = "format"
	KeyVerbose = "verbose"
)

// Keys lists every setting key.
var Keys = []string{KeyDriver, KeyDSN, KeySchema, KeyFormat, KeyVerbose}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "csv", "msgpack"}

// Config is the resolved configuration.
type Config struct {
	Driver  string
	DSN     string
	Schema  string
	Format  string
	Verbose bool

	// File is the config file that was read, or "" when none was found.
	File string
}

// Load resolves the configuration. configFile names an explicit config
// file; when empty, joinery.yaml is searched in the working directory and
// in ~/.config/joinery. flags may be nil.
func Load(fs afero.Fs, configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)

	v.SetDefault(KeyDriver, "sqlite3")
	v.SetDefault(KeyDSN, "joinery.db")
	v.SetDefault(KeySchema, "schema.yaml")
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyVerbose, false)

	if configFile == "" {
		configFile = findConfig(fs)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, key := range Keys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	dotenv, err := readDotenv(fs)
	if err != nil {
		return nil, err
	}
	for key, val := range dotenv {
		if shadowed(key, flags) {
			continue
		}
		v.Set(strings.ToLower(strings.TrimPrefix(key, EnvPrefix+"_")), val)
	}

	cfg := &Config{
		Driver:  v.GetString(KeyDriver),
		DSN:     v.GetString(KeyDSN),
		Schema:  v.GetString(KeySchema),
		Format:  strings.ToLower(v.GetString(KeyFormat)),
		Verbose: v.GetBool(KeyVerbose),
		File:    v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have a closed set of values.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Driver == "" {
		return errors.New("driver must not be empty")
	}
	return nil
}

// findConfig returns the first joinery.yaml or joinery.yml in the working
// directory or ~/.config/joinery, or "".
func findConfig(fs afero.Fs) string {
	dirs := []string{"."}
	if home, err := homedir.Dir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "joinery"))
	}
	for _, dir := range dirs {
		for _, name := range []string{"joinery.yaml", "joinery.yml"} {
			path := filepath.Join(dir, name)
			if info, err := fs.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// readDotenv returns the JOINERY_* entries of .env, overlaid by
// .env.local. Missing files are skipped.
func readDotenv(fs afero.Fs) (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range []string{".env", ".env.local"} {
		f, err := fs.Open(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		entries, err := godotenv.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		for k, val := range entries {
			key, ok := strings.CutPrefix(k, EnvPrefix+"_")
			if ok && slices.Contains(Keys, strings.ToLower(key)) {
				out[k] = val
			}
		}
	}
	return out, nil
}

// shadowed reports whether a .env entry is overridden by the real
// environment or an explicitly set flag.
func shadowed(envKey string, flags *pflag.FlagSet) bool {
	if _, set := os.LookupEnv(envKey); set {
		return true
	}
	if flags == nil {
		return false
	}
	f := flags.Lookup(strings.ToLower(strings.TrimPrefix(envKey, EnvPrefix+"_")))
	return f != nil && f.Changed
}
