package config

import (
	"errors"
	iofs "io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmrech/py-shiny/internal/core"
)

const (
	EnvPrefix      = "SHINYLIVE"
	ConfigName     = "shinylive"
	DefaultEnvFile = ".env"
)

// Config holds the settings shared by the export and docs commands. The
// docs keys keep their historical environment names: SHINYLIVE_SRC,
// SHINYLIVE_BASE_URL and SHINYLIVE_DEST.
type Config struct {
	Subdir      string   `mapstructure:"subdir"`
	Overwrite   bool     `mapstructure:"overwrite"`
	Verbose     bool     `mapstructure:"verbose"`
	RuntimeDir  string   `mapstructure:"runtime"`
	ExcludeDirs []string `mapstructure:"exclude_dirs"`

	Src     string `mapstructure:"src"`
	BaseURL string `mapstructure:"base_url"`
	Dest    string `mapstructure:"dest"`
}

type LoadOptions struct {
	// ConfigFile is read when set; otherwise shinylive.{yaml,toml,json} is
	// looked up in SearchPaths and may be absent.
	ConfigFile  string
	SearchPaths []string
	EnvFile     string
}

func (c *Config) Docs() core.DocsConfig {
	return core.DocsConfig{
		Source:  c.Src,
		BaseURL: c.BaseURL,
		Dest:    c.Dest,
	}
}

func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("subdir", "")
	v.SetDefault("overwrite", false)
	v.SetDefault("verbose", false)
	v.SetDefault("runtime", "")
	v.SetDefault("exclude_dirs", core.DefaultExcludeDirs)
	v.SetDefault("src", "")
	v.SetDefault("base_url", core.DefaultDocsBaseURL)
	v.SetDefault("dest", core.DefaultDocsDest)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName(ConfigName)
		searchPaths := opts.SearchPaths
		if len(searchPaths) == 0 {
			searchPaths = []string{"."}
		}
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
