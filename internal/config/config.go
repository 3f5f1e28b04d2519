package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	ClientConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetAPIURL() string
	GetSessionFile() string
	GetOutputFormat() string
}

// Profile is the optional YAML file that supplies defaults for the
// environment variables. Values set in the environment always win.
type Profile struct {
	APIURL      string `yaml:"api_url"`
	Timeout     string `yaml:"timeout"`
	SessionFile string `yaml:"session_file"`
	SessionKey  string `yaml:"session_key"`
	LogLevel    string `yaml:"log_level"`
	Output      string `yaml:"output"`
	RateLimit   string `yaml:"rate_limit"`
	RateBurst   string `yaml:"rate_burst"`
	TaxonomyTTL string `yaml:"taxonomy_ttl"`
	RefreshSkew string `yaml:"refresh_skew"`
	PageSize    string `yaml:"page_size"`
}

type mainConfig struct {
	EnvVars
	Client
	Security
}

// New returns a Config backed only by the process environment.
func New() Config {
	return mainConfig{}
}

// Load reads an optional .env file and an optional YAML profile before
// returning the Config. Missing files are not an error.
func Load(envFile, profileFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("[config Load] %s: %w", envFile, err)
		}
	}

	if profileFile == "" {
		profileFile = os.Getenv(profileFileVar)
	}

	var p Profile
	if profileFile != "" {
		data, err := os.ReadFile(profileFile)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("[config Load] read profile: %w", err)
		default:
			if err := yaml.Unmarshal(data, &p); err != nil {
				return nil, fmt.Errorf("[config Load] parse profile %s: %w", profileFile, err)
			}
		}
	}

	return mainConfig{
		EnvVars:  EnvVars{profile: p},
		Client:   Client{profile: p},
		Security: Security{profile: p},
	}, nil
}
