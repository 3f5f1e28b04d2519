package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	envVar         = "ENV"
	apiURLVar      = "BLOG_API_URL"
	logLevelVar    = "BLOG_LOG_LEVEL"
	sessionFileVar = "BLOG_SESSION_FILE"
	outputVar      = "BLOG_OUTPUT"
	profileFileVar = "BLOG_CONFIG_FILE"

	DefaultAPIURL = "http://localhost:8080/api"
)

type EnvVars struct {
	profile Profile
}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "blogctl")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, orDefault(e.profile.LogLevel, "info"))
}

// GetAPIURL returns the base URL of the blog REST API, e.g. "https://blog.example.com/api".
func (e EnvVars) GetAPIURL() string {
	return GetEnv(apiURLVar, orDefault(e.profile.APIURL, DefaultAPIURL))
}

// GetSessionFile is where the persisted session lives between invocations.
func (e EnvVars) GetSessionFile() string {
	if f := GetEnv(sessionFileVar, e.profile.SessionFile); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".blogctl", "session.json")
	}
	return filepath.Join(home, ".blogctl", "session.json")
}

func (e EnvVars) GetOutputFormat() string {
	return GetEnv(outputVar, orDefault(e.profile.Output, "text"))
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return d
}

func GetEnvInt(envVar string, defaultValue int) int {
	i, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return i
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
