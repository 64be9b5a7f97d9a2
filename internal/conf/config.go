// Package conf loads and holds the runtime configuration for the Sheriff's
// Office service: listener addresses, the snapshot file location, session and
// autosave timing, and log settings.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// WebServerSettings configures the public REST listener.
type WebServerSettings struct {
	Host  string // interface to bind, empty for all
	Port  string // port to listen on
	Debug bool   // enable debug logging for the web server
}

// AdminSettings configures the administrative snapshot listener.
type AdminSettings struct {
	Enabled bool   // run the admin listener
	Port    string // port to listen on, separate from the web server
	APIKey  string // optional X-Admin-Key value; empty leaves the channel open
}

// StorageSettings configures snapshot persistence.
type StorageSettings struct {
	DataFile         string        // path of the aggregate JSON snapshot
	AutosaveInterval time.Duration // 0 disables the periodic save
}

// SecuritySettings configures sessions.
type SecuritySettings struct {
	SessionTTL   time.Duration // absolute session lifetime
	SweepEvery   time.Duration // janitor interval for expired sessions
	MinPasswords int           // minimum accepted password length
}

// LogSettings configures the structured file log.
type LogSettings struct {
	Enabled bool
	Path    string
}

// Settings is the aggregate runtime configuration.
type Settings struct {
	Debug     bool
	WebServer WebServerSettings
	Admin     AdminSettings
	Storage   StorageSettings
	Security  SecuritySettings
	Log       LogSettings
}

func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("webserver.host", "")
	v.SetDefault("webserver.port", "5000")
	v.SetDefault("webserver.debug", false)

	v.SetDefault("admin.enabled", true)
	v.SetDefault("admin.port", "5001")
	v.SetDefault("admin.apikey", "")

	v.SetDefault("storage.datafile", "data/storage.json")
	v.SetDefault("storage.autosaveinterval", 5*time.Minute)

	v.SetDefault("security.sessionttl", 24*time.Hour)
	v.SetDefault("security.sweepevery", time.Hour)
	v.SetDefault("security.minpassword", 4)

	v.SetDefault("log.enabled", true)
	v.SetDefault("log.path", "logs/web.log")
}

// Load reads the configuration from defaults, an optional YAML file and
// SHERIFFD_* environment variables, in ascending precedence.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaultConfig(v)

	v.SetEnvPrefix("sheriffd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			// Missing config file is fine, defaults and env apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	settings := &Settings{
		Debug: v.GetBool("debug"),
		WebServer: WebServerSettings{
			Host:  v.GetString("webserver.host"),
			Port:  v.GetString("webserver.port"),
			Debug: v.GetBool("webserver.debug"),
		},
		Admin: AdminSettings{
			Enabled: v.GetBool("admin.enabled"),
			Port:    v.GetString("admin.port"),
			APIKey:  v.GetString("admin.apikey"),
		},
		Storage: StorageSettings{
			DataFile:         v.GetString("storage.datafile"),
			AutosaveInterval: v.GetDuration("storage.autosaveinterval"),
		},
		Security: SecuritySettings{
			SessionTTL:   v.GetDuration("security.sessionttl"),
			SweepEvery:   v.GetDuration("security.sweepevery"),
			MinPasswords: v.GetInt("security.minpassword"),
		},
		Log: LogSettings{
			Enabled: v.GetBool("log.enabled"),
			Path:    v.GetString("log.path"),
		},
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) validate() error {
	if s.WebServer.Port == "" {
		return fmt.Errorf("webserver.port must not be empty")
	}
	if s.Admin.Enabled && s.Admin.Port == s.WebServer.Port {
		return fmt.Errorf("admin.port must differ from webserver.port")
	}
	if s.Storage.DataFile == "" {
		return fmt.Errorf("storage.datafile must not be empty")
	}
	if s.Security.SessionTTL <= 0 {
		return fmt.Errorf("security.sessionttl must be positive")
	}
	if s.Security.MinPasswords < 1 {
		return fmt.Errorf("security.minpassword must be at least 1")
	}
	return nil
}
