package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// remote modes
const (
	RemoteDemo = "demo"
	RemoteHTTP = "http"
	RemoteSQL  = "sql"
)

type (
	CacheConfig struct {
		Path        string
		HealCorrupt bool
	}

	RemoteConfig struct {
		Mode  string // demo | http | sql
		URL   string
		Token string
	}

	DatabaseConfig struct {
		Engine string // sqlite | postgres
		DSN    string
	}

	ServerConfig struct {
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Config struct {
		Debug        bool
		TestMode     bool
		AppName      string
		Env          string
		Build        string
		SecretKey    string
		RollbarToken string

		Cache    CacheConfig
		Remote   RemoteConfig
		Database DatabaseConfig
		Server   ServerConfig
	}
)

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file
// and `<ENV>_`-prefixed environment variables (e.g. DEV_CACHE_PATH).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Campus Copilot")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3l9-cmp)usc$+21=op&ilot2(h!x)#*c7(#zq4h^$copl1ot")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("cache.path", filepath.Join(dataDir(), "cache.db"))
	v.SetDefault("cache.healCorrupt", false)
	v.SetDefault("remote.mode", RemoteDemo)
	v.SetDefault("remote.url", "http://localhost:8080")
	v.SetDefault("remote.token", "")
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.dsn", filepath.Join(dataDir(), "remote.db"))
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.debugAddr", "localhost:4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", strings.ToLower(env))
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Env:          v.GetString("env"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Cache: CacheConfig{
			Path:        v.GetString("cache.path"),
			HealCorrupt: v.GetBool("cache.healCorrupt"),
		},
		Remote: RemoteConfig{
			Mode:  strings.ToLower(v.GetString("remote.mode")),
			URL:   strings.TrimRight(v.GetString("remote.url"), "/"),
			Token: v.GetString("remote.token"),
		},
		Database: DatabaseConfig{
			Engine: strings.ToLower(v.GetString("database.engine")),
			DSN:    v.GetString("database.dsn"),
		},
		Server: ServerConfig{
			Addr:               v.GetString("server.addr"),
			DebugAddr:          v.GetString("server.debugAddr"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
	}
}

// configDir is $CONFIG_DIR, or ./config.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

func dataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "campuscopilot")
	}
	return ".campuscopilot"
}
