package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		Locale       string
		TokenFile    string
		RollbarToken string
		API          APIConfig
		Server       ServerConfig
	}

	// APIConfig is how the client reaches the Aula Virtual API.
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	// ServerConfig configures the reference API (apps/api).
	ServerConfig struct {
		Host               string
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		FrontendBaseURL    string
		SendgridApiKey     string
		DefaultFromEmail   mail.Address
	}
)

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if present) and the environment.
// Environment variables are prefixed with the upper-cased ENV, e.g. DEV_API_BASEURL.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Aula Virtual")
	v.SetDefault("build", "develop")
	v.SetDefault("locale", "es")
	v.SetDefault("tokenFile", defaultTokenFile())
	v.SetDefault("rollbarToken", "")
	v.SetDefault("api.baseURL", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.secretKey", "d3v-k3y_4ula-v1rtual!change-me")
	v.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.frontendBaseURL", "http://localhost:3000")
	v.SetDefault("server.sendgridApiKey", "")
	v.SetDefault("server.defaultFromEmail", "no-reply@aulavirtual.local")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Locale:       v.GetString("locale"),
		TokenFile:    v.GetString("tokenFile"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.baseURL"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			SecretKey:          v.GetString("server.secretKey"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			FrontendBaseURL:    strings.TrimRight(v.GetString("server.frontendBaseURL"), "/"),
			SendgridApiKey:     v.GetString("server.sendgridApiKey"),
			DefaultFromEmail:   mail.Address{Name: v.GetString("appName"), Address: v.GetString("server.defaultFromEmail")},
		},
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".aula-token"
	}
	return filepath.Join(dir, "aulavirtual", "token")
}
