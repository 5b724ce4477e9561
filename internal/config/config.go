// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config はプロセス起動時に一度だけ構築され、各層へ注入されます。
// グローバルに参照させない。
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"` // development / production
	} `mapstructure:"server"`
	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`
	CORS struct {
		AllowedOrigins   []string `mapstructure:"allowed_origins"`
		AllowedMethods   []string `mapstructure:"allowed_methods"`
		AllowedHeaders   []string `mapstructure:"allowed_headers"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAge           int      `mapstructure:"max_age"`
	} `mapstructure:"cors"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	App struct {
		PageSize           int    `mapstructure:"page_size"`
		DefaultImportLevel string `mapstructure:"default_import_level"` // インポートで作る課のレベル
	} `mapstructure:"app"`
}

// IsProduction は本番モードかどうかを返します
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// LoadConfig は設定ファイルと環境変数から Config を構築して返します
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("STUDYFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("server.port", "STUDYFLOW_SERVER_PORT")
	v.BindEnv("server.env", "STUDYFLOW_ENV")
	v.BindEnv("database.url", "STUDYFLOW_DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using defaults and environment variables.")
		} else {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// デフォルト値
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.App.PageSize <= 0 {
		cfg.App.PageSize = 20
	}
	if cfg.App.DefaultImportLevel == "" {
		cfg.App.DefaultImportLevel = "N5"
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}
	}
	// 開発環境でオリジン未設定ならローカルのフロントエンドを許可する
	if len(cfg.CORS.AllowedOrigins) == 0 && !cfg.IsProduction() {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	return &cfg, nil
}
