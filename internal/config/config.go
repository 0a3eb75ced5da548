// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Upload  UploadConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	PublicBaseURL  string
	Folder         string
	TimeoutSeconds int
}

type UploadConfig struct {
	MaxBytes int64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "voice-notes")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "")
		viper.SetDefault("STORAGE_FOLDER", "voice-notes")
		viper.SetDefault("STORAGE_TIMEOUT_SECONDS", 30)
		viper.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Storage: StorageConfig{
				Endpoint:       viper.GetString("STORAGE_ENDPOINT"),
				AccessKey:      viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey:      viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:         viper.GetString("STORAGE_BUCKET"),
				Region:         viper.GetString("STORAGE_REGION"),
				UseSSL:         viper.GetBool("STORAGE_USE_SSL"),
				PublicBaseURL:  viper.GetString("STORAGE_PUBLIC_BASE_URL"),
				Folder:         viper.GetString("STORAGE_FOLDER"),
				TimeoutSeconds: viper.GetInt("STORAGE_TIMEOUT_SECONDS"),
			},
			Upload: UploadConfig{
				MaxBytes: viper.GetInt64("UPLOAD_MAX_BYTES"),
			},
		}
	})

	return instance
}

// Configured reports whether enough is present to reach the object store.
// An unconfigured store is not fatal at startup; uploads fail per-request.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}
