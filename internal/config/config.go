package config

import (
	"github.com/lifeevents/les/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Paystack   PaystackConfig   `mapstructure:"paystack"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Tribute    TributeConfig    `mapstructure:"tribute"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Task       TaskConfig       `mapstructure:"task"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// AppConfig carries the public-facing site settings.
type AppConfig struct {
	BaseURL string `mapstructure:"base_url"` // browser origin, used for payment callbacks
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// PaystackConfig configures the payment provider client.
type PaystackConfig struct {
	SecretKey string `mapstructure:"secret_key"` // also the webhook HMAC secret
	BaseURL   string `mapstructure:"base_url"`
}

// CloudinaryConfig configures unsigned image uploads.
type CloudinaryConfig struct {
	CloudName    string `mapstructure:"cloud_name"`
	UploadPreset string `mapstructure:"upload_preset"`
}

// StorageConfig configures the S3 bucket used to archive tribute assets.
type StorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// TributeConfig configures best-effort tribute generation.
type TributeConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	PoolSize         int    `mapstructure:"pool_size"` // worker pool size
	ReplicateToken   string `mapstructure:"replicate_token"`
	ReplicateBaseURL string `mapstructure:"replicate_base_url"`
	OpenAIKey        string `mapstructure:"openai_key"`
}

// ChainConfig configures the EVM RPC used for wallet balance lookups.
type ChainConfig struct {
	RpcURL       string `mapstructure:"rpc_url"`
	TokenAddress string `mapstructure:"token_address"` // platform ERC-20 token
}

type TaskConfig struct {
	ReconcileInterval int `mapstructure:"reconcile_interval"` // seconds
	AuditInterval     int `mapstructure:"audit_interval"`     // seconds
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/les")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("app.base_url", "http://localhost:3000")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "lifeevents")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("paystack.base_url", "https://api.paystack.co")
	viper.SetDefault("tribute.enabled", true)
	viper.SetDefault("tribute.pool_size", 4)
	viper.SetDefault("tribute.replicate_base_url", "https://api.replicate.com")
	viper.SetDefault("storage.region", "us-east-1")
	viper.SetDefault("task.reconcile_interval", 60)
	viper.SetDefault("task.audit_interval", 600)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
