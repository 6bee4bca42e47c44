package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"quizone/storage/gormstore"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env            string
	Port           string
	BindAddress    string
	StorageDriver  string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	JWTSecret      string
	JWTRefresh     string
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	FrontendURL    string
	PublicURL      string
	UploadDir      string
	GoogleClientID string
	SendgridAPIKey string
	MailFrom       string
	RollbarToken   string
}

// Load reads the environment, after loading .env when it exists.
func Load() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config.godotenv(.env): %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(.env): %v", err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("ENV", "DEV")
	v.SetDefault("PORT", "8080")
	v.SetDefault("BIND_ADDRESS", "localhost")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "quizone")
	v.SetDefault("DB_PASSWORD", "quizone123")
	v.SetDefault("DB_NAME", "quizone")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_REFRESH_SECRET", "your-refresh-secret-change-in-production")
	v.SetDefault("ACCESS_TOKEN_TTL", time.Hour)
	v.SetDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "noreply@quizone.local")
	v.SetDefault("ROLLBAR_TOKEN", "")
	v.AutomaticEnv()

	return &Config{
		Env:            strings.ToUpper(v.GetString("ENV")),
		Port:           v.GetString("PORT"),
		BindAddress:    v.GetString("BIND_ADDRESS"),
		StorageDriver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		RedisHost:      v.GetString("REDIS_HOST"),
		RedisPort:      v.GetString("REDIS_PORT"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTRefresh:     v.GetString("JWT_REFRESH_SECRET"),
		AccessTTL:      v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTTL:     v.GetDuration("REFRESH_TOKEN_TTL"),
		FrontendURL:    v.GetString("FRONTEND_URL"),
		PublicURL:      v.GetString("PUBLIC_URL"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		GoogleClientID: v.GetString("GOOGLE_CLIENT_ID"),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		MailFrom:       v.GetString("MAIL_FROM"),
		RollbarToken:   v.GetString("ROLLBAR_TOKEN"),
	}
}

func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gormstore.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
