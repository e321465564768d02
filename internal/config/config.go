package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Minio  MinioConfig
	Kafka  KafkaConfig
	SMTP   SMTPConfig
}

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	PublicURL    string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret         string
	ExpirationTime time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
	ConsumerGroup     string
	Enabled           bool
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("SOCIAL_HOST", "")
		viper.SetDefault("SOCIAL_PORT", "8080")
		viper.SetDefault("SOCIAL_PUBLIC_URL", "http://localhost:8080")
		viper.SetDefault("SOCIAL_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("SOCIAL_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("SOCIAL_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("SOCIAL_JWT_SECRET", "secret")
		viper.SetDefault("SOCIAL_JWT_EXPIRE", "168h")
		viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
		viper.SetDefault("MONGO_DB", "social")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "social-media")
		viper.SetDefault("MINIO_USE_SSL", false)
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_NOTIFICATION_TOPIC", "social.notifications")
		viper.SetDefault("KAFKA_CONSUMER_GROUP", "social-notifier")
		viper.SetDefault("KAFKA_ENABLED", false)
		viper.SetDefault("SMTP_HOST", "localhost")
		viper.SetDefault("SMTP_PORT", "587")
		viper.SetDefault("SMTP_FROM", "no-reply@social.local")
		viper.AutomaticEnv()

		ConfigInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("SOCIAL_HOST"),
				Port:         viper.GetString("SOCIAL_PORT"),
				ReadTimeout:  viper.GetDuration("SOCIAL_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("SOCIAL_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("SOCIAL_IDLE_TIMEOUT"),
				PublicURL:    viper.GetString("SOCIAL_PUBLIC_URL"),
			},
			Mongo: MongoConfig{
				URI:    viper.GetString("MONGO_URI"),
				DBName: viper.GetString("MONGO_DB"),
			},
			Redis: RedisConfig{
				URI:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			JWT: JWTConfig{
				Secret:         viper.GetString("SOCIAL_JWT_SECRET"),
				ExpirationTime: viper.GetDuration("SOCIAL_JWT_EXPIRE"),
			},
			Minio: MinioConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			},
			Kafka: KafkaConfig{
				Brokers:           viper.GetStringSlice("KAFKA_BROKERS"),
				NotificationTopic: viper.GetString("KAFKA_NOTIFICATION_TOPIC"),
				ConsumerGroup:     viper.GetString("KAFKA_CONSUMER_GROUP"),
				Enabled:           viper.GetBool("KAFKA_ENABLED"),
			},
			SMTP: SMTPConfig{
				Host:     viper.GetString("SMTP_HOST"),
				Port:     viper.GetString("SMTP_PORT"),
				Username: viper.GetString("SMTP_USERNAME"),
				Password: viper.GetString("SMTP_PASSWORD"),
				From:     viper.GetString("SMTP_FROM"),
			},
		}
	})

	return ConfigInstance, nil
}
