package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	AMQP    AMQPConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// AMQPConfig is optional; an empty URL disables the token event publisher.
type AMQPConfig struct {
	URL      string
	Exchange string
}

type BookingConfig struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	maxRetries := viper.GetInt("BOOKING_MAX_RETRIES")
	if maxRetries <= 0 {
		maxRetries = 5
	}

	retryBackoff, err := time.ParseDuration(viper.GetString("BOOKING_RETRY_BACKOFF"))
	if err != nil {
		retryBackoff = 20 * time.Millisecond
	}

	exchange := viper.GetString("AMQP_EXCHANGE")
	if exchange == "" {
		exchange = "token.events"
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: exchange,
		},
		Booking: BookingConfig{
			MaxRetries:   maxRetries,
			RetryBackoff: retryBackoff,
		},
	}

	return config, nil
}
