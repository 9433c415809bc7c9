package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config - структура для хранения конфигураций приложения
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn  string `mapstructure:"POSTGRES_CONN"`
	PostgresUser  string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass  string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost  string `mapstructure:"POSTGRES_HOST"`
	PostgresPort  string `mapstructure:"POSTGRES_PORT"`
	PostgresDB    string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL  string `mapstructure:"MIGRATION_URL"`

	JWTSecret     string `mapstructure:"JWT_SECRET"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	OfferListRequireFilter bool          `mapstructure:"OFFER_LIST_REQUIRE_FILTER"`
	OfferPageSize          int           `mapstructure:"OFFER_PAGE_SIZE"`
	OfferMaxPageSize       int           `mapstructure:"OFFER_MAX_PAGE_SIZE"`
}

var defaults = map[string]interface{}{
	"SERVER_ADDRESS":            "0.0.0.0:8080",
	"POSTGRES_CONN":             "",
	"POSTGRES_USERNAME":         "",
	"POSTGRES_PASSWORD":         "",
	"POSTGRES_HOST":             "",
	"POSTGRES_PORT":             "5432",
	"POSTGRES_DATABASE":         "",
	"MIGRATION_URL":             "file://migrations",
	"JWT_SECRET":                "",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "marketplace",
	"REQUEST_TIMEOUT":           "5s",
	"OFFER_LIST_REQUIRE_FILTER": false,
	"OFFER_PAGE_SIZE":           5,
	"OFFER_MAX_PAGE_SIZE":       100,
}

// LoadConfig загружает конфигурацию из файла app.env в каталоге path.
// Переменные окружения имеют приоритет над файлом; отсутствие файла не считается ошибкой.
func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	if err = v.Unmarshal(&cfg); err != nil {
		return
	}
	err = cfg.validate()
	return
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.OfferPageSize <= 0 || c.OfferMaxPageSize < c.OfferPageSize {
		return fmt.Errorf("invalid page sizes: OFFER_PAGE_SIZE=%d, OFFER_MAX_PAGE_SIZE=%d", c.OfferPageSize, c.OfferMaxPageSize)
	}
	return nil
}
