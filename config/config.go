// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"` // e.g. "24h"
}

type OSRMConfig struct {
	BaseURL        string `mapstructure:"baseURL"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type WeatherConfig struct {
	APIKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"baseURL"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// Config is built once in main and passed by reference; nothing reads viper
// after startup.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	OSRM    OSRMConfig    `mapstructure:"osrm"`
	Weather WeatherConfig `mapstructure:"weather"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

// LoadConfig reads configuration from file and overrides with env variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("osrm.baseURL", "OSRM_BASE_URL")
	viper.BindEnv("osrm.timeoutSeconds", "OSRM_TIMEOUT_SECONDS")
	viper.BindEnv("weather.apiKey", "OPENWEATHER_API_KEY")
	viper.BindEnv("weather.baseURL", "OPENWEATHER_BASE_URL")
	viper.BindEnv("weather.timeoutSeconds", "OPENWEATHER_TIMEOUT_SECONDS")
	viper.BindEnv("admin.email", "ADMIN_EMAIL")
	viper.BindEnv("admin.password", "ADMIN_PASSWORD")
	viper.BindEnv("admin.name", "ADMIN_NAME")

	viper.SetDefault("server.port", "8000")
	viper.SetDefault("mongo.dbName", "disaster_relief")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("osrm.baseURL", "http://localhost:4000")
	viper.SetDefault("osrm.timeoutSeconds", 10)
	viper.SetDefault("weather.baseURL", "https://api.openweathermap.org/data/2.5")
	viper.SetDefault("weather.timeoutSeconds", 10)
	viper.SetDefault("admin.email", "admin@relief.local")
	viper.SetDefault("admin.name", "Admin")

	// If the file does not exist, viper just uses env vars and defaults.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
