// config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Database      DatabaseConfiguration
	Redis         RedisConfiguration
	Auth          AuthConfiguration
	Elasticsearch ElasticsearchConfiguration
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	DSN string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr            string
	KeyPrefix       string
	DefaultCacheTTL string
	OpTimeout       string
}

// AuthConfiguration stores the per-class token settings
type AuthConfiguration struct {
	Admin TokenClassConfiguration
	Core  TokenClassConfiguration
}

// TokenClassConfiguration stores signing parameters for one token class
type TokenClassConfiguration struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "host=localhost user=bookhive dbname=bookhive sslmode=disable")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.keyPrefix", "bookhive")
	viper.SetDefault("redis.defaultCacheTTL", "10m")
	viper.SetDefault("redis.opTimeout", "2s")
	viper.SetDefault("elasticsearch.url", "http://localhost:9200")
	viper.SetDefault("auth.admin.issuer", "bookhive-admin")
	viper.SetDefault("auth.admin.audience", "bookhive-admin-api")
	viper.SetDefault("auth.admin.accessTTL", "15m")
	viper.SetDefault("auth.admin.refreshTTL", "168h")
	viper.SetDefault("auth.core.issuer", "bookhive-core")
	viper.SetDefault("auth.core.audience", "bookhive-api")
	viper.SetDefault("auth.core.accessTTL", "30m")
	viper.SetDefault("auth.core.refreshTTL", "720h")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	if err := viper.Unmarshal(&config); err != nil {
		return err
	}

	return validateAuth()
}

// validateAuth refuses startup when a token class has no signing secret.
// Running without one would make every token forgeable.
func validateAuth() error {
	for _, class := range []string{"admin", "core"} {
		if viper.GetString("auth."+class+".secret") == "" {
			return fmt.Errorf("auth.%s.secret is not set", class)
		}
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// TokenClass returns the signing parameters for a token class ("admin" or "core")
func TokenClass(class string) TokenClassConfiguration {
	prefix := "auth." + class + "."
	return TokenClassConfiguration{
		Secret:     viper.GetString(prefix + "secret"),
		Issuer:     viper.GetString(prefix + "issuer"),
		Audience:   viper.GetString(prefix + "audience"),
		AccessTTL:  viper.GetDuration(prefix + "accessTTL"),
		RefreshTTL: viper.GetDuration(prefix + "refreshTTL"),
	}
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
