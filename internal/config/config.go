package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	App struct {
		Port    int
		AgentID string
	}
	Database struct {
		URL string
	}
	Redis struct {
		Addr string
	}
	MQTT struct {
		Broker   string
		ClientID string
	}
	JWT struct {
		Secret string
	}
	MDNS struct {
		LocalName string
	}
	RemoteAccess struct {
		Enabled        bool
		PublicWS       string
		RetryDelaySecs int
	}
	Simulator struct {
		Enabled      bool
		IntervalSecs int
	}
	LogLevel string
}

// LoadConfig reads configuration from .env and environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("CONFIG: no .env file loaded:", err)
	}

	viper.AutomaticEnv()
	viper.SetDefault("PORT", 5069)
	viper.SetDefault("MQTT_CLIENT_ID", "powerhub-backend")
	viper.SetDefault("MDNS_LOCAL_NAME", "powerhub.local")
	viper.SetDefault("REMOTE_ACCESS_RETRY_SECS", 2)
	viper.SetDefault("SIMULATOR_INTERVAL_SECS", 5)

	cfg := &Config{}
	cfg.App.Port = viper.GetInt("PORT")
	cfg.App.AgentID = viper.GetString("AGENT_ID")
	cfg.Database.URL = viper.GetString("DB_URL")
	cfg.Redis.Addr = viper.GetString("REDIS_ADDR")
	cfg.MQTT.Broker = viper.GetString("MQTT_BROKER")
	cfg.MQTT.ClientID = viper.GetString("MQTT_CLIENT_ID")
	cfg.JWT.Secret = viper.GetString("JWT_SECRET")
	cfg.MDNS.LocalName = viper.GetString("MDNS_LOCAL_NAME")
	cfg.RemoteAccess.Enabled = viper.GetBool("REMOTE_ACCESS_ENABLED")
	cfg.RemoteAccess.PublicWS = viper.GetString("REMOTE_ACCESS_PUBLIC_WS")
	cfg.RemoteAccess.RetryDelaySecs = viper.GetInt("REMOTE_ACCESS_RETRY_SECS")
	cfg.Simulator.Enabled = viper.GetBool("SIMULATOR_ENABLED")
	cfg.Simulator.IntervalSecs = viper.GetInt("SIMULATOR_INTERVAL_SECS")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")
	return cfg, nil
}
