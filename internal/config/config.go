package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type StationConfig struct {
	DatabasePath string
	ListenAddr   string
	JWTSecret    string
	FacesDir     string

	// Telegram notifications are enabled when both values are set.
	TelegramToken  string
	TelegramChatID int64
}

var instance *StationConfig
var once sync.Once

func GetStationConfig() *StationConfig {
	once.Do(func() {
		instance = &StationConfig{}

		if err := godotenv.Load(); err != nil {
			logrus.Infof("No .env file loaded: %s", err.Error())
		}

		instance.DatabasePath = getEnv("DATABASE_PATH", "attendance.db")
		instance.ListenAddr = getEnv("LISTEN_ADDR", ":8080")
		instance.FacesDir = getEnv("FACES_DIR", "faces")

		instance.JWTSecret = getEnv("JWT_SECRET", "")
		if instance.JWTSecret == "" {
			logrus.Fatal("could not get JWT secret")
		}

		instance.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
		instance.TelegramChatID = getEnvAsInt("TELEGRAM_CHAT_ID", 0)
	})

	return instance
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}
