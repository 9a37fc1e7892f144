// Command voicedetectd serves the AI voice detection API over HTTP.
package main

import (
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicedetect"
	"github.com/opd-ai/voicedetect/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	setupLogging()

	cfg := voicedetect.DefaultConfig()
	if rate := getEnvInt("TARGET_SAMPLE_RATE", 0); rate > 0 {
		cfg.TargetSampleRate = rate
	}
	cfg.ModelPath = os.Getenv("MODEL_PATH")
	cfg.RuleTablePath = os.Getenv("RULE_TABLE_PATH")
	cfg.NoiseReduction = getEnvBool("NOISE_REDUCTION", false)

	detector, err := voicedetect.New(cfg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Fatal("Failed to build detector")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(detector, server.Config{
		APIKey: getEnv("API_KEY", "sk_test_123456789"),
	})

	addr := getEnv("HOST", "0.0.0.0") + ":" + getEnv("PORT", "8000")
	logrus.WithFields(logrus.Fields{
		"function": "main",
		"addr":     addr,
		"strategy": detector.Strategy(),
	}).Info("Voice detection API starting")

	if err := srv.Router().Run(addr); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Fatal("Server stopped")
	}
}

func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
