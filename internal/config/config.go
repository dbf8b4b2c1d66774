package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Load reads the .env file named by MENTALIZE_ENV (or .env by default), then
// its .secret sidecar if present. Variables already set in the environment
// win over both files.
func Load() error {
	envFile := os.Getenv("MENTALIZE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil || port <= 0 {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is empty when run history is disabled.
func DatabaseURL() string {
	return strings.TrimSpace(os.Getenv("DATABASE_URL"))
}

// ScenarioDir is scanned for extra scenario YAML files. Defaults to "scenarios".
func ScenarioDir() string {
	dir := os.Getenv("SCENARIO_DIR")
	if dir == "" {
		return "scenarios"
	}
	return dir
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// EvalConcurrency bounds the profiles evaluated in parallel by a comparison.
func EvalConcurrency() int {
	n, err := strconv.Atoi(os.Getenv("EVAL_CONCURRENCY"))
	if err != nil || n <= 0 {
		return 4
	}
	return n
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

// ZapLevel parses LogLevel, falling back to info for unknown names.
func ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(LogLevel())
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
