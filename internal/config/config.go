package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int
	// DebounceWindow is the quiet period after a trigger (file load, filter
	// change, rule edit) before a scheduled audit run executes.
	DebounceWindow time.Duration
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8084"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	debounceMS, _ := strconv.Atoi(getenv("DEBOUNCE_MS", "150"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           port,
		AllowOrigins:   origins,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        getenv("LOG_FILE", "logs/drawing-audit.log"),
		MaxUploadMB:    mb,
		DebounceWindow: time.Duration(debounceMS) * time.Millisecond,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
