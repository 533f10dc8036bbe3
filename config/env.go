package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 环境变量名
const (
	EnvAddr          = "SKYBRAWL_ADDR"
	EnvAdminAddr     = "SKYBRAWL_ADMIN_ADDR"
	EnvMaxPlayers    = "SKYBRAWL_MAX_PLAYERS"
	EnvTickHz        = "SKYBRAWL_TICK_HZ"
	EnvClientTimeout = "SKYBRAWL_CLIENT_TIMEOUT"
	EnvLogFile       = "SKYBRAWL_LOG_FILE"
)

// LoadEnv 加载 .env 文件（不存在不算错误），已存在的环境变量不会被覆盖
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv 用环境变量覆盖服务器配置；解析失败的变量返回错误，其余照常生效
func ApplyEnv(s *Server) error {
	var errs []error
	if v := os.Getenv(EnvAddr); v != "" {
		s.Addr = v
	}
	if v := os.Getenv(EnvAdminAddr); v != "" {
		s.AdminAddr = v
	}
	if v := os.Getenv(EnvMaxPlayers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s=%q: want positive integer", EnvMaxPlayers, v))
		} else {
			s.MaxPlayers = n
		}
	}
	if v := os.Getenv(EnvTickHz); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s=%q: want positive integer", EnvTickHz, v))
		} else {
			s.TickHz = n
		}
	}
	if v := os.Getenv(EnvClientTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s=%q: want positive duration", EnvClientTimeout, v))
		} else {
			s.ClientTimeout = d
		}
	}
	return errors.Join(errs...)
}

// LogFile 返回日志文件路径（环境变量优先）
func LogFile(def string) string {
	if v := os.Getenv(EnvLogFile); v != "" {
		return v
	}
	return def
}
