package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFiles は存在する場合に読み込まれる .env ファイルです。
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"GRPC_LISTEN_ADDR"`
}

// HTTPConfig は GraphQL を提供する HTTP サーバーに関する設定です。
type HTTPConfig struct {
	ListenAddr           string        `yaml:"listen_addr" env:"HTTP_LISTEN_ADDR"`
	AllowedOrigins       []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	EnablePlayground     bool          `yaml:"enable_playground" env:"HTTP_ENABLE_PLAYGROUND"`
	ReadHeaderTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout      time.Duration `yaml:"-"`
	ReadHeaderTimeoutRaw string        `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	ShutdownTimeoutRaw   string        `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"DB_HOST"`
	Port               int           `yaml:"port" env:"DB_PORT"`
	User               string        `yaml:"user" env:"DB_USER"`
	Password           string        `yaml:"password" env:"DB_PASSWORD"`
	Name               string        `yaml:"name" env:"DB_NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns       int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read file %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: parse yaml")
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: parse env")
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnvFiles は存在する .env ファイルだけを読み込み、読み込んだ件数を返します。
// 既に設定済みの環境変数は上書きしません。
func LoadEnvFiles(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, errors.Wrap(err, "config: load env files")
	}
	return len(existing), nil
}

// ResolvePath は CONFIG_PATH を優先し、未設定なら既定のパスを返します。
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "assets/local.yaml"
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return errors.New("config: server.listen_addr must be set")
	}

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}

	c.Log.normalize()

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (h *HTTPConfig) validateAndNormalize() error {
	if h.ListenAddr == "" {
		return errors.New("config: http.listen_addr must be set")
	}

	readHeader, err := parseDurationAllowEmpty(h.ReadHeaderTimeoutRaw)
	if err != nil {
		return errors.Wrap(err, "config: http.read_header_timeout")
	}
	if readHeader == 0 {
		readHeader = 5 * time.Second
	}
	h.ReadHeaderTimeout = readHeader

	shutdown, err := parseDurationAllowEmpty(h.ShutdownTimeoutRaw)
	if err != nil {
		return errors.Wrap(err, "config: http.shutdown_timeout")
	}
	if shutdown == 0 {
		shutdown = 10 * time.Second
	}
	h.ShutdownTimeout = shutdown

	origins := make([]string, 0, len(h.AllowedOrigins))
	for _, origin := range h.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h.AllowedOrigins = origins

	return nil
}

func (l *LogConfig) normalize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format != "json" {
		l.Format = "text"
	}
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return errors.New("config: database.host must be set")
	}
	if d.Port == 0 {
		return errors.New("config: database.port must be set")
	}
	if d.User == "" {
		return errors.New("config: database.user must be set")
	}
	if d.Password == "" {
		return errors.New("config: database.password must be set")
	}
	if d.Name == "" {
		return errors.New("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return errors.Wrap(err, "config: database.conn_max_lifetime")
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return errors.Wrap(err, "config: database.conn_max_idle_time")
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
