package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name        string
	Env         string // "dev" / "prod"，影响 Cookie 的 Secure 标记
	HTTP        HTTP
	Admin       AdminHTTP
	CORSOrigins []string `mapstructure:"corsOrigins"` // 带 Cookie 跨域需要显式来源
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	SessionTTLDays    int // 会话 Cookie 窗口，默认 5 天
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Upload struct {
	Dir     string // 商品图片落盘目录
	BaseURL string // 对外可访问前缀，如 /uploads
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Upload Upload
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.JWT.SessionTTLDays <= 0 {
		c.JWT.SessionTTLDays = 5
	}
	if c.Upload.BaseURL == "" {
		c.Upload.BaseURL = "/uploads"
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = "./uploads"
	}
}

// Validate 协作方配置缺失时 fail closed：返回错误而不是让进程带病启动
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "jwt.secret")
	}
	if c.DB.Driver == "" {
		missing = append(missing, "db.driver")
	}
	if c.DB.DSN == "" {
		missing = append(missing, "db.dsn")
	}
	if len(missing) > 0 {
		return errors.New("missing config: " + strings.Join(missing, ", "))
	}
	return nil
}

// IsProd 生产环境下会话 Cookie 加 Secure
func (c *Config) IsProd() bool { return strings.EqualFold(c.App.Env, "prod") }
