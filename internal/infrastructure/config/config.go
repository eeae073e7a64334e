package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Events   EventsConfig   `mapstructure:"events"`
	Users    []UserConfig   `mapstructure:"users"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig 快照存储配置
// 集合以键值对形式整体持久化：一个集合对应一个键、一个JSON blob
type StorageConfig struct {
	Driver           string `mapstructure:"driver"`            // redis | file
	BooksKey         string `mapstructure:"books_key"`         // 图书集合的存储键
	NotificationsKey string `mapstructure:"notifications_key"` // 通知账本的存储键
	FileDir          string `mapstructure:"file_dir"`          // file驱动的数据目录
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

// MetadataConfig 外部图书元数据服务(Google Books)配置
type MetadataConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EventsConfig 变更事件发布配置(RabbitMQ,可选)
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// UserConfig 静态身份目录中的一个账号
// 密码可为明文(password)或bcrypt哈希(password_hash),二选一
type UserConfig struct {
	ID           string `mapstructure:"id"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
	Role         string `mapstructure:"role"` // admin | user
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量LIBRARY_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如LIBRARY_JWT_SECRET）
func Load() (*Config, error) {
	v := viper.New()

	// 设置配置文件路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 环境特定配置（如config.prod.yaml）
	if env := viper.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 环境变量绑定（自动转换，如LIBRARY_JWT_SECRET → jwt.secret）
	v.SetEnvPrefix("LIBRARY")
	v.AutomaticEnv()

	// 解析到结构体
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	// 配置验证
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults 补齐缺省项
func applyDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.BooksKey == "" {
		cfg.Storage.BooksKey = "books"
	}
	if cfg.Storage.NotificationsKey == "" {
		cfg.Storage.NotificationsKey = "notifications"
	}
	if cfg.Storage.FileDir == "" {
		cfg.Storage.FileDir = "./data"
	}
	if cfg.Metadata.BaseURL == "" {
		cfg.Metadata.BaseURL = "https://www.googleapis.com/books/v1"
	}
	if cfg.Metadata.Timeout <= 0 {
		cfg.Metadata.Timeout = 5 * time.Second
	}
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.Storage.Driver != "redis" && cfg.Storage.Driver != "file" {
		return fmt.Errorf("无效的存储驱动: %s (仅支持 redis | file)", cfg.Storage.Driver)
	}

	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if len(cfg.Users) == 0 {
		return fmt.Errorf("身份目录为空: 至少需要配置一个账号")
	}
	for _, u := range cfg.Users {
		if u.Role != "admin" && u.Role != "user" {
			return fmt.Errorf("账号%s的角色无效: %s (仅支持 admin | user)", u.Username, u.Role)
		}
	}

	return nil
}
