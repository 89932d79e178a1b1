package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string   `env:"PORT" envDefault:"3000"`
		ReadTimeout     int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int      `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxConns           int32  `env:"MAX_CONNS" envDefault:"10"`
		MinConns           int32  `env:"MIN_CONNS" envDefault:"2"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		MigrationsPath     string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	} `envPrefix:"DATABASE_"`
	// InitialDev 是启动时保证存在的开发者账号，身份由外部认证服务签发的令牌中的 sub 确定
	InitialDev struct {
		Username string `env:"USERNAME" envDefault:"dev"`
		FullName string `env:"FULL_NAME" envDefault:"开发者"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_DEV_"`
	JWT struct {
		Secret     string `env:"SECRET,required"`
		Issuer     string `env:"ISSUER"`
		CookieName string `env:"COOKIE_NAME" envDefault:"token"`
	} `envPrefix:"JWT_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST" envDefault:"localhost"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Layout struct {
		PaddingPx int `env:"PADDING_PX" envDefault:"4"`
	} `envPrefix:"LAYOUT_"`
	RateLimit struct {
		Enabled bool    `env:"ENABLED" envDefault:"true"`
		RPS     float64 `env:"RPS" envDefault:"5"`
		Burst   int     `env:"BURST" envDefault:"10"`
	} `envPrefix:"RATE_LIMIT_"`
	Calendar struct {
		MaxRangeDays int `env:"MAX_RANGE_DAYS" envDefault:"62"`
		CacheTTL     int `env:"CACHE_TTL" envDefault:"300"` // 秒
	} `envPrefix:"CALENDAR_"`
	Seed struct {
		Users int `env:"USERS" envDefault:"20"`
	} `envPrefix:"SEED_"`
}

// LoadConfig 先读取可选的 .env 文件，再解析环境变量，已存在的环境变量不会被覆盖
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
