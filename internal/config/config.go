package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	TrustedProxies []string `mapstructure:"trustedProxies"`
	// 每个客户端 IP 每秒允许的下单请求数
	CheckoutRPS   float64 `mapstructure:"checkoutRps"`
	CheckoutBurst int     `mapstructure:"checkoutBurst"`
}

type LogCfg struct {
	Dir    string `mapstructure:"dir"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SupabaseCfg struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"serviceKey"`
	TimeoutSec int    `mapstructure:"timeoutSec"`
}

type AsaasCfg struct {
	BaseURL      string `mapstructure:"baseUrl"`
	APIKey       string `mapstructure:"apiKey"`
	WebhookToken string `mapstructure:"webhookToken"`
	TimeoutSec   int    `mapstructure:"timeoutSec"`
}

type CheckoutCfg struct {
	DueDays        int    `mapstructure:"dueDays"`
	Timezone       string `mapstructure:"timezone"`
	DedupWindowSec int    `mapstructure:"dedupWindowSec"`
	DedupTTLSec    int    `mapstructure:"dedupTtlSec"`
	InFlightTTLSec int    `mapstructure:"inFlightTtlSec"` // 去重键处理中状态的存活时间
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitCfg struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

// Enabled 未配置 host 时不启用审计库
func (c MysqlCfg) Enabled() bool { return strings.TrimSpace(c.Host) != "" }

type SecurityCfg struct {
	// Supabase 项目的 JWT secret，为空则不校验请求者身份
	JWTSecret string `mapstructure:"jwtSecret"`
}

type TelegramCfg struct {
	BotToken string `mapstructure:"botToken"`
	ChatID   int64  `mapstructure:"chatId"`
}

// HealthCfg 上游成功率统计，低于阈值告警
type HealthCfg struct {
	Strategy  string  `mapstructure:"strategy"` // ewma | sliding | decay
	Threshold float64 `mapstructure:"threshold"`
	TTLSec    int     `mapstructure:"ttlSec"`
}

type SnowflakeCfg struct {
	NodeID int64 `mapstructure:"nodeId"`
}

type Root struct {
	Server     ServerCfg    `mapstructure:"server"`
	Log        LogCfg       `mapstructure:"log"`
	Supabase   SupabaseCfg  `mapstructure:"supabase"`
	Asaas      AsaasCfg     `mapstructure:"asaas"`
	Checkout   CheckoutCfg  `mapstructure:"checkout"`
	Redis      RedisCfg     `mapstructure:"redis"`
	RabbitMQ   RabbitCfg    `mapstructure:"rabbitmq"`
	MysqlAudit MysqlCfg     `mapstructure:"mysql_audit"`
	Security   SecurityCfg  `mapstructure:"security"`
	Telegram   TelegramCfg  `mapstructure:"telegram"`
	Health     HealthCfg    `mapstructure:"health"`
	Snowflake  SnowflakeCfg `mapstructure:"snowflake"`
}

func (c Root) AsaasTimeout() time.Duration {
	return time.Duration(c.Asaas.TimeoutSec) * time.Second
}

func (c Root) SupabaseTimeout() time.Duration {
	return time.Duration(c.Supabase.TimeoutSec) * time.Second
}

func (c Root) HealthTTL() time.Duration {
	return time.Duration(c.Health.TTLSec) * time.Second
}

func (c Root) DedupWindow() time.Duration {
	return time.Duration(c.Checkout.DedupWindowSec) * time.Second
}

func (c Root) DedupTTL() time.Duration {
	return time.Duration(c.Checkout.DedupTTLSec) * time.Second
}

func (c Root) InFlightTTL() time.Duration {
	return time.Duration(c.Checkout.InFlightTTLSec) * time.Second
}

// Load 读取 config/config.<env>.yaml，环境变量 CHECKOUT_* 覆盖同名配置
func Load(env string) (*Root, error) {
	return LoadFile("config/config." + env + ".yaml")
}

func LoadFile(path string) (*Root, error) {
	_ = godotenv.Load() // 自动加载 .env 文件

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
	}

	var c Root
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	applyDefaults(&c)
	return &c, nil
}

// setDefaults 注册所有 key，AutomaticEnv 才能在 Unmarshal 时生效
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.trustedProxies", []string{"127.0.0.1"})
	v.SetDefault("server.checkoutRps", 2)
	v.SetDefault("server.checkoutBurst", 5)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.serviceKey", "")
	v.SetDefault("supabase.timeoutSec", 15)
	v.SetDefault("asaas.baseUrl", "https://sandbox.asaas.com/api/v3")
	v.SetDefault("asaas.apiKey", "")
	v.SetDefault("asaas.webhookToken", "")
	v.SetDefault("asaas.timeoutSec", 15)
	v.SetDefault("checkout.dueDays", 3)
	v.SetDefault("checkout.timezone", "America/Sao_Paulo")
	v.SetDefault("checkout.dedupWindowSec", 600)
	v.SetDefault("checkout.dedupTtlSec", 900)
	v.SetDefault("checkout.inFlightTtlSec", 120)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "checkout_events")
	v.SetDefault("mysql_audit.host", "")
	v.SetDefault("mysql_audit.port", 3306)
	v.SetDefault("mysql_audit.database", "")
	v.SetDefault("mysql_audit.username", "")
	v.SetDefault("mysql_audit.password", "")
	v.SetDefault("mysql_audit.charset", "utf8mb4")
	v.SetDefault("mysql_audit.maxIdleConns", 5)
	v.SetDefault("mysql_audit.maxOpenConns", 20)
	v.SetDefault("security.jwtSecret", "")
	v.SetDefault("telegram.botToken", "")
	v.SetDefault("telegram.chatId", 0)
	v.SetDefault("health.strategy", "ewma")
	v.SetDefault("health.threshold", 60)
	v.SetDefault("health.ttlSec", 1800)
	v.SetDefault("snowflake.nodeId", 1)
}

// sane defaults
func applyDefaults(c *Root) {
	if strings.TrimSpace(c.Server.Port) == "" {
		c.Server.Port = "8080"
	}
	if c.Checkout.DueDays <= 0 {
		c.Checkout.DueDays = 3
	}
	if c.Checkout.Timezone == "" {
		c.Checkout.Timezone = "America/Sao_Paulo"
	}
	if c.Checkout.DedupWindowSec <= 0 {
		c.Checkout.DedupWindowSec = 600
	}
	if c.Checkout.DedupTTLSec < c.Checkout.DedupWindowSec {
		c.Checkout.DedupTTLSec = c.Checkout.DedupWindowSec
	}
	if c.Checkout.InFlightTTLSec <= 0 || c.Checkout.InFlightTTLSec > c.Checkout.DedupTTLSec {
		c.Checkout.InFlightTTLSec = 120
	}
	if c.Asaas.TimeoutSec <= 0 {
		c.Asaas.TimeoutSec = 15
	}
	if c.Supabase.TimeoutSec <= 0 {
		c.Supabase.TimeoutSec = 15
	}
	c.Asaas.BaseURL = strings.TrimRight(c.Asaas.BaseURL, "/")
	c.Supabase.URL = strings.TrimRight(c.Supabase.URL, "/")
}

// Validate 启动前检查必填项
func (c Root) Validate() error {
	var missing []string
	if c.Supabase.URL == "" {
		missing = append(missing, "supabase.url")
	}
	if c.Supabase.ServiceKey == "" {
		missing = append(missing, "supabase.serviceKey")
	}
	if c.Asaas.APIKey == "" {
		missing = append(missing, "asaas.apiKey")
	}
	if c.Asaas.WebhookToken == "" {
		missing = append(missing, "asaas.webhookToken")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
