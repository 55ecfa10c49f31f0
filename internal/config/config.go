package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Env        string                    `mapstructure:"env"`
	Server     ServerConfig              `mapstructure:"server"`
	GRPC       GRPCConfig                `mapstructure:"grpc"`
	Database   DatabaseConfig            `mapstructure:"database"`
	Redis      RedisConfig               `mapstructure:"redis"`
	Auth       AuthConfig                `mapstructure:"auth"`
	Events     EventsConfig              `mapstructure:"events"`
	Documents  DocumentsConfig           `mapstructure:"documents"`
	Uploads    UploadsConfig             `mapstructure:"uploads"`
	Legal      LegalConfig               `mapstructure:"legal"`
	Categories map[string]CategoryConfig `mapstructure:"categories"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	Namespace string `mapstructure:"namespace"`
}

type AuthConfig struct {
	// bcrypt hash of the staff password
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	// login attempts per client per minute
	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`
}

type EventsConfig struct {
	// nats, kafka or none
	Broker string      `mapstructure:"broker"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type DocumentsConfig struct {
	Dir        string `mapstructure:"dir"`
	URLPrefix  string `mapstructure:"url_prefix"`
	LogoPath   string `mapstructure:"logo_path"`
	IssuePlace string `mapstructure:"issue_place"`
	Timezone   string `mapstructure:"timezone"`
}

type UploadsConfig struct {
	Dir         string `mapstructure:"dir"`
	URLPrefix   string `mapstructure:"url_prefix"`
	MaxFileSize int64  `mapstructure:"max_file_size_bytes"`
}

// LegalConfig feeds the legal notice page.
type LegalConfig struct {
	Organization string `mapstructure:"organization"`
	Manager      string `mapstructure:"manager"`
	Host         string `mapstructure:"host"`
	Contact      string `mapstructure:"contact"`
}

type CategoryConfig struct {
	DisplayName string `mapstructure:"display_name"`
	MinAge      int    `mapstructure:"min_age"`
	MaxAge      int    `mapstructure:"max_age"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.idle_timeout_seconds", 120)
	v.SetDefault("grpc.port", "9090")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "scouts_cluses")

	v.SetDefault("redis.namespace", "inscription")

	v.SetDefault("auth.session_ttl", 8*time.Hour)
	v.SetDefault("auth.login_rate", 10)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("events.broker", "none")
	v.SetDefault("events.nats.subject", "registrations.created")
	v.SetDefault("events.kafka.topic", "registrations")

	v.SetDefault("documents.dir", "public/pdfs")
	v.SetDefault("documents.url_prefix", "/pdfs")
	v.SetDefault("documents.issue_place", "Cluses")
	v.SetDefault("documents.timezone", "Europe/Paris")

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.url_prefix", "/uploads")
	v.SetDefault("uploads.max_file_size_bytes", 10*1024*1024)

	v.SetDefault("legal.organization", "Association Scouts & Guides de Cluses - RNA W741000XXX")
	v.SetDefault("legal.manager", "Mathéo D.")
	v.SetDefault("legal.host", "OVH")
	v.SetDefault("legal.contact", "contact@scouts-cluses.fr")

	v.SetDefault("categories", map[string]any{
		"scout":     map[string]any{"display_name": "Scouts", "min_age": 11, "max_age": 17},
		"guide":     map[string]any{"display_name": "Guides", "min_age": 11, "max_age": 17},
		"louveteau": map[string]any{"display_name": "Louveteaux", "min_age": 8, "max_age": 11},
	})
}

// Load reads config.<ENV>.yaml and applies environment overrides.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags behaves like Load and additionally binds the given command
// line flags, which take precedence over file and environment values.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // repository root
	v.AddConfigPath("../configs") // IDE from cmd/

	// Config file is optional - continue with ENV variables
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("auth.admin_password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("redis.url", "REDIS_URL")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env

	return &cfg, nil
}
