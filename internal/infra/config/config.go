package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig aggregates every externally supplied setting. The engine treats
// it as immutable after Load.
type AppConfig struct {
	App          AppSettings          `mapstructure:"app"`
	Postgres     PostgresSettings     `mapstructure:"postgres"`
	Redis        RedisSettings        `mapstructure:"redis"`
	Kafka        KafkaSettings        `mapstructure:"kafka"`
	Password     PasswordSettings     `mapstructure:"password"`
	Registration RegistrationSettings `mapstructure:"registration"`
	AuthCode     AuthCodeSettings     `mapstructure:"auth_code"`
	Token        TokenSettings        `mapstructure:"token"`
	Verifier     VerifierSettings     `mapstructure:"verifier"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisSettings configures the ephemeral cache connection and key prefixes.
type RedisSettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	SessionPrefix  string `mapstructure:"session_prefix"`
	AuthCodePrefix string `mapstructure:"auth_code_prefix"`
}

// KafkaSettings configures the lifecycle event producer. Empty brokers
// disable publishing.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

// PasswordSettings configures Argon2id hashing and the service pepper.
// Pepper is base64 encoded in the environment.
type PasswordSettings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
	Pepper      string `mapstructure:"pepper"`
}

// RegistrationSettings configures registration sessions and one-time codes.
type RegistrationSettings struct {
	SessionIDLength int           `mapstructure:"session_id_length"`
	SessionLifetime time.Duration `mapstructure:"session_lifetime"`
	CodeLength      int           `mapstructure:"code_length"`
}

// AuthCodeSettings configures the pending auth-code bindings.
type AuthCodeSettings struct {
	Length   int           `mapstructure:"length"`
	Lifetime time.Duration `mapstructure:"lifetime"`
}

// TokenSettings configures identity token issuance. SigningKey is base64
// encoded in the environment.
type TokenSettings struct {
	Issuer     string        `mapstructure:"issuer"`
	SigningKey string        `mapstructure:"signing_key"`
	Lifetime   time.Duration `mapstructure:"lifetime"`
}

// VerifierSettings configures the realmeye polling verifier.
type VerifierSettings struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Load reads configuration from the environment with IDENT_-prefixed keys.
func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("IDENT")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.session_prefix",
		"redis.auth_code_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"password.memory",
		"password.iterations",
		"password.parallelism",
		"password.salt_length",
		"password.key_length",
		"password.pepper",
		"registration.session_id_length",
		"registration.session_lifetime",
		"registration.code_length",
		"auth_code.length",
		"auth_code.lifetime",
		"token.issuer",
		"token.signing_key",
		"token.lifetime",
		"verifier.base_url",
		"verifier.timeout",
		"verifier.poll_interval",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "realmeye-identity")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "identity")
	v.SetDefault("postgres.password", "identity_password")
	v.SetDefault("postgres.database", "identity")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.session_prefix", "regsession")
	v.SetDefault("redis.auth_code_prefix", "authcode")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "identity")

	v.SetDefault("password.memory", 65536)
	v.SetDefault("password.iterations", 3)
	v.SetDefault("password.parallelism", 4)
	v.SetDefault("password.salt_length", 16)
	v.SetDefault("password.key_length", 32)
	v.SetDefault("password.pepper", "")

	v.SetDefault("registration.session_id_length", 32)
	v.SetDefault("registration.session_lifetime", "15m")
	v.SetDefault("registration.code_length", 16)

	v.SetDefault("auth_code.length", 32)
	v.SetDefault("auth_code.lifetime", "1m")

	v.SetDefault("token.issuer", "realmeye-identity")
	v.SetDefault("token.signing_key", "")
	v.SetDefault("token.lifetime", "15m")

	v.SetDefault("verifier.base_url", "https://www.realmeye.com")
	v.SetDefault("verifier.timeout", "10s")
	v.SetDefault("verifier.poll_interval", "1s")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}
