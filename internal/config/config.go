// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr    string `yaml:"addr"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int           `yaml:"max_conns"`
			MinConns        int           `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	SSO struct {
		TokenTimeout  time.Duration `yaml:"token_timeout"`
		JWTTTL        time.Duration `yaml:"jwt_ttl"`
		SweepSchedule string        `yaml:"sweep_schedule"`
	} `yaml:"sso"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Admin struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`

	Invite struct {
		// Días de validez de una activation key desde su emisión.
		ActivationDays int `yaml:"activation_days"`
	} `yaml:"invite"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 2 * time.Minute
	}
	if c.SSO.TokenTimeout == 0 {
		c.SSO.TokenTimeout = 5 * time.Minute
	}
	if c.SSO.JWTTTL == 0 {
		c.SSO.JWTTTL = 5 * time.Minute
	}
	if c.SSO.SweepSchedule == "" {
		c.SSO.SweepSchedule = "* * * * *"
	}
	if c.Invite.ActivationDays == 0 {
		c.Invite.ActivationDays = 45
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 60
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("PORTALGATE_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("PORTALGATE_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("PORTALGATE_BASE_URL"); ok {
		c.Server.BaseURL = v
	}
	if v, ok := getEnvStr("PORTALGATE_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("PORTALGATE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvBool("PORTALGATE_MIGRATE"); ok {
		c.Storage.Migrate = v
	}
	if v, ok := getEnvStr("PORTALGATE_CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("PORTALGATE_REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("PORTALGATE_REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("PORTALGATE_REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvDur("PORTALGATE_TOKEN_TIMEOUT"); ok {
		c.SSO.TokenTimeout = v
	}
	if v, ok := getEnvDur("PORTALGATE_JWT_TTL"); ok {
		c.SSO.JWTTTL = v
	}
	if v, ok := getEnvStr("PORTALGATE_ADMIN_API_KEY"); ok {
		c.Admin.APIKey = v
	}
	if v, ok := getEnvInt("PORTALGATE_ACTIVATION_DAYS"); ok {
		c.Invite.ActivationDays = v
	}
	if v, ok := getEnvStr("PORTALGATE_SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("PORTALGATE_SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("PORTALGATE_SMTP_USER"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("PORTALGATE_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("PORTALGATE_SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("PORTALGATE_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return errors.New("config: storage.dsn is required with the postgres driver")
	}
	if c.Cache.Kind == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("config: cache.redis.addr is required with the redis cache")
	}
	return nil
}

func getEnvStr(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	return v, ok && v != ""
}

func getEnvInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func getEnvBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	return b, err == nil
}

func getEnvDur(key string) (time.Duration, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	return d, err == nil
}
