package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	OIDC    OIDCConfig    `mapstructure:"oidc"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Content ContentConfig `mapstructure:"content"`
	GitHub  GitHubConfig  `mapstructure:"github"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port            string    `mapstructure:"port"`
	BaseURL         string    `mapstructure:"baseURL"`
	SiteTitle       string    `mapstructure:"siteTitle"`
	SiteDescription string    `mapstructure:"siteDescription"`
	TLS             TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // mysql, sqlite3 or pgx
	DSN    string `mapstructure:"dsn"`
}

// OIDCConfig holds OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string   `mapstructure:"issuer_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	AdminEmails  []string `mapstructure:"admin_emails"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	SecretKey string `mapstructure:"secretKey"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Driver        string `mapstructure:"driver"` // sqlite or redis
	FilePath      string `mapstructure:"filePath"`
	RedisAddr     string `mapstructure:"redisAddr"`
	RedisPassword string `mapstructure:"redisPassword"`
	RedisDB       int    `mapstructure:"redisDB"`
	TTLSeconds    int    `mapstructure:"ttlSeconds"`
}

// ContentConfig controls the markdown pipeline and content limits.
type ContentConfig struct {
	MaxCommentLength  int    `mapstructure:"maxCommentLength"`
	MaxPostLength     int    `mapstructure:"maxPostLength"`
	LightTheme        string `mapstructure:"lightTheme"`
	DarkTheme         string `mapstructure:"darkTheme"`
	InlineStyles      bool   `mapstructure:"inlineStyles"`
	SanitizeTrusted   bool   `mapstructure:"sanitizeTrusted"`
	HiddenPlaceholder string `mapstructure:"hiddenPlaceholder"`
	ExcerptLength     int    `mapstructure:"excerptLength"`
}

// GitHubConfig configures README fetching for projects.
type GitHubConfig struct {
	APIURL         string `mapstructure:"apiURL"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// Flags registers the command-line flags understood by LoadConfig.
func Flags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a config file (overrides the search path)")
	flags.Bool("migrate-only", false, "apply database migrations and exit")
	flags.String("server.port", "", "HTTP listen port")
	flags.String("log.level", "", "log level")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.baseURL", "http://localhost:8080")
	v.SetDefault("server.siteTitle", "ChaKyiu Blog")
	v.SetDefault("server.siteDescription", "IT Developer Blog")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "blog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("oidc.issuer_url", "")
	v.SetDefault("oidc.client_id", "")
	v.SetDefault("oidc.client_secret", "")
	v.SetDefault("oidc.redirect_url", "")
	v.SetDefault("oidc.admin_emails", []string{})
	v.SetDefault("session.secretKey", "")
	v.SetDefault("session.lifetime", 24)
	v.SetDefault("cache.redisAddr", "localhost:6379")
	v.SetDefault("cache.redisPassword", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.filePath", "cache.db")
	v.SetDefault("cache.ttlSeconds", 300)
	v.SetDefault("content.maxCommentLength", 5000)
	v.SetDefault("content.maxPostLength", 100000)
	v.SetDefault("content.lightTheme", "github")
	v.SetDefault("content.darkTheme", "github-dark")
	v.SetDefault("content.inlineStyles", false)
	v.SetDefault("content.sanitizeTrusted", false)
	v.SetDefault("content.hiddenPlaceholder", "[removed]")
	v.SetDefault("content.excerptLength", 200)
	v.SetDefault("github.apiURL", "https://api.github.com")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeoutSeconds", 10)
}

// LoadConfig reads configuration from a .env file, the config file, environment
// variables and, when flags is non-nil, the command line.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	configFile := ""
	if flags != nil {
		configFile, _ = flags.GetString("config")
		for _, name := range []string{"server.port", "log.level"} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/chakyiu-blog/")
		v.AddConfigPath("$HOME/.chakyiu-blog")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
