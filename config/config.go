package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config file or the environment.
type AppConfig struct {
	AppPort string
	GinMode string
	GinPath string
	// BaseURL is the externally visible origin used to build redemption links.
	BaseURL string
	// Token signing
	JWTSecret     string
	TokenTTLHours int
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Object store (S3 compatible)
	S3Endpoint     string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
	LinkTTLMinutes int
	// Outbound mail (Mailgun HTTP API)
	MailAPIBase  string
	MailDomain   string
	MailAPIKey   string
	MailFrom     string
	MailFromName string
	SupportEmail string
	// Redis for the redemption marker
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Abuse control on the request form
	RateLimitPerMinute int
	// Administrative seed file for datafile records
	SeedPath string
}

// fileConfig mirrors config/config.json with grouped sections.
type fileConfig struct {
	App struct {
		Port               string `json:"Port"`
		GinMode            string `json:"GinMode"`
		GinPath            string `json:"GinPath"`
		BaseURL            string `json:"BaseURL"`
		JWTSecret          string `json:"JWTSecret"`
		TokenTTLHours      int    `json:"TokenTTLHours"`
		RateLimitPerMinute int    `json:"RateLimitPerMinute"`
		SeedPath           string `json:"SeedPath"`
	} `json:"app"`
	Database struct {
		DatabaseURI string `json:"DatabaseURI"`
		DBHost      string `json:"DBHost"`
		DBPort      string `json:"DBPort"`
		DBUser      string `json:"DBUser"`
		DBPassword  string `json:"DBPassword"`
		DBName      string `json:"DBName"`
	} `json:"database"`
	S3 struct {
		Endpoint       string `json:"Endpoint"`
		Region         string `json:"Region"`
		AccessKey      string `json:"AccessKey"`
		SecretKey      string `json:"SecretKey"`
		Bucket         string `json:"Bucket"`
		UseSSL         bool   `json:"UseSSL"`
		LinkTTLMinutes int    `json:"LinkTTLMinutes"`
	} `json:"s3"`
	Mail struct {
		APIBase      string `json:"APIBase"`
		Domain       string `json:"Domain"`
		APIKey       string `json:"APIKey"`
		From         string `json:"From"`
		FromName     string `json:"FromName"`
		SupportEmail string `json:"SupportEmail"`
	} `json:"mail"`
	Redis struct {
		Host     string `json:"Host"`
		Port     int    `json:"Port"`
		DB       int    `json:"DB"`
		Password string `json:"Password"`
	} `json:"redis"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Fatalf("invalid config file: %v", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// loadJSONConfig reads the JSON file into out if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // missing file is fine, env can carry everything
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	out.AppPort = fc.App.Port
	out.GinMode = fc.App.GinMode
	out.GinPath = fc.App.GinPath
	out.BaseURL = fc.App.BaseURL
	out.JWTSecret = fc.App.JWTSecret
	out.TokenTTLHours = fc.App.TokenTTLHours
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.SeedPath = fc.App.SeedPath

	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName

	out.S3Endpoint = fc.S3.Endpoint
	out.S3Region = fc.S3.Region
	out.S3AccessKey = fc.S3.AccessKey
	out.S3SecretKey = fc.S3.SecretKey
	out.S3Bucket = fc.S3.Bucket
	out.S3UseSSL = fc.S3.UseSSL
	out.LinkTTLMinutes = fc.S3.LinkTTLMinutes

	out.MailAPIBase = fc.Mail.APIBase
	out.MailDomain = fc.Mail.Domain
	out.MailAPIKey = fc.Mail.APIKey
	out.MailFrom = fc.Mail.From
	out.MailFromName = fc.Mail.FromName
	out.SupportEmail = fc.Mail.SupportEmail

	out.RedisHost = fc.Redis.Host
	out.RedisPort = fc.Redis.Port
	out.RedisDB = fc.Redis.DB
	out.RedisPassword = fc.Redis.Password

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin_access.log"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.AppPort
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "datafiles"
	}
	if c.S3Endpoint == "" {
		c.S3Endpoint = "s3.amazonaws.com"
	}
	if c.S3Bucket == "" {
		c.S3Bucket = "pidgraph-data-dumps"
	}
	if c.LinkTTLMinutes == 0 {
		c.LinkTTLMinutes = 5
	}
	if c.MailAPIBase == "" {
		c.MailAPIBase = "https://api.mailgun.net/v3"
	}
	if c.MailDomain == "" {
		c.MailDomain = "mg.datacite.org"
	}
	if c.MailFrom == "" {
		c.MailFrom = "support@datacite.org"
	}
	if c.MailFromName == "" {
		c.MailFromName = "DataCite Data Files Service"
	}
	if c.SupportEmail == "" {
		c.SupportEmail = "support@datacite.org"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 10
	}
	if c.SeedPath == "" {
		c.SeedPath = "config/datafiles.json"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	setString(&c.AppPort, "APP_PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.GinPath, "GIN_PATH")
	setString(&c.BaseURL, "BASE_URL")
	setString(&c.JWTSecret, "JWT_SECRET")
	setInt(&c.TokenTTLHours, "TOKEN_TTL_HOURS")
	setString(&c.DatabaseURI, "DATABASE_URI")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.S3Endpoint, "S3_ENDPOINT")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3AccessKey, "S3_ACCESS_KEY")
	setString(&c.S3SecretKey, "S3_SECRET_KEY")
	setString(&c.S3Bucket, "S3_BUCKET")
	setBool(&c.S3UseSSL, "S3_USE_SSL")
	setInt(&c.LinkTTLMinutes, "LINK_TTL_MINUTES")
	setString(&c.MailAPIBase, "MAILGUN_ENDPOINT")
	setString(&c.MailDomain, "MAILGUN_DOMAIN")
	setString(&c.MailAPIKey, "MAILGUN_API_KEY")
	setString(&c.MailFrom, "EMAIL_ADDRESS")
	setString(&c.MailFromName, "EMAIL_FROM")
	setString(&c.SupportEmail, "SUPPORT_EMAIL")
	setString(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setString(&c.RedisPassword, "REDIS_PASSWORD")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogPath, "LOG_PATH")
	setInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&c.LogCompress, "LOG_COMPRESS")
	setInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	setString(&c.SeedPath, "SEED_PATH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s: %v", key, err)
		}
		*dst = i
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
