package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env               string
		Debug             bool
		TestMode          bool
		AppName           string
		Build             string
		WorkDir           string
		SecretKey         string
		FrontendBaseURL   string
		AllowRegistration bool
		DefaultFromEmail  string
		SendgridApiKey    string
		RollbarToken      string

		Server   ServerConfig
		Database DatabaseConfig
		Storage  StorageConfig
		Upload   UploadConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		Repository string // postgres | memory
	}

	UploadConfig struct {
		Driver     string // bolt | s3 | memory
		MaxSize    int64
		BoltPath   string
		S3Bucket   string
		S3Region   string
		S3Endpoint string
		S3Prefix   string
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultFrom parses DefaultFromEmail, falling back to the raw value as address.
func (c *Config) DefaultFrom() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "DEV")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Student Portal")
	v.SetDefault("build", "develop")
	v.SetDefault("workDir", ".")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000/")
	v.SetDefault("allowRegistration", false)
	v.SetDefault("defaultFromEmail", "Student Portal <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "student_portal")
	v.SetDefault("database.user", "portal")
	v.SetDefault("database.password", "portal")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("storage.repository", "postgres")

	v.SetDefault("upload.driver", "bolt")
	v.SetDefault("upload.maxSize", 10<<20)
	v.SetDefault("upload.boltPath", filepath.Join("data", "uploads.db"))
	v.SetDefault("upload.s3Bucket", "")
	v.SetDefault("upload.s3Region", "us-east-1")
	v.SetDefault("upload.s3Endpoint", "")
	v.SetDefault("upload.s3Prefix", "uploads/")
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and
// environment variables prefixed with APP_ (eg. APP_SERVER_PORT=8080).
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("APP_ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.Set("env", env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(os.Getenv("APP_WORKDIR"), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(conf, hook); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return conf, nil
}

// NewTestConfig returns a Config suitable for tests: debug off, in-memory storage.
func NewTestConfig() *Config {
	return &Config{
		Env:               "TEST",
		TestMode:          true,
		AppName:           "Student Portal",
		Build:             "test",
		WorkDir:           ".",
		SecretKey:         "test-secret",
		FrontendBaseURL:   "http://localhost:3000/",
		AllowRegistration: true,
		DefaultFromEmail:  "noreply@test.local",
		Server: ServerConfig{
			Port:                      8000,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Storage: StorageConfig{Repository: "memory"},
		Upload:  UploadConfig{Driver: "memory", MaxSize: 1 << 20},
	}
}
