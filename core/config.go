package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug             bool   `mapstructure:"debug"`
		TestMode          bool   `mapstructure:"testMode"`
		Env               string `mapstructure:"-"`
		Build             string `mapstructure:"build"`
		AppName           string `mapstructure:"appName"`
		SecretKey         string `mapstructure:"secretKey"`
		FrontendBaseURL   string `mapstructure:"frontendBaseURL"`
		DefaultFromEmailS string `mapstructure:"defaultFromEmail"`
		SendgridApiKey    string `mapstructure:"sendgridApiKey"`
		RollbarToken      string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Payment  PaymentConfig  `mapstructure:"payment"`
		Quiz     QuizConfig     `mapstructure:"quiz"`
	}

	ServerConfig struct {
		Host                      string        `mapstructure:"host"`
		Address                   string        `mapstructure:"address"`
		DebugHost                 string        `mapstructure:"debugHost"`
		ShutdownTimeout           time.Duration `mapstructure:"shutdownTimeout"`
		JWTExpirationDelta        time.Duration `mapstructure:"jwtExpirationDelta"`
		JWTRefreshExpirationDelta time.Duration `mapstructure:"jwtRefreshExpirationDelta"`
	}

	DatabaseConfig struct {
		Engine        string `mapstructure:"engine"`
		Host          string `mapstructure:"host"`
		Port          string `mapstructure:"port"`
		User          string `mapstructure:"user"`
		Password      string `mapstructure:"password"`
		AdminUser     string `mapstructure:"adminUser"`
		AdminPassword string `mapstructure:"adminPassword"`
		Name          string `mapstructure:"name"`
		DisableTLS    bool   `mapstructure:"disableTLS"`
	}

	PaymentConfig struct {
		WebhookSecret string `mapstructure:"webhookSecret"`
	}

	QuizConfig struct {
		PassMark int `mapstructure:"passMark"`
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmailS)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailS}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Darasa")
	v.SetDefault("secretKey", "k3b9-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "darasa")
	v.SetDefault("database.password", "darasa")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.name", "darasa")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("payment.webhookSecret", "")
	v.SetDefault("quiz.passMark", 70)
}

// NewConfig loads the configuration of the current environment.
// ENV selects the environment: DEV (default), TEST, QA, PROD.
// Values are read from defaults, then `config/.env.<env>` (if it exists), then the environment,
// e.g. DEV_DATABASE_HOST overrides database.host in DEV.
func NewConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	conf.Env = env

	if !conf.Debug && !conf.TestMode && conf.Payment.WebhookSecret == "" {
		return nil, fmt.Errorf("%s_PAYMENT_WEBHOOKSECRET is required outside debug mode", env)
	}
	return conf, nil
}

// configDir is CONFIG_DIR when set, `./config` otherwise.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}
