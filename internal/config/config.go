package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr         string
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Smartsheet Smartsheet `mapstructure:"smartsheet"`

	Sync struct {
		Enabled      bool
		Interval     time.Duration
		InitialDelay time.Duration `mapstructure:"initial_delay"`
	} `mapstructure:"sync"`

	Telegram struct {
		Token       string
		AdminChatID int64 `mapstructure:"admin_chat_id"`
	} `mapstructure:"telegram"`
}

type Smartsheet struct {
	BaseURL             string        `mapstructure:"base_url"`
	Token               string        `mapstructure:"token"`
	MaterialsSheetID    string        `mapstructure:"materials_sheet_id"`
	MeasurementsSheetID string        `mapstructure:"measurements_sheet_id"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Configured reports whether reads and writes of the measurements sheet are possible.
func (s Smartsheet) Configured() bool {
	return s.Token != "" && s.MeasurementsSheetID != ""
}

func Load(path string) (Config, error) {
	// .env is optional
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// APP_SMARTSHEET_TOKEN -> smartsheet.token
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	c.Smartsheet.BaseURL = strings.TrimRight(c.Smartsheet.BaseURL, "/")
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "America/Sao_Paulo")
	v.SetDefault("http.addr", ":4001")
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("smartsheet.base_url", "https://api.smartsheet.com/2.0")
	v.SetDefault("smartsheet.token", "")
	v.SetDefault("smartsheet.materials_sheet_id", "")
	v.SetDefault("smartsheet.measurements_sheet_id", "")
	v.SetDefault("smartsheet.timeout", 20*time.Second)
	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.interval", 3*time.Minute)
	v.SetDefault("sync.initial_delay", 10*time.Second)
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
}
