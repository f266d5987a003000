// Package config loads boardflow settings from boardflow.yaml, the
// environment and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/jira"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
	"github.com/felixgeelhaar/boardflow/pkg/domain/messaging"
)

// FileName is the config file looked up in the working directory.
const FileName = "boardflow.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BOARDFLOW"

// Config is the complete boardflow configuration.
type Config struct {
	Board           string                    `yaml:"board,omitempty" mapstructure:"board"`
	LookbackDays    int                       `yaml:"lookback_days,omitempty" mapstructure:"lookback_days"`
	ThroughputWeeks int                       `yaml:"throughput_weeks" mapstructure:"throughput_weeks"`
	OutputDir       string                    `yaml:"output_dir" mapstructure:"output_dir"`
	Timezone        string                    `yaml:"timezone,omitempty" mapstructure:"timezone"`
	Columns         ColumnsConfig             `yaml:"columns" mapstructure:"columns"`
	Jira            JiraConfig                `yaml:"jira" mapstructure:"jira"`
	Boards          map[string]jira.Preset    `yaml:"boards,omitempty" mapstructure:"boards"`
	BoardAliases    map[string]string         `yaml:"board_aliases,omitempty" mapstructure:"board_aliases"`
	Messaging       messaging.MessagingConfig `yaml:"messaging,omitempty" mapstructure:"messaging"`
	Log             LogConfig                 `yaml:"log" mapstructure:"log"`
}

// ColumnsConfig names the marker columns and the CFD column set.
type ColumnsConfig struct {
	Terminal  string   `yaml:"terminal" mapstructure:"terminal"`
	Active    string   `yaml:"active" mapstructure:"active"`
	Reporting []string `yaml:"reporting" mapstructure:"reporting"`
}

// JiraConfig holds the Jira site and credentials.
type JiraConfig struct {
	Site       string `yaml:"site,omitempty" mapstructure:"site"`
	Email      string `yaml:"email,omitempty" mapstructure:"email"`
	APIToken   string `yaml:"api_token,omitempty" mapstructure:"api_token"`
	OAuthToken string `yaml:"oauth_token,omitempty" mapstructure:"oauth_token"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Credentials converts the Jira settings for the client.
func (c JiraConfig) Credentials() jira.Credentials {
	return jira.Credentials{Email: c.Email, APIToken: c.APIToken, OAuthToken: c.OAuthToken}
}

// Markers returns the configured marker columns.
func (c *Config) Markers() board.Markers {
	return board.Markers{Active: c.Columns.Active, Terminal: c.Columns.Terminal}
}

// Lookback returns the lookback in days, or nil for all history.
func (c *Config) Lookback() *int {
	if c.LookbackDays <= 0 {
		return nil
	}
	days := c.LookbackDays
	return &days
}

// Location returns the time zone calendar dates are computed in. Unset
// means the local time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &ConfigError{Field: "timezone", Message: err.Error()}
	}
	return loc, nil
}

// Presets merges configured board presets over the built-in ones.
func (c *Config) Presets() map[string]jira.Preset {
	presets := jira.DefaultPresets()
	for id, p := range c.Boards {
		presets[id] = p
	}
	return presets
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	reporting := make([]string, len(board.DefaultReportingColumns))
	copy(reporting, board.DefaultReportingColumns)
	return &Config{
		ThroughputWeeks: 4,
		OutputDir:       ".",
		Columns: ColumnsConfig{
			Terminal:  board.DefaultTerminalColumn,
			Active:    board.DefaultActiveColumn,
			Reporting: reporting,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// envBindings maps config keys to the environment variables that set them,
// in precedence order.
var envBindings = map[string][]string{
	"board":            {"BOARDFLOW_BOARD"},
	"lookback_days":    {"BOARDFLOW_LOOKBACK_DAYS"},
	"throughput_weeks": {"BOARDFLOW_THROUGHPUT_WEEKS"},
	"output_dir":       {"BOARDFLOW_OUTPUT_DIR"},
	"timezone":         {"BOARDFLOW_TIMEZONE"},
	"columns.terminal": {"BOARDFLOW_COLUMNS_TERMINAL"},
	"columns.active":   {"BOARDFLOW_COLUMNS_ACTIVE"},
	"jira.site":        {"BOARDFLOW_JIRA_SITE", "JIRA_SITE"},
	"jira.email":       {"BOARDFLOW_JIRA_EMAIL", "JIRA_EMAIL"},
	"jira.api_token":   {"BOARDFLOW_JIRA_API_TOKEN", "JIRA_API_TOKEN"},
	"jira.oauth_token": {"BOARDFLOW_JIRA_OAUTH_TOKEN", "JIRA_OAUTH_TOKEN"},
	"log.level":        {"BOARDFLOW_LOG_LEVEL"},
	"log.format":       {"BOARDFLOW_LOG_FORMAT"},
}

// Load reads configuration. An explicit path must exist; otherwise
// boardflow.yaml in the working directory is used when present. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("throughput_weeks", def.ThroughputWeeks)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("columns.terminal", def.Columns.Terminal)
	v.SetDefault("columns.active", def.Columns.Active)
	v.SetDefault("columns.reporting", def.Columns.Reporting)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv exports the variables of a .env file without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ConfigError reports an invalid setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.LookbackDays < 0 {
		return &ConfigError{Field: "lookback_days", Message: "must not be negative"}
	}
	if c.ThroughputWeeks < 0 {
		return &ConfigError{Field: "throughput_weeks", Message: "must not be negative"}
	}
	if strings.TrimSpace(c.Columns.Terminal) == "" {
		return &ConfigError{Field: "columns.terminal", Message: "must not be empty"}
	}
	if len(c.Columns.Reporting) == 0 {
		return &ConfigError{Field: "columns.reporting", Message: "must list at least one column"}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}

var boardIDPattern = regexp.MustCompile(`^[0-9]+$`)

// ErrUnknownBoard is returned when a board name has no alias.
var ErrUnknownBoard = errors.New("unknown board")

// ResolveBoard turns a board argument into a board id. Numeric arguments
// are ids. Names resolve through board_aliases, then the JIRA_BOARD_<NAME>
// environment variable. An empty argument uses the configured board.
func (c *Config) ResolveBoard(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		arg = c.Board
	}
	if arg == "" {
		return "", fmt.Errorf("%w: no board given", ErrUnknownBoard)
	}
	if boardIDPattern.MatchString(arg) {
		return arg, nil
	}

	for name, id := range c.BoardAliases {
		if strings.EqualFold(name, arg) {
			return id, nil
		}
	}
	env := "JIRA_BOARD_" + strings.ToUpper(strings.ReplaceAll(arg, "-", "_"))
	if id := strings.TrimSpace(os.Getenv(env)); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q (set board_aliases.%s or %s)", ErrUnknownBoard, arg, arg, env)
}

// ErrConfigExists is returned by WriteExample when the target exists.
var ErrConfigExists = errors.New("config file already exists")

// Example returns a starter configuration.
func Example() *Config {
	cfg := Default()
	cfg.Board = "191"
	cfg.LookbackDays = 90
	cfg.Jira = JiraConfig{Site: "your-company.atlassian.net", Email: "you@example.com"}
	cfg.Boards = jira.DefaultPresets()
	cfg.BoardAliases = map[string]string{"financeiro": "191"}
	cfg.Messaging = messaging.MessagingConfig{
		Adapters: []messaging.AdapterConfig{{
			Name:    "team-slack",
			Type:    "slack",
			URL:     "https://hooks.slack.com/services/T000/B000/XXXX",
			Enabled: false,
		}},
	}
	return cfg
}

// WriteExample writes Example to path.
func WriteExample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
