package appconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/netgfx/slack-jira-automation/common/envloader"
	"github.com/spf13/viper"
)

const (
	defaultPort            = "3000"
	defaultIssueTypeID     = "10002"
	defaultPriorityMapping = "High=2,Medium=3,Low=4"
	DefaultPriorityName    = "Medium"
)

type Config struct {
	Port string `env:"PORT" validate:"required,numeric"`

	SlackBotToken         string `env:"SLACK_BOT_TOKEN" validate:"required"`
	SlackSigningSecret    string `env:"SLACK_SIGNING_SECRET" validate:"required_without=SlackSkipVerification"`
	SlackSkipVerification bool   `env:"SLACK_SKIP_VERIFICATION"`
	SlackAPIURL           string `env:"SLACK_API_URL" validate:"omitempty,url"`

	JiraHost               string            `env:"JIRA_HOST" validate:"required"`
	JiraUsername           string            `env:"JIRA_USERNAME" validate:"required"`
	JiraAPIToken           string            `env:"JIRA_API_TOKEN" validate:"required"`
	JiraProjectKey         string            `env:"JIRA_PROJECT_KEY"`
	JiraDefaultIssueTypeID string            `env:"JIRA_DEFAULT_ISSUE_TYPE_ID" validate:"required"`
	JiraPriorityIDs        map[string]string `env:"JIRA_PRIORITY_IDS" validate:"required,dive,required"`

	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT"`

	tlsCert     string
	tlsKey      string
	tlsCA       string
	generateTLS bool
	isLoaded    bool
}

var runtimeConfig Config

// Load reads the configuration from the environment and from the optional dotenv file,
// validates it and sets it as the runtime configuration of the process.
// Environment variables take precedence over the values of the file.
func Load(envFile string) error {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("JIRA_DEFAULT_ISSUE_TYPE_ID", defaultIssueTypeID)
	v.SetDefault("JIRA_PRIORITY_IDS", defaultPriorityMapping)
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed reading env file %v: %v", envFile, err)
		}
	}
	conf, err := parse(v)
	if err != nil {
		return err
	}
	runtimeConfig = conf
	return nil
}

// Get returns the runtime configuration loaded at start
func Get() Config { return runtimeConfig }

func parse(v *viper.Viper) (Config, error) {
	var errs []string
	getEnv := func(key string) string {
		val, err := envloader.Resolve(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%v: %v", key, err))
		}
		return val
	}
	conf := Config{
		Port:                   getEnv("PORT"),
		SlackBotToken:          getEnv("SLACK_BOT_TOKEN"),
		SlackSigningSecret:     getEnv("SLACK_SIGNING_SECRET"),
		SlackSkipVerification:  v.GetBool("SLACK_SKIP_VERIFICATION"),
		SlackAPIURL:            getEnv("SLACK_API_URL"),
		JiraHost:               strings.TrimSuffix(getEnv("JIRA_HOST"), "/"),
		JiraUsername:           getEnv("JIRA_USERNAME"),
		JiraAPIToken:           getEnv("JIRA_API_TOKEN"),
		JiraProjectKey:         getEnv("JIRA_PROJECT_KEY"),
		JiraDefaultIssueTypeID: getEnv("JIRA_DEFAULT_ISSUE_TYPE_ID"),
		SentryDSN:              getEnv("SENTRY_DSN"),
		Environment:            getEnv("ENVIRONMENT"),
		tlsCert:                getEnv("TLS_CERT"),
		tlsKey:                 getEnv("TLS_KEY"),
		tlsCA:                  getEnv("TLS_CA"),
		generateTLS:            v.GetBool("GENERATE_SELF_SIGNED_TLS"),
		isLoaded:               true,
	}
	priorityIDs, err := parsePriorityIDs(v.GetString("JIRA_PRIORITY_IDS"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("JIRA_PRIORITY_IDS: %v", err))
	}
	conf.JiraPriorityIDs = priorityIDs
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("failed loading configuration: %v", strings.Join(errs, "; "))
	}
	if (conf.tlsCert == "") != (conf.tlsKey == "") {
		return Config{}, fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}
	if err := validateConfig(conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// parsePriorityIDs parses a list of name=id pairs, e.g.: High=2,Medium=3,Low=4
func parsePriorityIDs(val string) (map[string]string, error) {
	ids := map[string]string{}
	for _, pair := range strings.Split(val, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, found := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !found || name == "" || id == "" {
			return nil, fmt.Errorf("invalid priority pair %q, expected name=id", pair)
		}
		ids[name] = id
	}
	if _, ok := ids[DefaultPriorityName]; !ok {
		return nil, fmt.Errorf("missing the %v priority id", DefaultPriorityName)
	}
	return ids, nil
}

func validateConfig(conf Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	err := validate.Struct(conf)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var msgs []string
	for _, verr := range verrs {
		switch verr.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%v is required", verr.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%v is invalid (%v)", verr.Field(), verr.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %v", strings.Join(msgs, ", "))
}

func (c Config) IsLoaded() bool { return c.isLoaded }

// JiraURL returns the base url of the Jira instance. JIRA_HOST may be a bare host name,
// in this case https is assumed.
func (c Config) JiraURL() string {
	if strings.HasPrefix(c.JiraHost, "http://") || strings.HasPrefix(c.JiraHost, "https://") {
		return c.JiraHost
	}
	return "https://" + c.JiraHost
}

// JiraHostname returns only the host part of JIRA_HOST
func (c Config) JiraHostname() string {
	if u, _ := url.Parse(c.JiraURL()); u != nil && u.Host != "" {
		return u.Host
	}
	return c.JiraHost
}

// ListenAddr returns the address of the http server
func (c Config) ListenAddr() string { return "0.0.0.0:" + c.Port }

func (c Config) TLSCert() string   { return c.tlsCert }
func (c Config) TLSKey() string    { return c.tlsKey }
func (c Config) TLSCA() string     { return c.tlsCA }
func (c Config) GenerateTLS() bool { return c.generateTLS }

// LookupEnvFile returns the .env file of the working directory when it exists
func LookupEnvFile() string {
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}
