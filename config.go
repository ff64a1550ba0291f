package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/swizard0/two-captcha/pkg/captcha"
)

const (
	defaultConcurrency   = 1
	defaultLogFile       = "./logs/two-captcha.log"
	defaultPollTimeoutMs = int64(captcha.DefaultPollInterval / time.Millisecond)
)

type Config struct {
	APIKey        string
	CaptchaFiles  []string
	CaptchaList   string
	CaseSensitive bool
	Params        captcha.Params
	ProxyFile     string
	Concurrency   int
	LogFile       string
	Debug         bool
}

// flag name -> config file key
var configKeys = [][2]string{
	{"api-key", "apiKey"},
	{"captcha-file", "captchaFiles"},
	{"captcha-list", "captchaList"},
	{"case-sensitive", "caseSensitive"},
	{"api-request-url", "apiRequestUrl"},
	{"api-result-url", "apiResultUrl"},
	{"poll-timeout-ms", "pollTimeoutMs"},
	{"proxy-file", "proxyFile"},
	{"concurrency", "concurrency"},
	{"log-file", "logFile"},
	{"debug", "debug"},
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("two-captcha", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringP("api-key", "a", "", "2captcha api key")
	fs.StringSliceP("captcha-file", "f", nil, "captcha image file (repeatable)")
	fs.String("captcha-list", "", "file with one captcha image path per line")
	fs.BoolP("case-sensitive", "s", false, "captcha is case sensitive")
	fs.String("api-request-url", captcha.DefaultAPIRequestURL, "2captcha api request url")
	fs.String("api-result-url", captcha.DefaultAPIResultURL, "2captcha api result url")
	fs.Int64("poll-timeout-ms", defaultPollTimeoutMs, "2captcha results poll interval (in milliseconds)")
	fs.String("proxy-file", "", "file with host:port[:username:password] proxies, one per task")
	fs.Int("concurrency", defaultConcurrency, "number of captchas solved in parallel")
	fs.String("log-file", defaultLogFile, "log file, empty to log to stderr only")
	fs.Bool("debug", false, "enable debug logging")
	fs.String("config", "", "config file (default ./config.json)")

	return fs
}

func loadConfig(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for _, k := range configKeys {
		if err := v.BindPFlag(k[1], fs.Lookup(k[0])); err != nil {
			return nil, errors.Wrapf(err, "bind flag %s", k[0])
		}
	}

	v.SetEnvPrefix("two_captcha")
	v.AutomaticEnv()

	configFile, _ := fs.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg := &Config{
		APIKey:        v.GetString("apiKey"),
		CaptchaFiles:  v.GetStringSlice("captchaFiles"),
		CaptchaList:   v.GetString("captchaList"),
		CaseSensitive: v.GetBool("caseSensitive"),
		Params: captcha.Params{
			APIRequestURL: v.GetString("apiRequestUrl"),
			APIResultURL:  v.GetString("apiResultUrl"),
			PollInterval:  time.Duration(v.GetInt64("pollTimeoutMs")) * time.Millisecond,
		},
		ProxyFile:   v.GetString("proxyFile"),
		Concurrency: v.GetInt("concurrency"),
		LogFile:     v.GetString("logFile"),
		Debug:       v.GetBool("debug"),
	}

	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.APIKey == "" {
		return fmt.Errorf("please set the 2captcha api key (--api-key or apiKey in config)")
	}
	if len(cfg.CaptchaFiles) == 0 && cfg.CaptchaList == "" {
		return fmt.Errorf("please provide a captcha file (--captcha-file or --captcha-list)")
	}
	if cfg.Params.PollInterval <= 0 {
		return fmt.Errorf("poll timeout must be positive, got %s", cfg.Params.PollInterval)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaultConcurrency
	}
	return nil
}
