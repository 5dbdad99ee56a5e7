package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"
)

type Config struct {
	Datadir          string
	HTTPPort         uint32
	LogLevel         uint32
	SwapAPIURL       string
	SwapAPIKey       string
	AgentID          string
	FiatCurrency     string
	PollInterval     time.Duration
	RateTTL          time.Duration
	RateRefresh      time.Duration
	SentryDSN        string
	DisableTelemetry bool
}

var (
	Datadir          = "DATADIR"
	HTTPPort         = "HTTP_PORT"
	LogLevel         = "LOG_LEVEL"
	SwapAPIURL       = "SWAP_API_URL"
	SwapAPIKey       = "SWAP_API_KEY"
	AgentID          = "AGENT_ID"
	FiatCurrency     = "FIAT_CURRENCY"
	PollInterval     = "POLL_INTERVAL"
	RateTTL          = "RATE_TTL"
	RateRefresh      = "RATE_REFRESH"
	SentryDSN        = "SENTRY_DSN"
	DisableTelemetry = "DISABLE_TELEMETRY"

	defaultDatadir          = appDatadir("offrampd", false)
	defaultHTTPPort         = 7002
	defaultLogLevel         = 4
	defaultFiatCurrency     = "KES"
	defaultPollInterval     = 5 * time.Second
	defaultRateTTL          = 30 * time.Second
	defaultRateRefresh      = 30 * time.Second
	defaultDisableTelemetry = false
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("OFFRAMP")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(HTTPPort, defaultHTTPPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(FiatCurrency, defaultFiatCurrency)
	viper.SetDefault(PollInterval, defaultPollInterval)
	viper.SetDefault(RateTTL, defaultRateTTL)
	viper.SetDefault(RateRefresh, defaultRateRefresh)
	viper.SetDefault(DisableTelemetry, defaultDisableTelemetry)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	config := &Config{
		Datadir:          viper.GetString(Datadir),
		HTTPPort:         viper.GetUint32(HTTPPort),
		LogLevel:         viper.GetUint32(LogLevel),
		SwapAPIURL:       viper.GetString(SwapAPIURL),
		SwapAPIKey:       viper.GetString(SwapAPIKey),
		AgentID:          viper.GetString(AgentID),
		FiatCurrency:     strings.ToUpper(viper.GetString(FiatCurrency)),
		PollInterval:     viper.GetDuration(PollInterval),
		RateTTL:          viper.GetDuration(RateTTL),
		RateRefresh:      viper.GetDuration(RateRefresh),
		SentryDSN:        viper.GetString(SentryDSN),
		DisableTelemetry: viper.GetBool(DisableTelemetry),
	}

	if config.SwapAPIURL == "" {
		return nil, fmt.Errorf("missing swap service url, set OFFRAMP_SWAP_API_URL")
	}
	if config.AgentID == "" {
		return nil, fmt.Errorf("missing agent id, set OFFRAMP_AGENT_ID")
	}

	return config, nil
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

// appDatadir returns an operating system specific directory to be used
// for storing application data for an application.
func appDatadir(appName string, roaming bool) string {
	if appName == "" || appName == "." {
		return "."
	}

	appName = strings.TrimPrefix(appName, ".")
	appNameUpper := string(unicode.ToUpper(rune(appName[0]))) + appName[1:]
	appNameLower := string(unicode.ToLower(rune(appName[0]))) + appName[1:]

	var homeDir string
	usr, err := user.Current()
	if err == nil {
		homeDir = usr.HomeDir
	}
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if roaming || appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData != "" {
			return filepath.Join(appData, appNameUpper)
		}

	case "darwin":
		if homeDir != "" {
			return filepath.Join(homeDir, "Library",
				"Application Support", appNameUpper)
		}

	case "plan9":
		if homeDir != "" {
			return filepath.Join(homeDir, appNameLower)
		}

	default:
		if homeDir != "" {
			return filepath.Join(homeDir, "."+appNameLower)
		}
	}

	return "."
}
