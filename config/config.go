package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

var v *viper.Viper

func init() {
	v = viper.New()

	// Set default values
	v.SetDefault("target.base_url", "http://localhost:3000")
	v.SetDefault("evidence.root", "test-results/evidence")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ws_endpoint", "")
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 720)
	v.SetDefault("timeouts.readiness_ms", 10000)
	v.SetDefault("timeouts.probe_ms", 2000)
	v.SetDefault("timeouts.settle_ms", 500)
	v.SetDefault("run.parallel", 1)

	// Environment variables
	v.AutomaticEnv()
	v.BindEnv("target.base_url", "EVIDENCE_BASE_URL")
	v.BindEnv("evidence.root", "EVIDENCE_ROOT")
	v.BindEnv("browser.headless", "EVIDENCE_HEADLESS")
	v.BindEnv("browser.ws_endpoint", "EVIDENCE_WS_ENDPOINT")

	// Config file
	v.SetConfigName("evidence")
	v.SetConfigType("yaml")

	// Look for config in the following paths
	configPaths := []string{
		".",
		filepath.Join(xdg.ConfigHome, "evidence"),
		"/etc/evidence",
	}

	for _, path := range configPaths {
		expandedPath := os.ExpandEnv(path)
		v.AddConfigPath(expandedPath)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			panic(fmt.Sprintf("Fatal error reading config file: %s", err))
		}
		// Config file not found; ignore error and use defaults
	}
}

// TargetBaseURL returns the base URL of the application under test
func TargetBaseURL() string {
	return v.GetString("target.base_url")
}

// EvidenceRoot returns the directory artifacts are written under
func EvidenceRoot() string {
	return v.GetString("evidence.root")
}

// Headless returns whether the browser runs headless
func Headless() bool {
	return v.GetBool("browser.headless")
}

// WSEndpoint returns the websocket endpoint of a remote browser server.
// Empty means a local browser is launched instead.
func WSEndpoint() string {
	return v.GetString("browser.ws_endpoint")
}

// ViewportWidth returns the context viewport width
func ViewportWidth() int {
	return v.GetInt("browser.viewport.width")
}

// ViewportHeight returns the context viewport height
func ViewportHeight() int {
	return v.GetInt("browser.viewport.height")
}

// ReadinessTimeout returns the default bound for readiness waits
func ReadinessTimeout() time.Duration {
	return time.Duration(v.GetInt("timeouts.readiness_ms")) * time.Millisecond
}

// ProbeTimeout returns the short bound used when probing optional elements
func ProbeTimeout() time.Duration {
	return time.Duration(v.GetInt("timeouts.probe_ms")) * time.Millisecond
}

// SettleDelay returns the pause applied after dismissing a transient overlay
func SettleDelay() time.Duration {
	return time.Duration(v.GetInt("timeouts.settle_ms")) * time.Millisecond
}

// Parallel returns how many scenarios may run concurrently
func Parallel() int {
	return v.GetInt("run.parallel")
}

// Set overrides a configuration key, used by CLI flags
func Set(key string, value interface{}) {
	v.Set(key, value)
}
