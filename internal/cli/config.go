package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerAddr string
	StatusURL  string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("AWALE_SERVER", "localhost:4000"),
		StatusURL:  getEnvOrDefault("AWALE_STATUS", "http://localhost:8080"),
		Output:     "text",
		Verbose:    false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
