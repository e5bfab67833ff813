package cli

import "os"

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Output    string
	Verbose   bool
}

// DefaultConfig returns CLI defaults, honoring environment overrides
func DefaultConfig() *Config {
	serverURL := os.Getenv("WAMCTL_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	return &Config{ServerURL: serverURL, Output: "text"}
}
