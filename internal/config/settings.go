package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultOrchestratorURL = "http://localhost:5000"
	defaultNotifyURL       = "http://127.0.0.1:5001"
)

// Environment overrides, checked once at load time. The tunnel URL wins over
// the plain API URL so a demo exposed through ngrok keeps working without
// editing the config file.
const (
	envTunnelURL       = "SOURCEBOT_NGROK_URL"
	envOrchestratorURL = "SOURCEBOT_API_URL"
	envNotifyURL       = "SOURCEBOT_NOTIFY_URL"
)

type Config struct {
	Services  ServicesConfig  `toml:"services"`
	Logging   LoggingConfig   `toml:"logging"`
	Signature SignatureConfig `toml:"signature"`
}

type ServicesConfig struct {
	OrchestratorURL string `toml:"orchestrator_url"`
	NotifyURL       string `toml:"notify_url"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// SignatureConfig carries the identity appended to outgoing email drafts that
// lack a closing.
type SignatureConfig struct {
	FullName   string `toml:"full_name"`
	JobTitle   string `toml:"job_title"`
	Enterprise string `toml:"enterprise"`
}

func Default() Config {
	return Config{
		Services: ServicesConfig{
			OrchestratorURL: defaultOrchestratorURL,
			NotifyURL:       defaultNotifyURL,
		},
		Logging: LoggingConfig{Level: "info"},
		Signature: SignatureConfig{
			FullName:   "Nicolas Salapete",
			JobTitle:   "CEO",
			Enterprise: "SERICA",
		},
	}
}

// Load reads the config file (missing file is fine) and applies environment
// overrides.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if url := strings.TrimSpace(os.Getenv(envTunnelURL)); url != "" {
		cfg.Services.OrchestratorURL = url
	} else if url := strings.TrimSpace(os.Getenv(envOrchestratorURL)); url != "" {
		cfg.Services.OrchestratorURL = url
	}
	if url := strings.TrimSpace(os.Getenv(envNotifyURL)); url != "" {
		cfg.Services.NotifyURL = url
	}
	return cfg
}

func (c Config) OrchestratorBaseURL() string {
	return normalizeBaseURL(c.Services.OrchestratorURL, defaultOrchestratorURL)
}

func (c Config) NotifyBaseURL() string {
	return normalizeBaseURL(c.Services.NotifyURL, defaultNotifyURL)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) SignatureName() string {
	return strings.TrimSpace(c.Signature.FullName)
}

// SignatureTitleLine renders the second signature line, "<title> at <company>".
func (c Config) SignatureTitleLine() string {
	title := strings.TrimSpace(c.Signature.JobTitle)
	company := strings.TrimSpace(c.Signature.Enterprise)
	switch {
	case title == "" && company == "":
		return ""
	case title == "":
		return company
	case company == "":
		return title
	}
	return title + " at " + company
}

// Render serializes the effective configuration back to TOML.
func (c Config) Render() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func normalizeBaseURL(raw, fallback string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return fallback
	}
	url = strings.TrimRight(url, "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}
