package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type fileConfig struct {
	ServiceURL string                `toml:"service_url"`
	TZ         string                `toml:"tz"`
	Output     string                `toml:"output"`
	Fields     string                `toml:"fields"`
	Profile    string                `toml:"profile"`
	Theme      string                `toml:"theme"`
	Profiles   map[string]fileConfig `toml:"profiles"`
}

func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	profile := firstNonEmpty(env("MCAL_PROFILE"), defaults.Profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = "default"
	}
	resolved.Profile = profile

	userPath := defaultUserConfigPath()
	projectPath := ".mcal.toml"
	configPath := firstNonEmpty(env("MCAL_CONFIG"), userPath)
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	if cfg, ok := readConfigFile(userPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if cfg, ok := readConfigFile(projectPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if configPath != "" && configPath != userPath && configPath != projectPath {
		if cfg, ok := readConfigFile(configPath); ok {
			applyFileConfig(&resolved, cfg, profile)
		}
	}

	applyEnv(&resolved)
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	if resolved.Theme == "" {
		resolved.Theme = "light"
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	if cfg.ServiceURL != "" {
		dst.ServiceURL = cfg.ServiceURL
	}
	if cfg.TZ != "" {
		dst.TZ = cfg.TZ
	}
	if cfg.Fields != "" {
		dst.Fields = cfg.Fields
	}
	if cfg.Theme != "" {
		dst.Theme = cfg.Theme
	}
	if cfg.Output != "" {
		switch strings.ToLower(cfg.Output) {
		case "json":
			dst.JSON, dst.JSONL, dst.Plain = true, false, false
		case "jsonl":
			dst.JSON, dst.JSONL, dst.Plain = false, true, false
		case "plain":
			dst.JSON, dst.JSONL, dst.Plain = false, false, true
		}
	}
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	if overlay.ServiceURL != "" {
		base.ServiceURL = overlay.ServiceURL
	}
	if overlay.TZ != "" {
		base.TZ = overlay.TZ
	}
	if overlay.Output != "" {
		base.Output = overlay.Output
	}
	if overlay.Fields != "" {
		base.Fields = overlay.Fields
	}
	if overlay.Profile != "" {
		base.Profile = overlay.Profile
	}
	if overlay.Theme != "" {
		base.Theme = overlay.Theme
	}
	return base
}

func applyEnv(dst *globalOptions) {
	if v := env("MCAL_SERVICE_URL"); v != "" {
		dst.ServiceURL = v
	}
	if v := env("MCAL_TIMEZONE"); v != "" {
		dst.TZ = v
	}
	if v := env("MCAL_FIELDS"); v != "" {
		dst.Fields = v
	}
	if v := env("MCAL_THEME"); v != "" {
		dst.Theme = v
	}
	if v := env("MCAL_OUTPUT"); v != "" {
		switch strings.ToLower(v) {
		case "json":
			dst.JSON, dst.JSONL, dst.Plain = true, false, false
		case "jsonl":
			dst.JSON, dst.JSONL, dst.Plain = false, true, false
		case "plain":
			dst.JSON, dst.JSONL, dst.Plain = false, false, true
		}
	}
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "no-color", func() { dst.NoColor = fromFlags.NoColor })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "service-url", func() { dst.ServiceURL = fromFlags.ServiceURL })
	copyIfChanged(cmd, "rate", func() { dst.Rate = fromFlags.Rate })
	copyIfChanged(cmd, "tz", func() { dst.TZ = fromFlags.TZ })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// If exactly one output mode flag is explicitly set, it overrides env/config output mode.
	modeSet := 0
	if flagValueChanged(cmd, "json") && fromFlags.JSON {
		modeSet++
	}
	if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
		modeSet++
	}
	if flagValueChanged(cmd, "plain") && fromFlags.Plain {
		modeSet++
	}
	if modeSet == 1 {
		if flagValueChanged(cmd, "json") && fromFlags.JSON {
			dst.JSON, dst.JSONL, dst.Plain = true, false, false
		}
		if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
			dst.JSON, dst.JSONL, dst.Plain = false, true, false
		}
		if flagValueChanged(cmd, "plain") && fromFlags.Plain {
			dst.JSON, dst.JSONL, dst.Plain = false, false, true
		}
	}
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func readConfigFile(path string) (fileConfig, bool) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, false
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false
	}
	return cfg, true
}

// persistTheme rewrites the user config file with the new theme, keeping
// every other setting in it as-is. Theme is the one preference mcal mutates
// on the user's behalf.
func persistTheme(theme string) (string, error) {
	switch theme {
	case "light", "dark":
	default:
		return "", fmt.Errorf("invalid theme: %s (use light|dark)", theme)
	}
	path := defaultUserConfigPath()
	if path == "" {
		return "", fmt.Errorf("cannot locate user config directory")
	}
	cfg, _ := readConfigFile(path)
	cfg.Theme = theme
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "mcal", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "mcal", "config.toml")
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
