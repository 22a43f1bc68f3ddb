package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"codearch/internal/analysis"
)

const (
	EnvPrefix       = "CODEARCH"
	DefaultStateDir = "~/.codearch"
	DefaultReplay   = "127.0.0.1:5000"
	ConfigFileName  = "config.yaml"
	LogFileName     = "codearch.log"
)

// File is the on-disk shape of config.yaml.
type File struct {
	Server struct {
		URL string `yaml:"url"`
	} `yaml:"server"`
	StateDir string `yaml:"state_dir"`
	Logging  struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"logging"`
	Replay struct {
		Listen string `yaml:"listen"`
		Dir    string `yaml:"dir"`
	} `yaml:"replay"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.url", analysis.DefaultServerURL)
	v.SetDefault("state_dir", DefaultStateDir)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("replay.listen", DefaultReplay)
}

// Init wires environment variables and the optional config file into v. An
// explicit file that cannot be read is an error; the implicit one under the
// state dir is only read when present.
func Init(v *viper.Viper, explicitFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	file := strings.TrimSpace(explicitFile)
	if file == "" {
		candidate := filepath.Join(StateDir(v), ConfigFileName)
		if _, err := os.Stat(candidate); err != nil {
			return nil
		}
		file = candidate
	}

	v.SetConfigFile(ExpandHome(file))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func ServerURL(v *viper.Viper) string {
	return strings.TrimSpace(v.GetString("server.url"))
}

func StateDir(v *viper.Viper) string {
	dir := strings.TrimSpace(v.GetString("state_dir"))
	if dir == "" {
		dir = DefaultStateDir
	}
	return ExpandHome(dir)
}

func LogFile(v *viper.Viper) string {
	return filepath.Join(StateDir(v), LogFileName)
}

func ReplayListen(v *viper.Viper) string {
	return strings.TrimSpace(v.GetString("replay.listen"))
}

// Defaults returns the File written by `codearch init`.
func Defaults() File {
	var f File
	f.Server.URL = analysis.DefaultServerURL
	f.StateDir = DefaultStateDir
	f.Logging.Level = "info"
	f.Logging.Format = "text"
	f.Replay.Listen = DefaultReplay
	return f
}

// WriteFile writes f as YAML unless path already exists. It reports whether
// a file was written.
func WriteFile(path string, f File) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func ExpandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return filepath.Clean(p)
		}
		if p == "~" {
			return filepath.Clean(home)
		}
		return filepath.Clean(filepath.Join(home, strings.TrimPrefix(p, "~/")))
	}
	return filepath.Clean(p)
}
