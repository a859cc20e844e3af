package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"

	"github.com/sanskrit-coders/ashtadhyayi/pkg/naming"
)

const (
	EnvPrefix = "ASHTADHYAYI_"

	SourceAshtadhyayiCom = "ashtadhyayi_com"
	SourceAshtadhyayiOrg = "ashtadhyayi_org"
)

var (
	ErrNoCorpus      = errors.New("repo_path is not configured")
	ErrNoIndex       = errors.New("index_path is not configured")
	ErrNoDump        = errors.New("dump_path is not configured")
	ErrUnknownSource = errors.New("unknown source")
)

/* Structs */

type Configuration struct {
	RepoPath    string   `koanf:"repo_path"`
	DumpPath    string   `koanf:"dump_path"`
	IndexPath   string   `koanf:"index_path"`
	TxtVrittis  []string `koanf:"txt_vrittis"`
	MemberCache bool     `koanf:"member_cache"`

	Naming        naming.PatternConfig    `koanf:"naming"`
	Sources       map[string]SourceConfig `koanf:"sources"`
	Notifications NotificationsConfig     `koanf:"notifications"`
}

// SourceConfig describes one remote supplier of per-sutra JSON payloads.
type SourceConfig struct {
	URL string `koanf:"url"`
	// Rate is the request budget per minute.
	Rate      int           `koanf:"rate"`
	Timeout   time.Duration `koanf:"timeout"`
	Retries   int           `koanf:"retries"`
	RetryWait time.Duration `koanf:"retry_wait"`
	// Workers is how many sutras are fetched at once.
	Workers int `koanf:"workers"`
}

/* Public */

func Defaults() map[string]any {
	return map[string]any{
		"txt_vrittis": []string{"padachcheda", "full_sutra", "anuvritti", "adhikara", "sumit_garg_english", "topic"},
		"member_cache": true,

		"sources." + SourceAshtadhyayiCom + ".url":        "http://www.ashtadhyayi.com/sutraani/json.php",
		"sources." + SourceAshtadhyayiCom + ".rate":       180,
		"sources." + SourceAshtadhyayiCom + ".timeout":    "30s",
		"sources." + SourceAshtadhyayiCom + ".retries":    1,
		"sources." + SourceAshtadhyayiCom + ".retry_wait": "5s",
		"sources." + SourceAshtadhyayiCom + ".workers":    4,

		"sources." + SourceAshtadhyayiOrg + ".url":        "http://www.ashtadhyayi.com/sutraani/json.php",
		"sources." + SourceAshtadhyayiOrg + ".rate":       240,
		"sources." + SourceAshtadhyayiOrg + ".timeout":    "30s",
		"sources." + SourceAshtadhyayiOrg + ".retries":    1,
		"sources." + SourceAshtadhyayiOrg + ".retry_wait": "5s",
		"sources." + SourceAshtadhyayiOrg + ".workers":    4,
	}
}

// Load layers defaults, the YAML file at path (skipped when it does not exist) and
// ASHTADHYAYI_ environment variables, where a double underscore separates nesting levels.
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	cfg := &Configuration{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// GetDefaultConfigDirectory prefers a config file next to the executable, then the XDG config home.
func GetDefaultConfigDirectory(app string, filename string) string {
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
			return dir
		}
	}

	return filepath.Join(xdg.ConfigHome, app)
}

// CorpusPath is the directory of one vritti inside the repository.
func (c *Configuration) CorpusPath(vritti string) (string, error) {
	if c.RepoPath == "" {
		return "", ErrNoCorpus
	}
	return filepath.Join(c.RepoPath, vritti), nil
}

func (c *Configuration) Strategy() (naming.Strategy, error) {
	if c.Naming == (naming.PatternConfig{}) {
		return naming.Default(), nil
	}
	return naming.NewPattern(c.Naming.WithDefaults())
}

func (c *Configuration) Source(name string) (SourceConfig, error) {
	src, ok := c.Sources[name]
	if !ok {
		return SourceConfig{}, errors.Wrapf(ErrUnknownSource, "%q", name)
	}
	return src, nil
}

/* Private */

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
