package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Defaults are applied to articles that leave a field out
type Defaults struct {
	Status     string   `mapstructure:"status"`
	Visibility string   `mapstructure:"visibility"`
	Type       string   `mapstructure:"type"`
	Featured   bool     `mapstructure:"featured"`
	Category   string   `mapstructure:"category"`
	Tags       []string `mapstructure:"tags"`
	Tiers      []string `mapstructure:"tiers"`
}

// Ghost holds the Admin API connection and site-specific rewrites
type Ghost struct {
	APIURL              string        `mapstructure:"api_url"`
	APIKey              string        `mapstructure:"api_key"`
	AssetDomainFrom     string        `mapstructure:"asset_domain_from"`
	AssetDomainTo       string        `mapstructure:"asset_domain_to"`
	DefaultFeatureImage string        `mapstructure:"default_feature_image"`
	RateLimit           time.Duration `mapstructure:"rate_limit"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Upload configures the image host
type Upload struct {
	Uploader string        `mapstructure:"uploader"`
	API      string        `mapstructure:"api"`
	Delay    time.Duration `mapstructure:"delay"`
	Cache    bool          `mapstructure:"cache"`
}

// Watermark configures the image watermark command
type Watermark struct {
	Text      string   `mapstructure:"text"`
	Angle     float64  `mapstructure:"angle"`
	Opacity   int      `mapstructure:"opacity"`
	FontPaths []string `mapstructure:"font_paths"`
}

// Config holds the application configuration
type Config struct {
	SourceDir           string    `mapstructure:"source_dir"`
	TargetDir           string    `mapstructure:"target_dir"`
	Output              string    `mapstructure:"output"`
	LogLevel            string    `mapstructure:"log_level"`
	DBPath              string    `mapstructure:"db_path"`
	Defaults            Defaults  `mapstructure:"defaults"`
	AvailableTags       []string  `mapstructure:"available_tags"`
	AvailableCategories []string  `mapstructure:"available_categories"`
	Ghost               Ghost     `mapstructure:"ghost"`
	Upload              Upload    `mapstructure:"upload"`
	Watermark           Watermark `mapstructure:"watermark"`
}

// C is the global config instance
var C Config

// ErrMissingCredentials is returned when the Ghost URL or key is not set
var ErrMissingCredentials = errors.New("ghost api url and admin key are required (GHOST_ADMIN_API_URL, GHOST_ADMIN_API_KEY)")

// Init initializes configuration with viper. cfgFile, when non-empty,
// replaces the search path.
func Init(cfgFile string) error {
	setDefaults()
	loadDotEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("postmd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "postmd"))
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "postmd"))
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("POSTMD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("ghost.api_url", "POSTMD_GHOST_API_URL", "GHOST_ADMIN_API_URL")
	_ = viper.BindEnv("ghost.api_key", "POSTMD_GHOST_API_KEY", "GHOST_ADMIN_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	C.Defaults.Status = strings.ToLower(C.Defaults.Status)
	C.Defaults.Visibility = strings.ToLower(C.Defaults.Visibility)
	C.Defaults.Type = strings.ToLower(C.Defaults.Type)
	C.Upload.Uploader = strings.ToLower(C.Upload.Uploader)

	return C.Validate()
}

func setDefaults() {
	viper.SetDefault("source_dir", ".")
	viper.SetDefault("target_dir", "")
	viper.SetDefault("output", "print")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("db_path", filepath.Join(xdg.CacheHome, "postmd", "postmd.db"))

	viper.SetDefault("defaults.status", "draft")
	viper.SetDefault("defaults.visibility", "public")
	viper.SetDefault("defaults.type", "post")
	viper.SetDefault("defaults.featured", false)
	viper.SetDefault("defaults.category", "")
	viper.SetDefault("defaults.tags", []string{})
	viper.SetDefault("defaults.tiers", []string{})
	viper.SetDefault("available_tags", []string{})
	viper.SetDefault("available_categories", []string{})

	viper.SetDefault("ghost.api_url", "")
	viper.SetDefault("ghost.api_key", "")
	viper.SetDefault("ghost.asset_domain_from", "")
	viper.SetDefault("ghost.asset_domain_to", "")
	viper.SetDefault("ghost.default_feature_image", "")
	viper.SetDefault("ghost.rate_limit", 500*time.Millisecond)
	viper.SetDefault("ghost.timeout", 30*time.Second)

	viper.SetDefault("upload.uploader", "piclist")
	viper.SetDefault("upload.api", "")
	viper.SetDefault("upload.delay", 500*time.Millisecond)
	viper.SetDefault("upload.cache", true)

	viper.SetDefault("watermark.text", "Innomad 一挪迈（X: @innomad_io）")
	viper.SetDefault("watermark.angle", 30.0)
	viper.SetDefault("watermark.opacity", 25)
	viper.SetDefault("watermark.font_paths", []string{})
}

// loadDotEnv reads .env files without overriding variables already set in
// the shell
func loadDotEnv() {
	for _, p := range []string{".env", filepath.Join(xdg.ConfigHome, "postmd", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = gotenv.Load(p)
		}
	}
}

var urlRe = regexp.MustCompile(`^https?://\S+$`)

// Validate checks enumerations and URLs
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Output, validation.In("print", "copy", "file")),
		validation.Field(&c.Defaults),
		validation.Field(&c.Ghost),
		validation.Field(&c.Upload),
		validation.Field(&c.Watermark),
	)
}

// Validate checks default article values
func (d Defaults) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Status, validation.In("draft", "published")),
		validation.Field(&d.Visibility, validation.In("public", "members", "paid", "tiers")),
		validation.Field(&d.Type, validation.In("post", "page")),
	)
}

// Validate checks the Ghost section
func (g Ghost) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.APIURL, validation.Match(urlRe).Error("must be an http(s) URL")),
		validation.Field(&g.RateLimit, validation.Min(time.Duration(0))),
		validation.Field(&g.Timeout, validation.Min(time.Duration(0))),
	)
}

// Validate checks the upload section
func (u Upload) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Uploader, validation.Required, validation.In("picgo", "piclist", "custom")),
		validation.Field(&u.API, validation.Match(urlRe).Error("must be an http(s) URL")),
		validation.Field(&u.Delay, validation.Min(time.Duration(0))),
	)
}

// Validate checks the watermark section
func (w Watermark) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Opacity, validation.Min(0), validation.Max(255)),
	)
}

// GetSourceDir returns the article directory with tilde expansion
func GetSourceDir() string {
	return expandTilde(viper.GetString("source_dir"))
}

// GetTargetDir returns the archive directory for published articles
func GetTargetDir() string {
	return expandTilde(viper.GetString("target_dir"))
}

// GetDBPath returns the sqlite database path
func GetDBPath() string {
	return expandTilde(viper.GetString("db_path"))
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetLogLevel returns the configured log level name
func GetLogLevel() string {
	return viper.GetString("log_level")
}

// GhostCredentials returns the Admin API URL and key
func GhostCredentials() (url, key string, err error) {
	url = strings.TrimRight(viper.GetString("ghost.api_url"), "/")
	key = viper.GetString("ghost.api_key")
	if url == "" || key == "" {
		return "", "", ErrMissingCredentials
	}
	return url, key, nil
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetLogLevel sets the log level at runtime
func SetLogLevel(level string) {
	viper.Set("log_level", level)
	C.LogLevel = level
}

// UsedFile returns the config file that was read, if any
func UsedFile() string {
	return viper.ConfigFileUsed()
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path[1:])
	}
	return path
}
