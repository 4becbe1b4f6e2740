package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings
type Config struct {
	// User configurable settings
	Model          string
	DatabaseURL    string
	ChunkSize      int
	ChunkOverlap   int
	AnswerTimeout  time.Duration
	WhisperTimeout time.Duration
	Verbose        bool
	Quiet          bool
	OpenAIAPIKey   string
	BriefTemplate  string
	MCPLogEnabled  bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml brief.tmpl
var defaultFS embed.FS

// WhisperLimit is the hard ceiling for a single transcription upload.
// OpenAI's Whisper API rejects files around 25 MiB, so anything above
// 24 MiB gets split before transcription.
const WhisperLimit int64 = 24 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Printf("Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config
// directory and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultBriefTemplate checks if a brief.tmpl file exists in the XDG
// config directory and creates it from the embedded default if it doesn't
func EnsureDefaultBriefTemplate(configDir string) error {
	return ensureDefaultFile(configDir, "brief.tmpl", "brief template")
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "vidbrief")
	dataDir := filepath.Join(xdg.DataHome, "vidbrief")
	cacheDir := filepath.Join(xdg.CacheHome, "vidbrief")
	tempDir := filepath.Join(cacheDir, "audio_segments")

	v := viper.New()

	// Defaults for configurable settings
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("database_url", "")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("answer_timeout", 2*time.Minute)
	v.SetDefault("whisper_timeout", 10*time.Minute)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("brief_template", "") // empty means the default template
	v.SetDefault("mcp_log", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix("VIDBRIEF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("_", "_"))

	// These two are conventionally set as bare environment variables.
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		Model:          v.GetString("model"),
		DatabaseURL:    v.GetString("database_url"),
		ChunkSize:      v.GetInt("chunk_size"),
		ChunkOverlap:   v.GetInt("chunk_overlap"),
		AnswerTimeout:  v.GetDuration("answer_timeout"),
		WhisperTimeout: v.GetDuration("whisper_timeout"),
		Verbose:        v.GetBool("verbose"),
		Quiet:          v.GetBool("quiet"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		BriefTemplate:  v.GetString("brief_template"),
		MCPLogEnabled:  v.GetBool("mcp_log"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}
