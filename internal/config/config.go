package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultSummaryModel = "gpt-4o-mini"
	DefaultMaxDiffChars = 18000
	DefaultSpecPatterns = "*.md,*.markdown,*.yaml,*.yml"

	PublisherGH  = "gh"
	PublisherAPI = "api"

	envFile = ".env"
)

// flagKeys maps persistent flag names onto their config keys.
var flagKeys = map[string]string{
	"specs-dir":      KeySpecsDir,
	"spec-patterns":  KeySpecPatterns,
	"max-diff-chars": KeyMaxDiffChars,
	"repo-path":      KeyRepoPath,
	"remote":         KeyGitRemote,
	"base-branch":    KeyBaseBranch,
	"publisher":      KeyPublisher,
	"log-level":      KeyLogLevel,
	"dry-run":        KeyDryRun,
}

// Init wires viper to the environment, an optional .env file and the
// persistent flags of root. Variables already present in the environment
// take precedence over the .env file.
func Init(root *cobra.Command) {
	viper.AutomaticEnv()
	_ = godotenv.Load(envFile)
	if root != nil {
		flags := root.PersistentFlags()
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				_ = viper.BindPFlag(key, f)
			}
		}
	}
	setDefaults()
}

func setDefaults() {
	viper.SetDefault(KeySummaryModel, DefaultSummaryModel)
	viper.SetDefault(KeySpecsDir, "specs")
	viper.SetDefault(KeySpecPatterns, DefaultSpecPatterns)
	viper.SetDefault(KeyMaxDiffChars, DefaultMaxDiffChars)
	viper.SetDefault(KeyRepoPath, ".")
	viper.SetDefault(KeyGitRemote, "origin")
	viper.SetDefault(KeyBaseBranch, "main")
	viper.SetDefault(KeyPublisher, PublisherGH)
	viper.SetDefault(KeyGHPath, "gh")
	viper.SetDefault(KeyLogLevel, "info")
}

func PRNumber() string         { return strings.TrimSpace(viper.GetString(KeyPRNumber)) }
func OpenAIAPIKey() string     { return viper.GetString(KeyOpenAIAPIKey) }
func OpenAIBaseURL() string    { return viper.GetString(KeyOpenAIBaseURL) }
func SummaryModel() string     { return viper.GetString(KeySummaryModel) }
func LLMCallTimeout() string   { return viper.GetString(KeyLLMCallTimeout) }
func SpecsDir() string         { return viper.GetString(KeySpecsDir) }
func SpecPatterns() string     { return viper.GetString(KeySpecPatterns) }
func MaxDiffChars() string     { return viper.GetString(KeyMaxDiffChars) }
func RepoPath() string         { return viper.GetString(KeyRepoPath) }
func GitRemote() string        { return viper.GetString(KeyGitRemote) }
func BaseBranch() string       { return viper.GetString(KeyBaseBranch) }
func GitTimeout() string       { return viper.GetString(KeyGitTimeout) }
func Publisher() string        { return viper.GetString(KeyPublisher) }
func GHPath() string           { return viper.GetString(KeyGHPath) }
func GitHubToken() string      { return viper.GetString(KeyGitHubToken) }
func GitHubRepository() string { return viper.GetString(KeyGitHubRepository) }
func LogLevel() string         { return viper.GetString(KeyLogLevel) }
func DryRun() bool             { return viper.GetBool(KeyDryRun) }

// Settings is the run configuration, built once at start and handed to
// every stage of the workflow.
type Settings struct {
	PRNumber         string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	SummaryModel     string
	LLMCallTimeout   time.Duration
	SpecsDir         string
	SpecPatterns     []string
	MaxDiffChars     int
	RepoPath         string
	Remote           string
	BaseBranch       string
	GitTimeout       time.Duration
	Publisher        string
	GHPath           string
	GitHubToken      string
	GitHubRepository string
	LogLevel         string
	DryRun           bool
}

// Load snapshots the current viper state into Settings. A missing PR number
// is not reported here; the caller decides how to surface it.
func Load() (Settings, error) {
	s := Settings{
		PRNumber:         PRNumber(),
		OpenAIAPIKey:     OpenAIAPIKey(),
		OpenAIBaseURL:    strings.TrimSpace(OpenAIBaseURL()),
		SummaryModel:     strings.TrimSpace(SummaryModel()),
		SpecsDir:         SpecsDir(),
		SpecPatterns:     SplitList(SpecPatterns()),
		RepoPath:         RepoPath(),
		Remote:           GitRemote(),
		BaseBranch:       BaseBranch(),
		Publisher:        strings.ToLower(strings.TrimSpace(Publisher())),
		GHPath:           GHPath(),
		GitHubToken:      GitHubToken(),
		GitHubRepository: strings.TrimSpace(GitHubRepository()),
		LogLevel:         LogLevel(),
		DryRun:           DryRun(),
	}
	if s.SummaryModel == "" {
		s.SummaryModel = DefaultSummaryModel
	}
	if len(s.SpecPatterns) == 0 {
		s.SpecPatterns = SplitList(DefaultSpecPatterns)
	}

	switch s.Publisher {
	case PublisherGH, PublisherAPI:
	default:
		return Settings{}, fmt.Errorf("invalid publisher: %q (must be %s or %s)", s.Publisher, PublisherGH, PublisherAPI)
	}

	var err error
	if s.MaxDiffChars, err = parsePositiveInt(MaxDiffChars()); err != nil {
		return Settings{}, fmt.Errorf("invalid max_diff_chars: %w", err)
	}
	if s.LLMCallTimeout, err = parseDuration(LLMCallTimeout(), 0); err != nil {
		return Settings{}, fmt.Errorf("invalid llm_call_timeout: %w", err)
	}
	if s.GitTimeout, err = parseDuration(GitTimeout(), 0); err != nil {
		return Settings{}, fmt.Errorf("invalid git_timeout: %w", err)
	}
	return s, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
