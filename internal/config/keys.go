package config

// Keys double as environment variable names through viper.AutomaticEnv,
// which upper-cases them (pr_number -> PR_NUMBER).
const (
	KeyPRNumber         = "pr_number"
	KeyOpenAIAPIKey     = "openai_api_key"
	KeyOpenAIBaseURL    = "openai_base_url"
	KeySummaryModel     = "summary_model"
	KeyLLMCallTimeout   = "llm_call_timeout"
	KeySpecsDir         = "specs_dir"
	KeySpecPatterns     = "spec_patterns"
	KeyMaxDiffChars     = "max_diff_chars"
	KeyRepoPath         = "repo_path"
	KeyGitRemote        = "git_remote"
	KeyBaseBranch       = "base_branch"
	KeyGitTimeout       = "git_timeout"
	KeyPublisher        = "publisher"
	KeyGHPath           = "gh_path"
	KeyGitHubToken      = "github_token"
	KeyGitHubRepository = "github_repository"
	KeyLogLevel         = "log_level"
	KeyDryRun           = "dry_run"
)
