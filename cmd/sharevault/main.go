// Package main provides the ShareVault CLI application entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"sharevault/internal/core"
	"sharevault/internal/flood"
	httpserver "sharevault/internal/http"
	"sharevault/internal/i18n"
	"sharevault/internal/llm"
	"sharevault/internal/spotify"
	"sharevault/internal/store"
)

const (
	envPrefix         = "SHAREVAULT"
	defaultServerHost = core.DefaultServerHost
	noneProvider      = "none"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sharevault",
	Short: "ShareVault - collect the links shared in a chat export",
	Long: `ShareVault reads exported chat transcripts, collects every shared link with
who posted it and when, and enriches Spotify, YouTube and web links with names
and preview images. Shared tracks can be collected into a curated playlist.`,
	SilenceUsage: true,
	RunE:         runShareVault,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.Int64("max-upload-bytes", core.DefaultMaxUploadBytes, "Maximum accepted upload size in bytes")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-redirect-url", "", "Spotify OAuth redirect URL (default derived from server address)")
	flags.String("spotify-token-path", "./spotify_token.json", "Where the Spotify user token is stored")
	flags.String("playlist-name", core.DefaultPlaylistName, "Name of the curated playlist shared tracks are added to")
	flags.String("youtube-api-key", "", "YouTube Data API key")
	flags.String("llm-provider", noneProvider, "LLM provider for video title parsing (openai, anthropic, none)")
	flags.String("llm-model", "", "LLM model name")
	flags.String("llm-api-key", "", "LLM API key")
	flags.String("llm-base-url", "", "LLM API base URL override")
	flags.String("mode", core.ModeDevelopment, "Operating mode; PROD deletes uploads right after reading them")
	flags.String("upload-dir", core.DefaultUploadDir, "Directory uploads are stored in")
	flags.String("upload-file-name", core.DefaultUploadFileName, "File name uploads are stored under")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Upload page language (%s)", supportedLangs))
	flags.Int("upload-limit-per-minute", core.DefaultUploadLimitPerMinute, "Maximum uploads per client per minute (0 disables)")
	flags.Bool("expand-music", true, "Look up Spotify links by default")
	flags.Bool("expand-video", true, "Look up YouTube links by default")
	flags.Bool("expand-web", false, "Look up other web pages by default")
	flags.Bool("update-playlist", false, "Add shared tracks to the curated playlist by default")
	flags.Int("music-workers", core.DefaultMusicWorkers, "Concurrent Spotify lookup groups")
	flags.Int("web-concurrency", core.DefaultWebConcurrency, "Concurrent web page fetches")
	flags.Duration("web-timeout", core.DefaultConfig().Web.Timeout, "Timeout for a single web or YouTube request")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(analyseCmd)
}

func initConfig() {
	// Load .env file explicitly using gotenv
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureServer(cfg)
	configureSpotify(cfg)
	configureYouTube(cfg)
	configureLLM(cfg)
	configureApp(cfg)

	return cfg
}

func configureServer(cfg *core.Config) {
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
	if maxBytes := viper.GetInt64("max-upload-bytes"); maxBytes > 0 {
		cfg.Server.MaxUploadBytes = maxBytes
	}
	cfg.Log.Level = viper.GetString("log-level")
}

func configureSpotify(cfg *core.Config) {
	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	cfg.Spotify.RedirectURL = viper.GetString("spotify-redirect-url")
	cfg.Spotify.TokenPath = viper.GetString("spotify-token-path")
	if cfg.Spotify.TokenPath == "" {
		cfg.Spotify.TokenPath = "./spotify_token.json"
	}
	cfg.Spotify.PlaylistName = viper.GetString("playlist-name")
	if cfg.Spotify.PlaylistName == "" {
		cfg.Spotify.PlaylistName = core.DefaultPlaylistName
	}

	// Build default redirect URL based on server configuration if not explicitly set
	if cfg.Spotify.RedirectURL == "" {
		serverHost := cfg.Server.Host
		if serverHost == defaultServerHost {
			serverHost = "127.0.0.1" // Use localhost for OAuth callback
		}
		cfg.Spotify.RedirectURL = fmt.Sprintf("http://%s:%d/callback", serverHost, cfg.Server.Port)
	}
}

func configureYouTube(cfg *core.Config) {
	cfg.YouTube.APIKey = viper.GetString("youtube-api-key")
	cfg.Web.Concurrency = viper.GetInt("web-concurrency")
	if cfg.Web.Concurrency <= 0 {
		cfg.Web.Concurrency = core.DefaultWebConcurrency
	}
	if timeout := viper.GetDuration("web-timeout"); timeout > 0 {
		cfg.Web.Timeout = timeout
	}
}

func configureLLM(cfg *core.Config) {
	cfg.LLM.Provider = viper.GetString("llm-provider")
	cfg.LLM.Model = viper.GetString("llm-model")
	cfg.LLM.APIKey = viper.GetString("llm-api-key")
	cfg.LLM.BaseURL = viper.GetString("llm-base-url")
}

func configureApp(cfg *core.Config) {
	cfg.App.Mode = strings.ToUpper(viper.GetString("mode"))
	cfg.App.UploadDir = viper.GetString("upload-dir")
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = core.DefaultUploadDir
	}
	cfg.App.UploadFileName = viper.GetString("upload-file-name")
	if cfg.App.UploadFileName == "" {
		cfg.App.UploadFileName = core.DefaultUploadFileName
	}

	// Language configuration with validation
	cfg.App.Language = viper.GetString("language")
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	cfg.App.UploadLimitPerMinute = viper.GetInt("upload-limit-per-minute")
	if cfg.App.UploadLimitPerMinute < 0 {
		cfg.App.UploadLimitPerMinute = core.DefaultUploadLimitPerMinute
	}
	cfg.App.MusicWorkers = viper.GetInt("music-workers")
	if cfg.App.MusicWorkers <= 0 {
		cfg.App.MusicWorkers = core.DefaultMusicWorkers
	}

	cfg.App.Defaults = core.Options{
		EnableMusic:           viper.GetBool("expand-music"),
		EnableVideo:           viper.GetBool("expand-video"),
		EnableWeb:             viper.GetBool("expand-web"),
		UpdateCuratedPlaylist: viper.GetBool("update-playlist"),
	}
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runShareVault(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting ShareVault",
		zap.String("mode", config.App.Mode),
		zap.String("llm_provider", config.LLM.Provider),
		zap.String("playlist", config.Spotify.PlaylistName),
		zap.Bool("expand_music", config.App.Defaults.EnableMusic),
		zap.Bool("expand_video", config.App.Defaults.EnableVideo),
		zap.Bool("expand_web", config.App.Defaults.EnableWeb))

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	metrics := httpserver.NewMetrics()
	analyser, err := buildAnalyser(ctx, config, config.App.ConsumeUploads(), metrics)
	if err != nil {
		return err
	}

	gate := flood.New(config.App.UploadLimitPerMinute)
	defer gate.Stop()

	server := httpserver.NewServer(config, analyser, gate, metrics, logger.Named("http"))
	return runServices(ctx, server)
}

func runServices(ctx context.Context, server *httpserver.Server) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	logger.Info("ShareVault started successfully",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("ShareVault stopped with error", zap.Error(err))
		return err
	}

	logger.Info("ShareVault stopped gracefully")
	return nil
}

// buildAnalyser wires the link pipeline. Providers without credentials are
// left out; validateConfig has already rejected configurations whose defaults
// need them.
func buildAnalyser(ctx context.Context, cfg *core.Config, consume bool, recorder core.Recorder) (*core.Analyser, error) {
	var deps core.OrchestratorDeps

	extractor, err := createSongExtractor(cfg)
	if err != nil {
		return nil, err
	}

	if hasSpotifyCredentials(cfg) {
		client := spotify.NewClient(&cfg.Spotify, logger.Named("spotify"))
		if err := client.Authenticate(ctx, cfg.App.Defaults.UpdateCuratedPlaylist); err != nil {
			return nil, fmt.Errorf("failed to authenticate with Spotify: %w", err)
		}

		deps.Music = core.NewMusicEnricher(client, cfg.App.MusicWorkers, logger.Named("music"), recorder)
		deps.Playlist = core.NewPlaylistSync(client, cfg.Spotify.PlaylistName, newPlaylistSet,
			logger.Named("playlist"), recorder)
		deps.Matcher = core.NewTrackMatcher(client, extractor, logger.Named("matcher"))
	}

	if cfg.YouTube.APIKey != "" {
		catalog := core.NewVideoCatalog(cfg.YouTube.APIKey, cfg.Web.Timeout)
		deps.Video = core.NewVideoEnricher(catalog, logger.Named("video"), recorder)
	}

	deps.Web = core.NewWebEnricher(core.NewPageFetcher(cfg.Web.Timeout), cfg.Web.Concurrency,
		logger.Named("web"), recorder)

	orchestrator := core.NewOrchestrator(deps, logger.Named("orchestrator"))
	return core.NewAnalyser(orchestrator, consume, logger.Named("analyser"), recorder), nil
}

func newPlaylistSet(existing, incoming int) core.DedupStore {
	return store.NewPlaylistSet(existing, incoming)
}

func createSongExtractor(cfg *core.Config) (core.SongExtractor, error) {
	if cfg.LLM.Provider == noneProvider || cfg.LLM.Provider == "" {
		return nil, nil
	}
	extractor, err := llm.NewProvider(&cfg.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return extractor, nil
}

func hasSpotifyCredentials(cfg *core.Config) bool {
	return cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != ""
}

func validateConfig(cfg *core.Config) error {
	var errs []error

	if cfg.App.Defaults.EnableMusic || cfg.App.Defaults.UpdateCuratedPlaylist {
		if cfg.Spotify.ClientID == "" {
			errs = append(errs, errors.New("spotify client ID is required when music expansion is enabled"))
		}
		if cfg.Spotify.ClientSecret == "" {
			errs = append(errs, errors.New("spotify client secret is required when music expansion is enabled"))
		}
	}

	if cfg.App.Defaults.EnableVideo && cfg.YouTube.APIKey == "" {
		errs = append(errs, errors.New("YouTube API key is required when video expansion is enabled"))
	}

	if cfg.App.Mode != core.ModeProduction && cfg.App.Mode != core.ModeDevelopment {
		errs = append(errs, fmt.Errorf("unknown mode %q (expected %s or %s)",
			cfg.App.Mode, core.ModeProduction, core.ModeDevelopment))
	}

	if cfg.LLM.Provider != noneProvider && cfg.LLM.Provider != "" && cfg.LLM.APIKey == "" {
		errs = append(errs, fmt.Errorf("LLM API key is required for provider: %s", cfg.LLM.Provider))
	}

	return errors.Join(errs...)
}

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd.Root().PersistentFlags())

	if err := os.WriteFile(".env.example", []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(flags *pflag.FlagSet) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# ShareVault Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	fmt.Fprintf(&content, "# Format: %s_<SETTING>=value\n", envPrefix)
	content.WriteString("# CLI equivalent: --<setting>\n")
	content.WriteString("#\n\n")

	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "generate-env-example" {
			return
		}
		fmt.Fprintf(&content, "# %s\n%s=%s\n\n", f.Usage, flagToEnvVar(f.Name), f.DefValue)
	})

	return content.String()
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
