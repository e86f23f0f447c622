package core

import (
	"time"
)

// Configuration constants
const (
	DefaultServerHost           = "0.0.0.0"
	DefaultServerPort           = 5000
	DefaultMaxUploadBytes       = 16 << 20
	DefaultPlaylistName         = "Sweating"
	DefaultUploadDir            = "uploads/"
	DefaultUploadFileName       = "sharevault.txt"
	DefaultUploadLimitPerMinute = 10
	DefaultMusicWorkers         = 4
	DefaultWebConcurrency       = 5
	DefaultLanguage             = "en"

	// ModeProduction makes the upload boundary consume (delete) files right after reading them.
	ModeProduction = "PROD"
	// ModeDevelopment keeps uploaded files on disk.
	ModeDevelopment = "DEV"
)

type Config struct {
	Spotify SpotifyConfig
	YouTube YouTubeConfig
	Web     WebConfig
	LLM     LLMConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenPath    string
	PlaylistName string
}

type YouTubeConfig struct {
	APIKey string
}

type WebConfig struct {
	Concurrency int
	Timeout     time.Duration
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	Mode                 string
	UploadDir            string
	UploadFileName       string
	Language             string
	UploadLimitPerMinute int
	MusicWorkers         int
	Defaults             Options
}

// ConsumeUploads reports whether uploaded transcripts are deleted right after they are read.
func (c AppConfig) ConsumeUploads() bool {
	return c.Mode == ModeProduction
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL:  "http://127.0.0.1:5000/callback",
			TokenPath:    "./spotify_token.json",
			PlaylistName: DefaultPlaylistName,
		},
		Web: WebConfig{
			Concurrency: DefaultWebConcurrency,
			Timeout:     10 * time.Second,
		},
		LLM: LLMConfig{
			Provider: "none",
		},
		Server: ServerConfig{
			Host:           DefaultServerHost,
			Port:           DefaultServerPort,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   2 * time.Minute,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			Mode:                 ModeDevelopment,
			UploadDir:            DefaultUploadDir,
			UploadFileName:       DefaultUploadFileName,
			Language:             DefaultLanguage,
			UploadLimitPerMinute: DefaultUploadLimitPerMinute,
			MusicWorkers:         DefaultMusicWorkers,
			Defaults: Options{
				EnableMusic: true,
				EnableVideo: true,
			},
		},
	}
}
