package config

const (
	defaultIncomingDir       = "~/.local/share/shuttle/incoming"
	defaultTVDir             = "~/tv"
	defaultLogDir            = "~/.local/share/shuttle/logs"
	defaultSFTPPort          = 22
	defaultMaxWorkers        = 4
	defaultMaxPathLength     = 250
	defaultGraceSeconds      = 60
	defaultRetryCount        = 2
	defaultRetryDelaySeconds = 5
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "en-US"
	defaultLLMProvider       = "ollama"
	defaultLLMBaseURL        = "http://localhost:11434"
	defaultLLMModel          = "gpt-oss:20b"
	defaultLLMThreshold      = 0.7
	defaultLLMTimeout        = 60
	defaultPollInterval      = 300
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		SFTP: SFTP{
			Port: defaultSFTPPort,
		},
		Paths: Paths{
			IncomingDir: defaultIncomingDir,
			TVDir:       defaultTVDir,
			LogDir:      defaultLogDir,
		},
		Transfers: Transfers{
			MaxWorkers:        defaultMaxWorkers,
			MaxPathLength:     defaultMaxPathLength,
			GraceSeconds:      defaultGraceSeconds,
			RetryCount:        defaultRetryCount,
			RetryDelaySeconds: defaultRetryDelaySeconds,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		LLM: LLM{
			Provider:            defaultLLMProvider,
			BaseURL:             defaultLLMBaseURL,
			Model:               defaultLLMModel,
			ConfidenceThreshold: defaultLLMThreshold,
			TimeoutSeconds:      defaultLLMTimeout,
		},
		Daemon: Daemon{
			PollIntervalSeconds: defaultPollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
