package config

const (
	defaultOutputDir      = "~/Downloads/flipfetch"
	defaultCacheDir       = "~/.cache/flipfetch"
	defaultLogDir         = "~/.local/share/flipfetch/logs"
	defaultWorkers        = 6
	defaultPageSize       = "large"
	defaultRequestTimeout = 30
	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultArtifactURL = "https://static.fliphtml5.com/resourceFiles/html5_templates/js/deString.js"
	defaultDecodeWait  = 30
	defaultLedgerPath  = "~/.local/share/flipfetch/history.db"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir,
			LogDir:    defaultLogDir,
		},
		Download: Download{
			Workers:        defaultWorkers,
			PageSize:       defaultPageSize,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
		Decoder: Decoder{
			ArtifactURL:    defaultArtifactURL,
			TimeoutSeconds: defaultDecodeWait,
		},
		Ledger: Ledger{
			Enabled: true,
			Path:    defaultLedgerPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
