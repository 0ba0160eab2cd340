package config

const (
	defaultWorkDir           = "~/.local/share/uniqvid/work"
	defaultResultsDir        = "~/.local/share/uniqvid/results"
	defaultLogDir            = "~/.local/share/uniqvid/logs"
	defaultAPIBind           = "127.0.0.1:7512"
	defaultWorkers           = 2
	defaultMaxCopies         = 10
	defaultMaxFileMB         = 50
	defaultSessionTTLSeconds = 900
	defaultMaxDim            = 720
	defaultVideoThreads      = 1
	defaultFFmpegPreset      = "veryfast"
	defaultStrength          = "medium"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			ResultsDir: defaultResultsDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Jobs: Jobs{
			Workers:           defaultWorkers,
			MaxCopies:         defaultMaxCopies,
			MaxFileMB:         defaultMaxFileMB,
			SessionTTLSeconds: defaultSessionTTLSeconds,
		},
		Video: Video{
			MaxDim:          defaultMaxDim,
			Threads:         defaultVideoThreads,
			Preset:          defaultFFmpegPreset,
			DefaultStrength: defaultStrength,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Jobs:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
