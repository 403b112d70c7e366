package config

const (
	defaultDataDir                = "~/.local/share/greensprint"
	defaultLogDir                 = "~/.local/share/greensprint/logs"
	defaultImportDir              = "~/.local/share/greensprint/import"
	defaultAPIBind                = "127.0.0.1:7465"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 60
	defaultNotifyRequestTimeout   = 10
	defaultScanRateLimitPerMinute = 60
	defaultScanRateBurst          = 10
	defaultRadiusKm               = 5.0
	defaultMaxRadiusKm            = 500.0
	defaultMilestoneCheckInterval = 60
	defaultImportRescanInterval   = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ImportDir: defaultImportDir,
			APIBind:   defaultAPIBind,
		},
		Scanning: Scanning{
			RecordEvents:       true,
			RateLimitPerMinute: defaultScanRateLimitPerMinute,
			RateBurst:          defaultScanRateBurst,
		},
		Geo: Geo{
			DefaultRadiusKm: defaultRadiusKm,
			MaxRadiusKm:     defaultMaxRadiusKm,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Trees:          true,
			Scans:          false,
			Achievements:   true,
			Campaigns:      true,
			Imports:        true,
			Errors:         true,
		},
		Import: Import{
			Enabled: true,
		},
		Workflow: Workflow{
			MilestoneCheckInterval: defaultMilestoneCheckInterval,
			ImportRescanInterval:   defaultImportRescanInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
