package config

const (
	defaultSyncLookahead  = 0
	defaultReorderDelay   = 3
	defaultKeyintMax      = 250
	defaultDecisionWindow = 2
	defaultRCLookahead    = 40
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	maxSyncLookahead = 250
	maxReorderDelay  = 16
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Lookahead: Lookahead{
			SyncLookahead:  defaultSyncLookahead,
			ReorderDelay:   defaultReorderDelay,
			KeyintMax:      defaultKeyintMax,
			DecisionWindow: defaultDecisionWindow,
			MBTree:         true,
			RCLookahead:    defaultRCLookahead,
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
