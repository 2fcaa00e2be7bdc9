package config

import "time"

// Application constants
const (
	AppName    = "Troop Cookie Logistics"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. TROOP_SERVER_PORT.
	EnvPrefix = "TROOP"
	// ConfigFileEnv names the variable holding an explicit config file path.
	ConfigFileEnv = "TROOP_CONFIG"

	// Upload limits
	DefaultMaxUploadBytes = 10 << 20 // 10MB
	DefaultMaxRows        = 50000
	DefaultMaxColumns     = 500
	DefaultArchiveWorkers = 4

	// Rate limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	DefaultPDFTimeout     = 30 * time.Second

	// File paths (relative to executable)
	DefaultLogsDir        = "logs"
	DefaultOutputDir      = "output"
	DefaultVocabularyFile = "vocabulary.yaml"
)
