package config

import "time"

// Application constants
const (
	AppName   = "DataCleanr"
	EnvPrefix = "DATACLEANR"

	// Server defaults
	DefaultPort           = 8000
	DefaultMaxUploadBytes = 50 << 20
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultRequestTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Session lifecycle
	DefaultSessionTTL    = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/datacleanr.log"
)

// Storage backends understood by the session store factory
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)
