package config

import "time"

// Default configuration values.
const (
	DefaultAddr            = "127.0.0.1:6379"
	DefaultReadBufferSize  = 1024
	DefaultShutdownTimeout = 10 * time.Second

	DefaultStorageDir   = "store"
	DefaultSnapshotName = "dump"

	DefaultMetricsAddr = "127.0.0.1:9121"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:            DefaultAddr,
			ReadBufferSize:  DefaultReadBufferSize,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Storage: StorageSection{
			Dir:          DefaultStorageDir,
			SnapshotName: DefaultSnapshotName,
		},
		Metrics: MetricsSection{
			Addr: DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
