package config

import "time"

// ServerConfig is the root configuration for minredis-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the RESP listener.
type ServerSection struct {
	Addr string `koanf:"addr"`

	// ReadBufferSize is the per-connection read buffer. One command must fit
	// in a single read.
	ReadBufferSize int `koanf:"read_buffer_size"`

	// RateLimit is the commands per second allowed per client IP. 0 disables.
	RateLimit int `koanf:"rate_limit"`

	// IdleTimeout closes connections silent for this long. 0 disables.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageSection configures snapshots.
type StorageSection struct {
	Dir            string `koanf:"dir"`
	SnapshotName   string `koanf:"snapshot_name"`
	LoadOnStart    bool   `koanf:"load_on_start"`
	SaveOnShutdown bool   `koanf:"save_on_shutdown"`

	// EncryptionKey seals snapshots when set. At least 16 characters.
	EncryptionKey string `koanf:"encryption_key"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
