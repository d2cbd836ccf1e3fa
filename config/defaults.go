// =============================================================================
// 📦 indexd default configuration
// =============================================================================
// Sensible defaults for every configuration section.
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Store:     DefaultStoreConfig(),
		Update:    DefaultUpdateConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8983,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxConns:        0,
		MaxBodyBytes:    64 << 20,
		RateLimitRPS:    0,
		RateLimitBurst:  200,
	}
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend: "memory",
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "indexd",
			Password:        "",
			Name:            "indexd",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     false,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Password:     "",
			DB:           0,
			MaxRetries:   3,
			PoolSize:     10,
			MinIdleConns: 2,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "indexd",
			Collection: "documents",
			Timeout:    10 * time.Second,
		},
	}
}

// DefaultUpdateConfig returns the default update configuration.
func DefaultUpdateConfig() UpdateConfig {
	return UpdateConfig{
		DefaultWriter:  "json",
		LoaderDefaults: map[string]string{},
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "indexd",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig returns the default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "indexd",
	}
}
