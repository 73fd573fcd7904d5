package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "ordermetrics"
	AppVersion = "1.0.0"

	// Ingestion limits
	DefaultFetchTimeout = 30 * time.Second
	DefaultMaxBytes     = 100 << 20 // 100MB

	// Identifier rules
	MinFileIDLength = 10

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Telemetry exporters
	TraceExporterStdout      = "stdout"
	TraceExporterNone        = "none"
	MetricExporterPrometheus = "prometheus"
	MetricExporterNone       = "none"
)

// URLs and Endpoints
const (
	APIBasePath       = "/api"
	OrderItemsPath    = "/api/v1/order-items"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
