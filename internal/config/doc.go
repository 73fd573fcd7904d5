// Package config provides configuration loading for the order metrics service.
//
// # Configuration Sources
//
// Configuration is layered in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// Variables use the ORDERMETRICS_ prefix followed by the section name:
//
//	ORDERMETRICS_SERVER_PORT=8080
//	ORDERMETRICS_INGEST_FETCH_TIMEOUT=30s
//	ORDERMETRICS_INGEST_ENCODINGS=utf-8,windows-1252
//	ORDERMETRICS_LOGGING_LEVEL=debug
//	ORDERMETRICS_TELEMETRY_TRACE_EXPORTER=stdout
//
// ORDERMETRICS_CONFIG_FILE points Load at a specific YAML file. Without it
// config.yaml and configs/config.yaml are searched.
package config
