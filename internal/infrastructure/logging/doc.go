// Package logging provides structured logging for Hearth Core.
//
// It wraps log/slog so every component logs with the same default fields
// (service, version) and the same level filtering.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	devices.SetLogger(logger.With("component", "device"))
//
// Never log secrets such as the MQTT password or the InfluxDB token.
package logging
