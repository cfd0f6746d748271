package config

import "time"

const (
	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Outbound HTTP
	ImeiLookupTimeout      = 30 * time.Second
	MaxLookupResponseBytes = 1 << 20

	// Notification delivery budget, lookup and send included
	NotificationTimeout = 60 * time.Second

	// HTTP server
	ReadHeaderTimeout = 5 * time.Second
	WriteTimeout      = 15 * time.Second
	ShutdownTimeout   = 10 * time.Second
	MaxCallbackBytes  = 64 << 10

	// Database pool
	PoolMaxConns = 10
	PoolMinConns = 2

	// Unnotified orders older than this are reported at startup
	UnnotifiedGrace = 5 * time.Minute
)
