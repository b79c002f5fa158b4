package main

import (
	"context"
	"time"

	"github.com/FocuswithJustin/WikiruKit/internal/server"
)

// ServeCmd starts the API server.
type ServeCmd struct {
	Port       int           `short:"p" default:"8080" env:"WIKIRU_PORT" help:"Port to listen on"`
	Origins    []string      `sep:"," env:"WIKIRU_ORIGINS" help:"Allowed CORS and WebSocket origins (empty allows all)"`
	RateLimit  int           `default:"0" help:"Requests per minute per client (0 disables)"`
	RateBurst  int           `default:"10" help:"Burst size for the rate limiter"`
	CacheTTL   time.Duration `name:"cache-ttl" default:"10m" help:"How long rebuild results are cached"`
	CacheItems int           `default:"256" help:"Maximum cached rebuild results"`
}

func (c *ServeCmd) Run(ctx context.Context) error {
	server.Version = version
	return server.Start(ctx, server.Config{
		Port:              c.Port,
		AllowedOrigins:    c.Origins,
		RateLimitRequests: c.RateLimit,
		RateLimitBurst:    c.RateBurst,
		CacheTTL:          c.CacheTTL,
		CacheEntries:      c.CacheItems,
	})
}
