package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/api"
	"github.com/dd0wney/topoforge/pkg/metrics"
	"github.com/dd0wney/topoforge/pkg/server"
)

const version = "1.0.0"

func main() {
	port := flag.Int("port", 0, "HTTP server port (default 8080, or set PORT)")
	dev := flag.Bool("dev", false, "Use development logging (console output)")
	flag.Parse()

	// Get port from env if not provided
	if *port == 0 {
		if envPort := os.Getenv("PORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil {
				*port = p
			} else {
				*port = 8080
			}
		} else {
			*port = 8080
		}
	}

	var logger *zap.Logger
	var err error
	if *dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := metrics.NewRegistry()
	apiServer := api.NewServer(logger, registry, version)

	logger.Info("topology compiler server starting",
		zap.String("version", version),
		zap.Int("port", *port))

	gs := server.NewGracefulServer(fmt.Sprintf(":%d", *port), apiServer.Handler(), logger)
	if err := gs.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
