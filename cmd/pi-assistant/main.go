// pi-assistant - voice assistant daemon for Pi audio devices.
// Orchestrates staged pipeline runs (wake word, STT, intent, TTS) and
// drives playback of synthesized speech on registered devices.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/mKenfenheuer/pi-assistant/internal/config"
	"github.com/mKenfenheuer/pi-assistant/internal/entries"
	"github.com/mKenfenheuer/pi-assistant/internal/log"
	"github.com/mKenfenheuer/pi-assistant/pkg/assist"
	"github.com/mKenfenheuer/pi-assistant/pkg/assist/remote"
	"github.com/mKenfenheuer/pi-assistant/pkg/media"
	"github.com/mKenfenheuer/pi-assistant/pkg/web"
)

func main() {
	config.Load()

	listen := flag.String("listen", config.ListenAddr(), "HTTP listen address")
	pipelineURL := flag.String("pipeline-url", config.PipelineURL(), "staged pipeline WebSocket URL")
	hostname := flag.String("hostname", config.Hostname(),
		"register a device at startup, e.g. "+config.DefaultHostname+" (default: none)")
	debug := flag.Bool("debug", false, "enable verbose debug logging")
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	store := entries.NewStore()
	if *hostname != "" {
		if _, err := store.Create(*hostname); err != nil {
			log.Error("initial device registration failed", "hostname", *hostname, "error", err)
		}
	}

	source := remote.NewSource(*pipelineURL)
	selector := assist.NewSelector("default")
	server := web.NewServer(store, source, selector, media.Passthrough{})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go server.PollStates(ctx, config.PollInterval())

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	log.Info("pi-assistant starting",
		"listen", *listen,
		"pipeline_url", *pipelineURL)
	if err := server.Listen(*listen); err != nil {
		log.Error("server exited", "error", err)
	}
}
