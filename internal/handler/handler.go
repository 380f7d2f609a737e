package handler

import (
	"agent-service/internal/docjob"
	"agent-service/internal/reconcile"
	"agent-service/pkg/config"
	"agent-service/pkg/elevenlabs"
)

// Package-level collaborators, wired once at startup by main.
var (
	conf      *config.Config
	provider  elevenlabs.API
	docWorker *docjob.Worker
	sweeper   *reconcile.Sweeper
)

// Init wires the handlers' collaborators. Must be called before any route is
// served; tests call it with fakes.
func Init(c *config.Config, p elevenlabs.API, w *docjob.Worker, s *reconcile.Sweeper) {
	conf = c
	provider = p
	docWorker = w
	sweeper = s
}
