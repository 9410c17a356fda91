package handlers

import (
	"go.uber.org/zap"

	"chargenet/internal/authorizer"
	"chargenet/internal/remoteop"
	"chargenet/internal/station"
)

// Set bundles all HTTP handlers with their dependencies.
type Set struct {
	registry *station.Registry
	engine   *authorizer.Engine
	facade   *remoteop.Facade
	logger   *zap.Logger
}

// NewSet builds the handler set.
func NewSet(registry *station.Registry, engine *authorizer.Engine, facade *remoteop.Facade, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{
		registry: registry,
		engine:   engine,
		facade:   facade,
		logger:   logger,
	}
}
