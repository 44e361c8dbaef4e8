// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/R-Song/conflux-go/app/services/node/handlers/v1/powgrp"
	"github.com/R-Song/conflux-go/foundation/blockchain/state"
	"github.com/R-Song/conflux-go/foundation/events"
	"github.com/R-Song/conflux-go/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	const version = "v1"

	pgh := powgrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/genesis", pgh.Genesis)
	app.Handle(http.MethodGet, version, "/headers/latest", pgh.LatestHeader)
	app.Handle(http.MethodGet, version, "/difficulty", pgh.TargetDifficulty)
	app.Handle(http.MethodGet, version, "/difficulty/:hash", pgh.EpochTargetDifficulty)
	app.Handle(http.MethodPost, version, "/pow/validate", pgh.ValidatePow)
	app.Handle(http.MethodPost, version, "/headers/submit", pgh.SubmitHeader)
	app.Handle(http.MethodGet, version, "/events", pgh.Events)
}
