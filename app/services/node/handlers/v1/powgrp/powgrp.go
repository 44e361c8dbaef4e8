// Package powgrp maintains the group of handlers for proof of work and
// difficulty access.
package powgrp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/R-Song/conflux-go/business/web/errs"
	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
	"github.com/R-Song/conflux-go/foundation/blockchain/state"
	"github.com/R-Song/conflux-go/foundation/events"
	"github.com/R-Song/conflux-go/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of pow endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// LatestHeader returns the header at the tip of the pivot chain.
func (h Handlers) LatestHeader(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.State.RetrieveLatestHeader()

	info := headerInfo{
		Hash:   latest.Hash().Hex(),
		Header: latest,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// TargetDifficulty returns the difficulty a header must be mined at to
// be admitted into the current epoch.
func (h Handlers) TargetDifficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	difficulty := h.State.CurrentTargetDifficulty()

	info := difficultyInfo{
		Difficulty: difficulty.Hex(),
		Boundary:   pow.DifficultyToBoundary(difficulty).Hex(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// EpochTargetDifficulty returns the memoized target difficulty for the
// epoch following the one that ends at the specified block hash.
func (h Handlers) EpochTargetDifficulty(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash := common.HexToHash(web.Param(r, "hash"))

	difficulty, err := h.State.EpochTargetDifficulty(hash)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	info := difficultyInfo{
		Difficulty: difficulty.Hex(),
		Boundary:   pow.DifficultyToBoundary(difficulty).Hex(),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// ValidatePow validates a miner solution against a problem without
// touching the chain state.
func (h Handlers) ValidatePow(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req validatePow
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	difficulty, err := toUint256("difficulty", req.Difficulty)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	if difficulty.IsZero() {
		return errs.NewTrusted(errors.New("difficulty must be positive"), http.StatusBadRequest)
	}

	nonce, err := toUint256("nonce", req.Nonce)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	problem := pow.NewProblem(common.HexToHash(req.BlockHash), difficulty)
	solution := pow.Solution{Nonce: nonce}

	h.Log.Infow("validate pow", "traceid", v.TraceID, "blockhash", req.BlockHash, "difficulty", req.Difficulty)

	hash := pow.Compute(nonce, problem.BlockHash)

	result := validatePowResult{
		Valid:   pow.Validate(problem, solution),
		PowHash: hash.Hex(),
	}
	if result.Valid {
		result.Quality = pow.HashToQuality(hash, nonce).Hex()
	}

	return web.Respond(ctx, w, result, http.StatusOK)
}

// SubmitHeader admits a mined header into the chain state.
func (h Handlers) SubmitHeader(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req submitHeader
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	header, err := req.toBlockHeader()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit header", "traceid", v.TraceID, "height", header.Height, "parent", req.ParentHash)

	if err := h.State.ProcessHeader(header); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "header admitted",
		Hash:   header.Hash().Hex(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
