// Package tablebase defines the endgame tablebase probe contract (spec §6):
// given a position with few enough pieces remaining, return a move (and,
// where known, its win/draw/loss classification) without running search.
// Tablebase probing is external-collaborator territory per spec — a real
// deployment would call out to Syzygy tables or a network service the way
// original_source/sporkfish/endgame_tablebases/lila_tablebase.py calls a
// Lichess-hosted tablebase over HTTP — so this package specifies the
// interface plus a null implementation and a thin HTTP-backed one, and
// leaves a bespoke Syzygy binary-format reader out of scope.
package tablebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/position"
)

// PieceCountThreshold mirrors engine.py's use_endgame_tablebase: positions
// with more than six pieces on the board are never probed, since that is
// the largest table size the reference deployment ships.
const PieceCountThreshold = 6

// Outcome classifies a tablebase result from the probing side's
// perspective.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeDraw
	OutcomeLoss
)

// Result is what a successful probe returns.
type Result struct {
	Move             position.Move
	Outcome          Outcome
	DistanceToZero   int // plies to the next zeroing move (capture or pawn push)
}

// Probe is the tablebase contract every backend implements.
type Probe interface {
	// Query returns a Result for pos, or ok=false if the position isn't
	// covered (too many pieces, or the backend is unreachable).
	Query(ctx context.Context, pos *position.Position) (Result, bool)
}

// PieceCount counts occupied squares, used by callers to gate a Query call
// behind PieceCountThreshold before paying for a network round trip.
func PieceCount(pos *position.Position) int {
	n := 0
	for sq := uint8(0); sq < 64; sq++ {
		if _, _, occupied := pos.PieceAt(sq); occupied {
			n++
		}
	}
	return n
}

// Null is a Probe that never has an answer, used when no tablebase backend
// is configured; every Query call is a no-op rather than a special case the
// caller has to branch on.
type Null struct{}

// Query always reports a miss.
func (Null) Query(context.Context, *position.Position) (Result, bool) { return Result{}, false }

// LilaTablebase queries a Lichess-hosted tablebase server over HTTP,
// mirroring lila_tablebase.py's use of the same public endpoint and the
// teacher's lichess/client.go net/http-with-context style (plain
// http.Client, context-aware requests, no retry/backoff — a Non-goal per
// spec §1, network play and reconnection policy live outside the core).
type LilaTablebase struct {
	BaseURL string
	Client  *http.Client
	Logger  zerolog.Logger
}

// NewLilaTablebase builds a client against the standard public endpoint.
func NewLilaTablebase(logger zerolog.Logger) *LilaTablebase {
	return &LilaTablebase{
		BaseURL: "https://tablebase.lichess.ovh/standard",
		Client:  &http.Client{Timeout: 5 * time.Second},
		Logger:  logger,
	}
}

type lilaResponse struct {
	Category string `json:"category"`
	Dtz      int    `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
	} `json:"moves"`
}

// Query implements Probe.
func (l *LilaTablebase) Query(ctx context.Context, pos *position.Position) (Result, bool) {
	if PieceCount(pos) > PieceCountThreshold {
		return Result{}, false
	}

	endpoint := fmt.Sprintf("%s?fen=%s", l.BaseURL, url.QueryEscape(pos.FEN()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		l.Logger.Warn().Err(err).Msg("failed to build tablebase request")
		return Result{}, false
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		l.Logger.Warn().Err(err).Msg("tablebase request failed")
		return Result{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, false
	}

	var body lilaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		l.Logger.Warn().Err(err).Msg("failed to decode tablebase response")
		return Result{}, false
	}
	if len(body.Moves) == 0 {
		return Result{}, false
	}

	best := body.Moves[0]
	move, err := pos.ParseMove(best.UCI)
	if err != nil {
		l.Logger.Warn().Err(err).Str("uci", best.UCI).Msg("tablebase returned an unparseable move")
		return Result{}, false
	}

	return Result{
		Move:           move,
		Outcome:        categoryToOutcome(body.Category),
		DistanceToZero: body.Dtz,
	}, true
}

func categoryToOutcome(category string) Outcome {
	switch category {
	case "win", "maybe-win":
		return OutcomeWin
	case "loss", "maybe-loss":
		return OutcomeLoss
	case "draw":
		return OutcomeDraw
	default:
		return OutcomeUnknown
	}
}
