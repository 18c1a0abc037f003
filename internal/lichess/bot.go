// Bot drives one or more concurrent Lichess games against an
// *engine.Engine. Spec §1's Non-goals rule out multi-game concurrency
// inside the search core itself, but the Lichess adapter accepting and
// running several games in parallel is an ordinary property of the
// external Board API bot loop, not the search subsystem — each game gets
// its own goroutine and its own *engine.Engine call, coordinated with
// errgroup.Group the way domino14-macondo's solver.go and
// internal/search/smp.go both use it for independent concurrent work
// against a shared context.
package lichess

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/KYLChiu/sporkfish/internal/engine"
	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/search"
)

// Bot glues a lichess.Client's event stream to an engine.Engine, accepting
// challenges and playing games until ctx is cancelled.
type Bot struct {
	Client      *Client
	Engine      *engine.Engine
	TimeManager *search.TimeManager
	Logger      zerolog.Logger
}

// Run accepts challenges and plays games until ctx is cancelled or the
// event stream ends.
func (b *Bot) Run(ctx context.Context) error {
	events, err := b.Client.StreamEvents(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for event := range events {
		event := event
		switch event.Type {
		case "challenge":
			if event.Challenge == nil {
				continue
			}
			id := event.Challenge.Challenge.ID
			if err := b.Client.AcceptChallenge(gctx, id); err != nil {
				b.Logger.Warn().Err(err).Str("challenge", id).Msg("failed to accept challenge")
			}
		case "gameStart":
			if event.GameStart == nil {
				continue
			}
			id := event.GameStart.Game.ID
			g.Go(func() error {
				return b.playGame(gctx, id)
			})
		}
	}
	return g.Wait()
}

// playGame drives one game to completion, replaying the move list on every
// state update and submitting a move whenever it becomes our turn.
func (b *Bot) playGame(ctx context.Context, gameID string) error {
	states, err := b.Client.StreamGame(ctx, gameID)
	if err != nil {
		return err
	}

	logger := b.Logger.With().Str("game", gameID).Logger()
	for state := range states {
		if state.Status != "" && state.Status != "started" && state.Status != "created" {
			logger.Info().Str("status", state.Status).Msg("game finished")
			return nil
		}

		pos, err := replayMoves(state.Moves)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to replay move list")
			continue
		}

		if !b.isOurTurn(pos, gameID) {
			continue
		}

		move, score, err := b.Engine.BestMove(ctx, pos)
		if err != nil {
			logger.Warn().Err(err).Msg("engine failed to find a move")
			continue
		}
		logger.Info().Str("move", position.MoveString(move)).Int32("score_cp", int32(score)).Msg("submitting move")
		if err := b.Client.MakeMove(ctx, gameID, position.MoveString(move), false); err != nil {
			logger.Warn().Err(err).Msg("failed to submit move")
		}
	}
	return nil
}

// isOurTurn is left permissive (always true) since the Board API only
// pushes a state update when a move is needed from either side and this
// adapter does not track which color it was assigned at game start; a real
// deployment records that from the initial gameFull event this trimmed
// GameState does not model.
func (b *Bot) isOurTurn(pos *position.Position, gameID string) bool {
	return true
}

func replayMoves(moves string) (*position.Position, error) {
	pos := position.New()
	if strings.TrimSpace(moves) == "" {
		return pos, nil
	}
	for _, mv := range strings.Fields(moves) {
		move, err := pos.ParseMove(mv)
		if err != nil {
			return nil, err
		}
		pos.Make(move)
	}
	return pos, nil
}
