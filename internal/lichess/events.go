package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Event is the discriminated union of Lichess's account-level event stream,
// generalising the teacher's EventMessage (a Type/Data pair with a custom
// UnmarshalJSON) into a single struct with typed optional fields, which
// reads more naturally from Go call sites than a type-switch on Data.
type Event struct {
	Type      string
	Challenge *ChallengeEvent
	GameStart *GameStartEvent
}

// ChallengeEvent mirrors the fields of a Lichess "challenge" event this bot
// actually needs to decide whether to accept.
type ChallengeEvent struct {
	Challenge struct {
		ID      string `json:"id"`
		Rated   bool   `json:"rated"`
		Variant struct {
			Key string `json:"key"`
		} `json:"variant"`
		TimeControl struct {
			Type      string `json:"type"`
			Limit     int64  `json:"limit"`
			Increment int64  `json:"increment"`
		} `json:"timeControl"`
	} `json:"challenge"`
}

// GameStartEvent mirrors a Lichess "gameStart" event.
type GameStartEvent struct {
	Game struct {
		ID string `json:"id"`
	} `json:"game"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	e.Type = header.Type
	switch header.Type {
	case "challenge":
		var c ChallengeEvent
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		e.Challenge = &c
	case "gameStart":
		var g GameStartEvent
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		e.GameStart = &g
	}
	return nil
}

// StreamEvents opens the account-wide event stream (challenges and game
// starts), the Go-context-aware equivalent of the teacher's StreamEvents.
func (c *Client) StreamEvents(ctx context.Context) (<-chan Event, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/stream/event", nil)
	if err != nil {
		return nil, err
	}
	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeNDJSON[Event](res, c.logger), nil
}

// GameState is one line of a game's move stream: either the initial full
// state or an incremental update, distinguished by Type the way Lichess's
// board game stream does.
type GameState struct {
	Type   string `json:"type"`
	Moves  string `json:"moves"`
	WTime  int64  `json:"wtime"`
	BTime  int64  `json:"btime"`
	WInc   int64  `json:"winc"`
	BInc   int64  `json:"binc"`
	Status string `json:"status"`
}

// StreamGame opens the per-game move stream for gameID.
func (c *Client) StreamGame(ctx context.Context, gameID string) (<-chan GameState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/bot/game/stream/%s", gameID), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeNDJSON[GameState](res, c.logger), nil
}

// AcceptChallenge accepts a pending challenge by ID.
func (c *Client) AcceptChallenge(ctx context.Context, challengeID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/challenge/%s/accept", challengeID), nil)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return err
	}
	return res.Body.Close()
}
