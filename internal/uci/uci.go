// Package uci is a thin Universal Chess Interface adapter (spec §6: "UCI
// protocol" is an external-collaborator interface, specified only at its
// boundary). It parses the handful of UCI commands a GUI actually sends
// during play, drives an *engine.Engine, and writes "bestmove"/"info"
// lines back to stdout, the same responsibility the teacher's
// mains/uci/main.go bundles into main() directly — split out here into a
// reusable Loop so cmd/sporkfish-uci/main.go can stay a few lines.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/engine"
	"github.com/KYLChiu/sporkfish/internal/position"
	"github.com/KYLChiu/sporkfish/internal/search"
)

// Loop reads UCI commands from in and writes responses to out until "quit"
// or in is exhausted.
type Loop struct {
	Engine      *engine.Engine
	TimeManager *search.TimeManager
	Logger      zerolog.Logger

	outMu sync.Mutex
	out   io.Writer
	pos   *position.Position

	// searchMu guards cancelSearch and searchDone: "go" runs the search in
	// its own goroutine so the read loop stays free to notice "stop" (which
	// cancels the search's context) or "quit" while a search is in flight,
	// mirroring how a real GUI expects stop to interrupt a running go.
	searchMu     sync.Mutex
	cancelSearch context.CancelFunc
	searchDone   chan struct{}
}

// NewLoop builds a Loop around an already-constructed engine.
func NewLoop(e *engine.Engine, tm *search.TimeManager, logger zerolog.Logger, out io.Writer) *Loop {
	return &Loop{Engine: e, TimeManager: tm, Logger: logger, out: out, pos: position.New()}
}

// Run drives the loop to completion, mirroring the teacher's uciLoop.
func (l *Loop) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "uci":
			l.println("id name sporkfish")
			l.println("id author KYLChiu")
			l.println("uciok")
		case "isready":
			l.println("readyok")
		case "ucinewgame":
			l.pos = position.New()
			l.Engine.NewGame()
		case "position":
			l.handlePosition(fields)
		case "go":
			l.handleGo(fields)
		case "stop":
			l.stopSearch()
		case "quit":
			l.stopSearch()
			l.waitForSearch()
			return
		default:
			l.println(fmt.Sprintf("info string unknown command %q", fields[0]))
		}
	}
}

func (l *Loop) println(s string) {
	l.outMu.Lock()
	defer l.outMu.Unlock()
	fmt.Fprintln(l.out, s)
}

func (l *Loop) handlePosition(fields []string) {
	if len(fields) < 2 {
		l.println("info string malformed position command")
		return
	}

	rest := fields[1:]
	var pos *position.Position
	var err error
	switch strings.ToLower(rest[0]) {
	case "startpos":
		pos = position.New()
		rest = rest[1:]
	case "fen":
		rest = rest[1:]
		fenEnd := len(rest)
		for i, f := range rest {
			if strings.ToLower(f) == "moves" {
				fenEnd = i
				break
			}
		}
		pos, err = engine.ParsePosition(strings.Join(rest[:fenEnd], " "))
		if err != nil {
			l.println(fmt.Sprintf("info string %v", err))
			return
		}
		rest = rest[fenEnd:]
	default:
		l.println("info string malformed position command")
		return
	}

	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, mv := range rest[1:] {
			move, err := pos.ParseMove(mv)
			if err != nil {
				l.println(fmt.Sprintf("info string %v", err))
				return
			}
			unmake := pos.Make(move)
			_ = unmake // UCI never unwinds past a position command; keep the mutated board
		}
	}
	l.pos = pos
}

func (l *Loop) handleGo(fields []string) {
	l.waitForSearch() // a GUI is not expected to overlap "go" commands, but don't race if it does

	var wtime, btime, winc, binc int
	var infinite bool
	for i := 1; i < len(fields); i++ {
		switch strings.ToLower(fields[i]) {
		case "infinite":
			infinite = true
		case "wtime":
			i++
			wtime = atoiOr(fields, i, 0)
		case "btime":
			i++
			btime = atoiOr(fields, i, 0)
		case "winc":
			i++
			winc = atoiOr(fields, i, 0)
		case "binc":
			i++
			binc = atoiOr(fields, i, 0)
		}
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if !infinite && (wtime != 0 || btime != 0) {
		ourTime, ourInc := wtime, winc
		if l.pos.SideToMove() == position.Black {
			ourTime, ourInc = btime, binc
		}
		budget := l.TimeManager.Allocate(time.Duration(ourTime)*time.Millisecond, time.Duration(ourInc)*time.Millisecond)
		ctx, cancel = context.WithTimeout(ctx, budget)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	done := make(chan struct{})
	l.searchMu.Lock()
	l.cancelSearch = cancel
	l.searchDone = done
	l.searchMu.Unlock()

	pos := l.pos.Clone()
	go func() {
		defer close(done)
		defer cancel()
		move, score, err := l.Engine.BestMove(ctx, pos)
		if err != nil {
			l.Logger.Warn().Err(err).Msg("search did not find a move")
			l.println("bestmove 0000")
			return
		}
		l.println(fmt.Sprintf("info score cp %d", int32(score)))
		l.println(fmt.Sprintf("bestmove %s", position.MoveString(move)))
	}()
}

// stopSearch cancels any in-flight search's context. It does not block until
// the search goroutine has actually finished; use waitForSearch for that.
func (l *Loop) stopSearch() {
	l.searchMu.Lock()
	cancel := l.cancelSearch
	l.searchMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// waitForSearch blocks until any in-flight search goroutine has printed its
// bestmove and returned.
func (l *Loop) waitForSearch() {
	l.searchMu.Lock()
	done := l.searchDone
	l.searchMu.Unlock()
	if done != nil {
		<-done
	}
}

func atoiOr(fields []string, i, fallback int) int {
	if i < 0 || i >= len(fields) {
		return fallback
	}
	v, err := strconv.Atoi(fields[i])
	if err != nil {
		return fallback
	}
	return v
}
