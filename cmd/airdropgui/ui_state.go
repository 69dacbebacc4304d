package main

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ligun0805/sui-airdrop/internal/airdrop"
	"github.com/ligun0805/sui-airdrop/internal/config"
	"github.com/ligun0805/sui-airdrop/internal/recipients"
	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/internal/wallet"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// runState is the airdrop in flight, if any, and the report of the last one.
// The run goroutine and the UI thread both touch it.
type runState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	report *airdrop.Report
}

// start returns the context of a new run, or false when one is already going.
func (s *runState) start(parent context.Context) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ctx, true
}

// finish records the report and releases the run's context.
func (s *runState) finish(rep *airdrop.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.report = rep
}

// stop cancels the running airdrop. It reports whether one was running.
func (s *runState) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

func (s *runState) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *runState) last() *airdrop.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Shared UI state. Everything here is touched from button handlers and the run goroutine.
var (
	current runState

	logWin     fyne.Window
	logBox     *widget.Entry
	logProg    *widget.ProgressBar
	logProgLbl *widget.Label
	logScroll  *container.Scroll

	cfg      *config.Settings
	lg       *logger.Logger
	client   *sui.Client
	manager  *wallet.Manager
	resolver *tokens.Resolver

	holdingList []*tokens.Holding
	selected    *tokens.Holding

	parsed *recipients.Result

	outcomes     []airdrop.Outcome
	resultsTable *widget.Table

	autoApprove *widget.Check

	// set by the cards so the others can poke them
	refreshTokens  func()
	refreshExecute func()
)
