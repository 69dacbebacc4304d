// Package airdrop runs a recipient list against one token as a sequence of batch transfers.
package airdrop

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ligun0805/sui-airdrop/internal/pacer"
	"github.com/ligun0805/sui-airdrop/internal/recipients"
	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/internal/tokens"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// DefaultBatchSize is the number of recipients per transaction.
const DefaultBatchSize = 10

var (
	ErrInsufficientBalance = errors.New("Insufficient token balance for airdrop")
	ErrNoCoins             = errors.New("No coins found for the selected token")
	ErrNoRecipients        = errors.New("no recipients to airdrop to")
)

// Per-recipient failure messages.
const (
	MsgSingleCoin    = "Insufficient single coin balance (would need coin merging)"
	MsgPoolExhausted = "Insufficient single coin balance (remaining coins cannot cover this amount)"
	MsgBelowSmallest = "amount is below the token's smallest unit"
)

// Strategy selects which coin objects pay a recipient.
type Strategy string

const (
	// StrategyFirstFit uses the first coin that covers the amount alone.
	StrategyFirstFit Strategy = "first-fit"
	// StrategyMerge tries first-fit, then merges the largest coins into one.
	StrategyMerge Strategy = "merge"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyMerge, nil
	case StrategyFirstFit, StrategyMerge:
		return st, nil
	default:
		return "", fmt.Errorf("unknown coin strategy %q", s)
	}
}

// State of one run.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateAborted    State = "aborted"
	StateExecuting  State = "executing"
	StateCompleted  State = "completed"
)

// Progress identifies the batch about to be submitted.
type Progress struct {
	Batch   int
	Batches int
}

func (p Progress) String() string {
	return fmt.Sprintf("Processing batch %d of %d", p.Batch, p.Batches)
}

// Submitter signs and submits a transaction. wallet.Connector satisfies it.
type Submitter interface {
	SignAndSubmit(ctx context.Context, tx *sui.Transaction) (*sui.Submission, error)
}

// Outcome is the result for one recipient.
type Outcome struct {
	Recipient recipients.Recipient
	// Amount in smallest units; nil when the amount could not be scaled.
	Amount    *big.Int
	Succeeded bool
	Digest    string
	Explorer  string
	Error     string
	Batch     int
}

// Request is one run's input.
type Request struct {
	Sender     string
	Token      tokens.Descriptor
	Coins      []sui.Coin
	Recipients []recipients.Recipient
}

// Report is the execution report of one run.
type Report struct {
	State     State
	Token     tokens.Descriptor
	Sender    string
	Network   sui.Network
	Strategy  Strategy
	Outcomes  []Outcome
	Batches   int
	Required  *big.Int
	Available *big.Int
	Err       error
	Started   time.Time
	Finished  time.Time
}

func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Digests lists distinct transaction digests in submission order.
func (r *Report) Digests() []string {
	seen := map[string]bool{}
	var out []string
	for _, o := range r.Outcomes {
		if o.Digest != "" && !seen[o.Digest] {
			seen[o.Digest] = true
			out = append(out, o.Digest)
		}
	}
	return out
}

// Options tune an Orchestrator. Zero values pick defaults.
type Options struct {
	BatchSize int
	Strategy  Strategy
	Pacer     pacer.Pacer
	Network   sui.Network
	Logger    *logger.Logger

	OnState    func(State)
	OnProgress func(Progress)
	OnOutcome  func(Outcome)
}

// Orchestrator executes airdrops. Batches run strictly one after another.
type Orchestrator struct {
	submitter Submitter
	opts      Options
	log       *logger.Logger
}

func New(submitter Submitter, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyMerge
	}
	if opts.Pacer == nil {
		opts.Pacer = pacer.NewAdaptive(time.Second, 30*time.Second, opts.Logger)
	}
	if opts.Network == "" {
		opts.Network = sui.Mainnet
	}
	return &Orchestrator{submitter: submitter, opts: opts, log: logger.OrNop(opts.Logger)}
}

// run holds the mutable state of one Execute call.
type run struct {
	o        *Orchestrator
	report   *Report
	resolved []bool
	amounts  []*big.Int
}

func (r *run) setState(s State) {
	r.report.State = s
	if r.o.opts.OnState != nil {
		r.o.opts.OnState(s)
	}
}

func (r *run) resolve(i int, out Outcome) {
	if r.resolved[i] {
		return
	}
	r.resolved[i] = true
	r.report.Outcomes[i] = out
	if r.o.opts.OnOutcome != nil {
		r.o.opts.OnOutcome(out)
	}
}

func (r *run) fail(i, batch int, msg string) {
	r.resolve(i, Outcome{
		Recipient: r.report.Outcomes[i].Recipient,
		Amount:    r.amounts[i],
		Error:     msg,
		Batch:     batch,
	})
}

// failRest marks every unresolved recipient failed with err.
func (r *run) failRest(err error) {
	for i := range r.resolved {
		r.fail(i, 0, err.Error())
	}
}

// Execute runs req. The returned Report always carries one Outcome per recipient, in input order.
// A non-nil error means the run was aborted or cut short; per-batch failures are only in the Report.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Report, error) {
	n := len(req.Recipients)
	r := &run{
		o: o,
		report: &Report{
			State:    StateIdle,
			Token:    req.Token,
			Sender:   req.Sender,
			Network:  o.opts.Network,
			Strategy: o.opts.Strategy,
			Outcomes: make([]Outcome, n),
			Started:  time.Now(),
		},
		resolved: make([]bool, n),
		amounts:  make([]*big.Int, n),
	}
	for i, rc := range req.Recipients {
		r.report.Outcomes[i].Recipient = rc
	}
	defer func() { r.report.Finished = time.Now() }()
	log := o.log.With("token", req.Token.Symbol, "recipients", n)

	r.setState(StateValidating)
	if err := o.validate(r, req); err != nil {
		r.failRest(err)
		r.report.Err = err
		r.setState(StateAborted)
		log.Warnw("airdrop aborted", "err", err)
		return r.report, err
	}

	r.setState(StateExecuting)
	err := o.execute(ctx, r, req, log)
	if err != nil {
		r.failRest(err)
		r.report.Err = err
	}
	r.setState(StateCompleted)
	log.Infow("airdrop finished", "succeeded", r.report.Succeeded(), "failed", r.report.Failed(), "err", err)
	return r.report, err
}

func (o *Orchestrator) validate(r *run, req Request) error {
	if o.submitter == nil {
		return errors.New("no wallet to sign with")
	}
	if len(req.Recipients) == 0 {
		return ErrNoRecipients
	}
	if len(req.Coins) == 0 {
		return ErrNoCoins
	}
	required := new(big.Int)
	for i, rc := range req.Recipients {
		amt, err := ScaleAmount(rc.Amount, req.Token.Decimals)
		if err != nil {
			return fmt.Errorf("row %d: %w", rc.Row, err)
		}
		r.amounts[i] = amt
		required.Add(required, amt)
	}
	available := newCoinPool(req.Coins).total()
	r.report.Required, r.report.Available = required, available
	if required.Cmp(available) > 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run, req Request, log *logger.Logger) error {
	pool := newCoinPool(req.Coins)
	batches := Partition(len(req.Recipients), o.opts.BatchSize)
	r.report.Batches = len(batches)

	for i, amt := range r.amounts {
		if amt.Sign() == 0 {
			r.fail(i, 0, MsgBelowSmallest)
		}
	}

	for k, b := range batches {
		if err := o.opts.Pacer.Wait(ctx); err != nil {
			return err
		}
		p := Progress{Batch: k + 1, Batches: len(batches)}
		if o.opts.OnProgress != nil {
			o.opts.OnProgress(p)
		}
		log.Infow(p.String())

		snap := pool.snapshot()
		tx := sui.NewTransaction(req.Sender, req.Token.Type)
		var included []int
		for i := b[0]; i < b[1]; i++ {
			if r.resolved[i] {
				continue
			}
			d, ok := pool.take(r.amounts[i], o.opts.Strategy)
			if !ok {
				msg := MsgSingleCoin
				if o.opts.Strategy == StrategyMerge {
					msg = MsgPoolExhausted
				}
				r.fail(i, p.Batch, msg)
				continue
			}
			if len(d.merged) > 0 {
				tx.MergeCoins(d.coin, d.merged)
			}
			h := tx.SplitCoin(d.coin, r.amounts[i])
			tx.TransferObjects(h, req.Recipients[i].Address)
			included = append(included, i)
		}
		if len(included) == 0 {
			continue
		}

		sub, err := o.submitter.SignAndSubmit(ctx, tx)
		o.opts.Pacer.Observe(err)
		if err != nil {
			pool.restore(snap)
			log.Warnw("batch failed", "batch", p.Batch, "class", sui.ClassifyError(err), "err", err)
			for _, i := range included {
				r.fail(i, p.Batch, err.Error())
			}
			continue
		}
		pool.settle(tx.InputCoins())
		link := sui.ExplorerTxURL(sub.Digest, o.opts.Network)
		log.Infow("batch submitted", "batch", p.Batch, "digest", sub.Digest, "transfers", len(included))
		for _, i := range included {
			r.resolve(i, Outcome{
				Recipient: req.Recipients[i],
				Amount:    r.amounts[i],
				Succeeded: true,
				Digest:    sub.Digest,
				Explorer:  link,
				Batch:     p.Batch,
			})
		}
	}
	return nil
}
