// Package wallet models wallet connection as an explicit capability passed to the airdrop code.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

var (
	ErrRejected     = errors.New("user rejected the transaction")
	ErrNotConnected = errors.New("wallet not connected")
	ErrUnknown      = errors.New("unknown wallet")
)

type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Account is a connected address.
type Account struct {
	Address string
	Label   string
}

// Info describes a wallet the user may pick.
type Info struct {
	Name      string
	Installed bool
}

// Wallet is one signing backend.
type Wallet interface {
	Name() string
	Installed() bool
	Connect(ctx context.Context) (Account, error)
	Disconnect() error
	SignAndSubmit(ctx context.Context, acct Account, tx *sui.Transaction) (*sui.Submission, error)
}

// Connector is what the front-ends and the orchestrator see.
type Connector interface {
	Status() Status
	Account() (Account, bool)
	Wallets() []Info
	Select(ctx context.Context, name string) error
	Disconnect() error
	SignAndSubmit(ctx context.Context, tx *sui.Transaction) (*sui.Submission, error)
	OnStatusChange(fn func(Status)) (cancel func())
}

// Manager implements Connector over a fixed set of wallets.
type Manager struct {
	mu        sync.Mutex
	wallets   []Wallet
	active    Wallet
	account   Account
	status    Status
	observers map[int]func(Status)
	nextObs   int
	log       *logger.Logger
}

var _ Connector = (*Manager)(nil)

func NewManager(l *logger.Logger, wallets ...Wallet) *Manager {
	return &Manager{
		wallets:   wallets,
		status:    StatusDisconnected,
		observers: map[int]func(Status){},
		log:       logger.OrNop(l),
	}
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) Account() (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.account, m.status == StatusConnected
}

func (m *Manager) Wallets() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Info, len(m.wallets))
	for i, w := range m.wallets {
		out[i] = Info{Name: w.Name(), Installed: w.Installed()}
	}
	return out
}

// Select connects the named wallet, dropping any current connection first.
func (m *Manager) Select(ctx context.Context, name string) error {
	var w Wallet
	m.mu.Lock()
	for _, cand := range m.wallets {
		if cand.Name() == name {
			w = cand
			break
		}
	}
	prev := m.active
	m.mu.Unlock()

	if w == nil {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	if !w.Installed() {
		return fmt.Errorf("wallet %s is not available", name)
	}
	if prev != nil {
		_ = prev.Disconnect()
	}

	m.setStatus(StatusConnecting, nil, Account{})
	acct, err := w.Connect(ctx)
	if err != nil {
		m.setStatus(StatusDisconnected, nil, Account{})
		return fmt.Errorf("connect %s: %w", name, err)
	}
	m.setStatus(StatusConnected, w, acct)
	m.log.Infow("wallet connected", "wallet", name, "address", acct.Address)
	return nil
}

func (m *Manager) Disconnect() error {
	m.mu.Lock()
	w := m.active
	m.mu.Unlock()
	if w == nil {
		return nil
	}
	err := w.Disconnect()
	m.setStatus(StatusDisconnected, nil, Account{})
	m.log.Infow("wallet disconnected", "wallet", w.Name())
	return err
}

// SignAndSubmit hands tx to the connected wallet. The sender defaults to the connected account.
func (m *Manager) SignAndSubmit(ctx context.Context, tx *sui.Transaction) (*sui.Submission, error) {
	m.mu.Lock()
	w, acct, st := m.active, m.account, m.status
	m.mu.Unlock()
	if w == nil || st != StatusConnected {
		return nil, ErrNotConnected
	}
	if tx.Sender == "" {
		tx.Sender = acct.Address
	}
	if tx.Sender != acct.Address {
		return nil, fmt.Errorf("transaction sender %s is not the connected account %s", tx.Sender, acct.Address)
	}
	return w.SignAndSubmit(ctx, acct, tx)
}

// OnStatusChange registers fn for status transitions. Callbacks run outside the lock.
func (m *Manager) OnStatusChange(fn func(Status)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

func (m *Manager) setStatus(s Status, w Wallet, acct Account) {
	m.mu.Lock()
	changed := m.status != s
	m.status, m.active, m.account = s, w, acct
	fns := make([]func(Status), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	if !changed {
		return
	}
	for _, fn := range fns {
		fn(s)
	}
}
