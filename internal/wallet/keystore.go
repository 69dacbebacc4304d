package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/ligun0805/sui-airdrop/internal/sui"
	"github.com/ligun0805/sui-airdrop/pkg/logger"
)

// DefaultGasBudget in MIST.
const DefaultGasBudget uint64 = 50_000_000

// Node is the part of a Sui fullnode the keystore wallet needs.
type Node interface {
	Pay(ctx context.Context, signer string, inputCoins, recipients []string, amounts []*big.Int, gasBudget uint64) (*sui.TransactionBytes, error)
	PaySui(ctx context.Context, signer string, inputCoins, recipients []string, amounts []*big.Int, gasBudget uint64) (*sui.TransactionBytes, error)
	ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*sui.Submission, error)
}

// ApprovalRequest is what the user is asked to confirm before a transaction is signed.
type ApprovalRequest struct {
	Wallet     string
	Sender     string
	CoinType   string
	Recipients int
	Total      *big.Int
	InputCoins int
	GasBudget  uint64
}

// Approver decides whether to sign. Returning false rejects the transaction.
type Approver func(ctx context.Context, req ApprovalRequest) (bool, error)

// AutoApprove signs everything. Used for --yes.
func AutoApprove(context.Context, ApprovalRequest) (bool, error) { return true, nil }

// KeySource produces the signing key on connect.
type KeySource func(ctx context.Context) (*sui.Keypair, error)

// StaticKey wraps an already parsed key.
func StaticKey(kp *sui.Keypair) KeySource {
	return func(context.Context) (*sui.Keypair, error) { return kp, nil }
}

// Keystore is a local Ed25519 wallet that builds transactions through the node's pay endpoints.
type Keystore struct {
	name      string
	keys      KeySource
	node      Node
	approve   Approver
	gasBudget uint64
	log       *logger.Logger

	mu sync.Mutex
	kp *sui.Keypair
}

var _ Wallet = (*Keystore)(nil)

type KeystoreOptions struct {
	Approver  Approver
	GasBudget uint64
	Logger    *logger.Logger
}

func NewKeystore(name string, keys KeySource, node Node, opts KeystoreOptions) *Keystore {
	if opts.GasBudget == 0 {
		opts.GasBudget = DefaultGasBudget
	}
	return &Keystore{
		name:      name,
		keys:      keys,
		node:      node,
		approve:   opts.Approver,
		gasBudget: opts.GasBudget,
		log:       logger.OrNop(opts.Logger),
	}
}

func (k *Keystore) Name() string    { return k.name }
func (k *Keystore) Installed() bool { return k.keys != nil && k.node != nil }

func (k *Keystore) Connect(ctx context.Context) (Account, error) {
	kp, err := k.keys(ctx)
	if err != nil {
		return Account{}, err
	}
	if kp == nil {
		return Account{}, fmt.Errorf("no key for wallet %s", k.name)
	}
	k.mu.Lock()
	k.kp = kp
	k.mu.Unlock()
	return Account{Address: kp.Address(), Label: k.name}, nil
}

func (k *Keystore) Disconnect() error {
	k.mu.Lock()
	k.kp = nil
	k.mu.Unlock()
	return nil
}

func (k *Keystore) SignAndSubmit(ctx context.Context, acct Account, tx *sui.Transaction) (*sui.Submission, error) {
	k.mu.Lock()
	kp := k.kp
	k.mu.Unlock()
	if kp == nil || kp.Address() != acct.Address {
		return nil, ErrNotConnected
	}

	recipients, amounts, err := tx.Payments()
	if err != nil {
		return nil, err
	}
	inputs := tx.InputCoins()
	if k.approve != nil {
		ok, err := k.approve(ctx, ApprovalRequest{
			Wallet:     k.name,
			Sender:     acct.Address,
			CoinType:   tx.CoinType,
			Recipients: len(recipients),
			Total:      tx.Total(),
			InputCoins: len(inputs),
			GasBudget:  k.gasBudget,
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRejected
		}
	}

	var built *sui.TransactionBytes
	if sui.IsSuiCoin(tx.CoinType) {
		built, err = k.node.PaySui(ctx, acct.Address, inputs, recipients, amounts, k.gasBudget)
	} else {
		built, err = k.node.Pay(ctx, acct.Address, inputs, recipients, amounts, k.gasBudget)
	}
	if err != nil {
		return nil, err
	}
	sig, err := kp.SignTransaction(built.TxBytes)
	if err != nil {
		return nil, err
	}
	sub, err := k.node.ExecuteTransactionBlock(ctx, built.TxBytes, []string{sig})
	if err != nil {
		return nil, err
	}
	k.log.Debugw("transaction executed", "wallet", k.name, "digest", sub.Digest, "transfers", len(recipients))
	return sub, nil
}

// DefaultKeystorePath is where the Sui CLI keeps its keys.
func DefaultKeystorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sui", "sui_config", "sui.keystore")
}

// LoadKeystoreFile reads a Sui CLI keystore: a JSON array of base64 flag||seed entries.
// Entries with other signature schemes are skipped.
func LoadKeystoreFile(path string) ([]*sui.Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse keystore %s: %w", path, err)
	}
	var out []*sui.Keypair
	for _, e := range entries {
		kp, err := sui.ParseKeypair(e)
		if err != nil {
			continue
		}
		out = append(out, kp)
	}
	return out, nil
}
