package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/ligun0805/sui-airdrop/internal/sui"
)

// Coin selection strategies, see internal/airdrop.
const (
	StrategyMerge    = "merge"
	StrategyFirstFit = "first-fit"
)

// Settings keeps all configuration options.
// Keys are read in UPPER_CASE first, then lower_case.
type Settings struct {
	Network    string `env:"SUI_NETWORK,default=mainnet"`
	RPCURL     string `env:"SUI_RPC_URL"`
	PrivateKey string `env:"SUI_PRIVATE_KEY"`
	GasBudget  uint64 `env:"SUI_GAS_BUDGET,default=50000000"`

	BatchSize        int           `env:"AIRDROP_BATCH_SIZE,default=10"`
	BatchInterval    time.Duration `env:"AIRDROP_BATCH_INTERVAL,default=1s"`
	MaxBatchInterval time.Duration `env:"AIRDROP_MAX_BATCH_INTERVAL,default=30s"`
	CoinStrategy     string        `env:"AIRDROP_COIN_STRATEGY,default=merge"`
	CoinPageSize     int           `env:"AIRDROP_COIN_PAGE_SIZE,default=50"`
	CoinMaxPages     int           `env:"AIRDROP_COIN_MAX_PAGES,default=20"`

	RPCTimeout  time.Duration `env:"RPC_TIMEOUT,default=25s"`
	RPCReadRate float64       `env:"RPC_READ_RATE,default=8"`

	Development bool   `env:"DEVELOPMENT,default=false"`
	SentryDSN   string `env:"SENTRY_DSN"`
}

type dualCaseLookuper struct {
	next envconfig.Lookuper
}

func (l dualCaseLookuper) Lookup(key string) (string, bool) {
	if v, ok := l.next.Lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := l.next.Lookup(strings.ToLower(key)); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return "", false
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context, envpath string) (*Settings, error) {
	if envpath != "" {
		if err := godotenv.Load(envpath); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envpath, err)
		}
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom resolves settings from an arbitrary lookuper and fills derived defaults.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Settings, error) {
	st := &Settings{}
	if err := envconfig.ProcessWith(ctx, st, dualCaseLookuper{next: l}); err != nil {
		return nil, err
	}
	st.CoinStrategy = strings.ToLower(st.CoinStrategy)
	if st.RPCURL == "" {
		n, err := sui.ParseNetwork(st.Network)
		if err != nil {
			return nil, err
		}
		st.RPCURL = n.FullnodeURL()
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// SuiNetwork returns the parsed network.
func (s *Settings) SuiNetwork() sui.Network {
	n, err := sui.ParseNetwork(s.Network)
	if err != nil {
		return sui.Mainnet
	}
	return n
}

func (s *Settings) Validate() error {
	var errs []error
	if _, err := sui.ParseNetwork(s.Network); err != nil {
		errs = append(errs, err)
	}
	if s.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("AIRDROP_BATCH_SIZE must be positive, got %d", s.BatchSize))
	}
	if s.GasBudget == 0 {
		errs = append(errs, errors.New("SUI_GAS_BUDGET must be positive"))
	}
	if s.BatchInterval < 0 || s.MaxBatchInterval < s.BatchInterval {
		errs = append(errs, fmt.Errorf("batch interval %s must be within [0, %s]", s.BatchInterval, s.MaxBatchInterval))
	}
	switch s.CoinStrategy {
	case StrategyMerge, StrategyFirstFit:
	default:
		errs = append(errs, fmt.Errorf("unknown coin strategy %q", s.CoinStrategy))
	}
	if s.CoinPageSize <= 0 || s.CoinMaxPages <= 0 {
		errs = append(errs, errors.New("coin page size and max pages must be positive"))
	}
	return errors.Join(errs...)
}

// Print dumps the effective settings, secrets masked.
func (s *Settings) Print(w io.Writer) {
	fmt.Fprintf(w, "network:        %s\n", s.Network)
	fmt.Fprintf(w, "rpc:            %s\n", s.RPCURL)
	fmt.Fprintf(w, "private key:    %s\n", MaskSecret(s.PrivateKey))
	fmt.Fprintf(w, "gas budget:     %d MIST\n", s.GasBudget)
	fmt.Fprintf(w, "batch size:     %d\n", s.BatchSize)
	fmt.Fprintf(w, "batch interval: %s (max %s)\n", s.BatchInterval, s.MaxBatchInterval)
	fmt.Fprintf(w, "coin strategy:  %s\n", s.CoinStrategy)
}

// MaskSecret keeps the first and last 4 characters.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
