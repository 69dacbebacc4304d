package sui

import (
	"errors"
	"fmt"
	"math/big"
)

// CommandKind enumerates the programmable transaction commands the airdrop needs.
type CommandKind string

const (
	CommandMergeCoins      CommandKind = "MergeCoins"
	CommandSplitCoins      CommandKind = "SplitCoins"
	CommandTransferObjects CommandKind = "TransferObjects"
)

// Command is one step of a Transaction.
//
//	MergeCoins:      Coin <- Sources...
//	SplitCoins:      Result = Coin.split(Amount)
//	TransferObjects: Result -> Recipient
type Command struct {
	Kind      CommandKind
	Coin      string
	Sources   []string
	Amount    *big.Int
	Result    int
	Recipient string
}

// Transaction is an unsigned, ordered list of coin commands drawn from one sender's coins of one type.
type Transaction struct {
	Sender   string
	CoinType string
	Commands []Command

	splits int
}

func NewTransaction(sender, coinType string) *Transaction {
	return &Transaction{Sender: sender, CoinType: coinType}
}

// MergeCoins folds sources into dst.
func (t *Transaction) MergeCoins(dst string, sources []string) {
	t.Commands = append(t.Commands, Command{
		Kind:    CommandMergeCoins,
		Coin:    dst,
		Sources: append([]string(nil), sources...),
	})
}

// SplitCoin splits amount off coin and returns a handle to the new fragment.
func (t *Transaction) SplitCoin(coin string, amount *big.Int) int {
	h := t.splits
	t.splits++
	t.Commands = append(t.Commands, Command{
		Kind:   CommandSplitCoins,
		Coin:   coin,
		Amount: new(big.Int).Set(amount),
		Result: h,
	})
	return h
}

// TransferObjects sends a split fragment to recipient.
func (t *Transaction) TransferObjects(result int, recipient string) {
	t.Commands = append(t.Commands, Command{
		Kind:      CommandTransferObjects,
		Result:    result,
		Recipient: recipient,
	})
}

// Empty reports whether the transaction moves nothing.
func (t *Transaction) Empty() bool {
	for _, c := range t.Commands {
		if c.Kind == CommandTransferObjects {
			return false
		}
	}
	return true
}

// InputCoins lists every coin object the transaction touches, in first-use order.
func (t *Transaction) InputCoins() []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, c := range t.Commands {
		switch c.Kind {
		case CommandMergeCoins:
			add(c.Coin)
			for _, s := range c.Sources {
				add(s)
			}
		case CommandSplitCoins:
			add(c.Coin)
		}
	}
	return out
}

// Payments flattens split+transfer pairs into parallel recipient/amount lists.
func (t *Transaction) Payments() ([]string, []*big.Int, error) {
	amounts := map[int]*big.Int{}
	for _, c := range t.Commands {
		if c.Kind == CommandSplitCoins {
			amounts[c.Result] = c.Amount
		}
	}
	var recipients []string
	var out []*big.Int
	used := map[int]bool{}
	for _, c := range t.Commands {
		if c.Kind != CommandTransferObjects {
			continue
		}
		amt, ok := amounts[c.Result]
		if !ok {
			return nil, nil, fmt.Errorf("transfer of unknown split result %d", c.Result)
		}
		if used[c.Result] {
			return nil, nil, fmt.Errorf("split result %d transferred twice", c.Result)
		}
		used[c.Result] = true
		recipients = append(recipients, c.Recipient)
		out = append(out, amt)
	}
	if len(recipients) == 0 {
		return nil, nil, errors.New("transaction has no transfers")
	}
	return recipients, out, nil
}

// Total returns the sum of all split amounts.
func (t *Transaction) Total() *big.Int {
	sum := new(big.Int)
	for _, c := range t.Commands {
		if c.Kind == CommandSplitCoins {
			sum.Add(sum, c.Amount)
		}
	}
	return sum
}
