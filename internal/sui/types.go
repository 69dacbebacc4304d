package sui

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Coin is one on-chain coin object of a given coin type.
type Coin struct {
	CoinType            string
	ObjectID            string
	Owner               string
	Version             string
	Digest              string
	Balance             *big.Int
	PreviousTransaction string
}

// rpcCoin is the suix_getCoins wire shape; balances travel as decimal strings.
type rpcCoin struct {
	CoinType            string `json:"coinType"`
	CoinObjectID        string `json:"coinObjectId"`
	Version             string `json:"version"`
	Digest              string `json:"digest"`
	Balance             string `json:"balance"`
	PreviousTransaction string `json:"previousTransaction"`
}

func (c rpcCoin) toCoin(owner string) (Coin, error) {
	bal, ok := new(big.Int).SetString(c.Balance, 10)
	if !ok || bal.Sign() < 0 {
		return Coin{}, fmt.Errorf("coin %s: bad balance %q", c.CoinObjectID, c.Balance)
	}
	return Coin{
		CoinType:            c.CoinType,
		ObjectID:            c.CoinObjectID,
		Owner:               owner,
		Version:             c.Version,
		Digest:              c.Digest,
		Balance:             bal,
		PreviousTransaction: c.PreviousTransaction,
	}, nil
}

// CoinPage is one page of coins owned by an address.
type CoinPage struct {
	Data        []Coin
	NextCursor  *string
	HasNextPage bool
}

type rpcCoinPage struct {
	Data        []rpcCoin `json:"data"`
	NextCursor  *string   `json:"nextCursor"`
	HasNextPage bool      `json:"hasNextPage"`
}

// CoinMetadata mirrors suix_getCoinMetadata.
type CoinMetadata struct {
	Decimals    int     `json:"decimals"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl"`
	ID          *string `json:"id"`
}

// TransactionBytes is what the node's unsafe_* builders return: BCS TransactionData, base64.
type TransactionBytes struct {
	TxBytes      string            `json:"txBytes"`
	Gas          []json.RawMessage `json:"gas"`
	InputObjects []json.RawMessage `json:"inputObjects"`
}

// Submission is the result of a signed and executed transaction.
type Submission struct {
	Digest string
}

type executionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type rpcExecuteResponse struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status executionStatus `json:"status"`
	} `json:"effects,omitempty"`
}
