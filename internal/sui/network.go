package sui

import (
	"fmt"
	"net/url"
	"strings"
)

// Network names a Sui deployment.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet  Network = "testnet"
	Devnet   Network = "devnet"
	Localnet Network = "localnet"
)

// ParseNetwork accepts the network names understood by fullnodes and the explorer.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case Mainnet, Testnet, Devnet, Localnet:
		return n, nil
	case "":
		return Mainnet, nil
	default:
		return "", fmt.Errorf("unknown sui network %q (want mainnet, testnet, devnet or localnet)", s)
	}
}

// FullnodeURL returns the public JSON-RPC endpoint of the network.
func (n Network) FullnodeURL() string {
	switch n {
	case Testnet:
		return "https://fullnode.testnet.sui.io:443"
	case Devnet:
		return "https://fullnode.devnet.sui.io:443"
	case Localnet:
		return "http://127.0.0.1:9000"
	default:
		return "https://fullnode.mainnet.sui.io:443"
	}
}

// ExplorerTxURL links a transaction digest to the public block explorer. Display only.
func ExplorerTxURL(digest string, n Network) string {
	if strings.TrimSpace(digest) == "" {
		return ""
	}
	if n == "" {
		n = Mainnet
	}
	return fmt.Sprintf("https://suiexplorer.com/txblock/%s?network=%s", url.PathEscape(digest), url.QueryEscape(string(n)))
}
