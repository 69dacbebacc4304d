package sui

import "strings"

// AddressHexLen is the number of hex characters after the 0x prefix of a full Sui address.
const AddressHexLen = 64

// IsAddress reports whether s is exactly "0x" followed by 64 hexadecimal characters.
// Short-form addresses ("0x2") are rejected.
func IsAddress(s string) bool {
	if len(s) != 2+AddressHexLen || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, ch := range s[2:] {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// ShortAddress renders 0x12345678...9abcdef0 for tables and logs.
func ShortAddress(s string) string {
	if len(s) <= 20 {
		return s
	}
	return s[:10] + "..." + s[len(s)-8:]
}

// CoinTypeName returns the trailing "::" segment of a fully-qualified coin type.
func CoinTypeName(coinType string) string {
	parts := strings.Split(coinType, "::")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return "Unknown"
	}
	return last
}

// SuiCoinType is the native gas coin. Transfers of it go through paySui.
const SuiCoinType = "0x2::sui::SUI"

// IsSuiCoin reports whether coinType is the native SUI coin, in short or long form.
func IsSuiCoin(coinType string) bool {
	if coinType == SuiCoinType {
		return true
	}
	return coinType == "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"
}
