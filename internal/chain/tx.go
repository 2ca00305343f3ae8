package chain

import (
	"github.com/ethereum/go-ethereum/common"
)

// Explorer entries are pinned to Arbitrum Sepolia, where the BlockFunders
// contracts are deployed.
const explorerTxURL = "https://sepolia.arbiscan.io/tx/"

// ValidTxHash reports whether s parses as a 32-byte hex transaction hash
// (with or without the 0x prefix).
func ValidTxHash(s string) bool {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s) != 2*common.HashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

// Normalize returns the canonical 0x-prefixed lowercase form of a hash.
// Call only after ValidTxHash; the ledger's uniqueness guard depends on
// every hash being stored in this one form.
func Normalize(s string) string {
	return common.HexToHash(s).Hex()
}

// ExplorerLink formats the block-explorer URL for a transaction hash.
func ExplorerLink(txHash string) string {
	return explorerTxURL + Normalize(txHash)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
