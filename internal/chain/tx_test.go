package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleHash = "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd"

func TestValidTxHash(t *testing.T) {
	tests := []struct {
		name  string
		hash  string
		valid bool
	}{
		{"with 0x prefix", sampleHash, true},
		{"without prefix", sampleHash[2:], true},
		{"uppercase hex", "0x4E3A3754410177E6937EF1F84BBA68EA139E8D1A2258C5F85DB9F1CD715A1BDD", true},
		{"too short", "0x4e3a37", false},
		{"too long", sampleHash + "ab", false},
		{"non-hex characters", "0xzz3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd", false},
		{"empty", "", false},
		{"prefix only", "0x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidTxHash(tt.hash))
		})
	}
}

func TestNormalize(t *testing.T) {
	upper := "0x4E3A3754410177E6937EF1F84BBA68EA139E8D1A2258C5F85DB9F1CD715A1BDD"
	assert.Equal(t, sampleHash, Normalize(upper))
	assert.Equal(t, sampleHash, Normalize(sampleHash[2:]))
}

func TestExplorerLink(t *testing.T) {
	assert.Equal(t, "https://sepolia.arbiscan.io/tx/"+sampleHash, ExplorerLink(sampleHash))
}
