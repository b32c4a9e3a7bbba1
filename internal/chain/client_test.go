package chain

import (
	"math/big"
	"testing"
)

func TestFromWei(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"0", "0"},
		{"1", "0.000000000000000001"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"123456789012345678901234567890", "123456789012.34567890123456789"},
	}

	for _, tt := range tests {
		n, ok := new(big.Int).SetString(tt.raw, 10)
		if !ok {
			t.Fatalf("bad test input %q", tt.raw)
		}
		if got := FromWei(n).String(); got != tt.want {
			t.Errorf("FromWei(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestTransferTopic(t *testing.T) {
	// keccak256("Transfer(address,address,uint256)")
	want := "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
	if TransferTopic.Hex() != want {
		t.Errorf("TransferTopic = %s, want %s", TransferTopic.Hex(), want)
	}
}
