package evm

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticchain/scout/types"
)

// packPriorityRequest ABI-encodes a NewPriorityRequest event body the way a
// mailbox contract emits it.
func packPriorityRequest(t *testing.T, txID uint64, txHash common.Hash, expiration uint64, from, to common.Address, calldata []byte) []byte {
	t.Helper()

	tx := l2CanonicalTransaction{
		TxType:                 big.NewInt(255),
		From:                   new(big.Int).SetBytes(from.Bytes()),
		To:                     new(big.Int).SetBytes(to.Bytes()),
		GasLimit:               big.NewInt(72_000_000),
		GasPerPubdataByteLimit: big.NewInt(800),
		MaxFeePerGas:           big.NewInt(1),
		MaxPriorityFeePerGas:   big.NewInt(0),
		Paymaster:              big.NewInt(0),
		Nonce:                  new(big.Int).SetUint64(txID),
		Value:                  big.NewInt(42),
		Reserved:               [4]*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)},
		Data:                   calldata,
		Signature:              []byte{},
		FactoryDeps:            []*big.Int{},
		PaymasterInput:         []byte{},
		ReservedDynamic:        []byte{},
	}

	data, err := mailboxABI.Events["NewPriorityRequest"].Inputs.Pack(
		new(big.Int).SetUint64(txID), [32]byte(txHash), expiration, tx, [][]byte{})
	require.NoError(t, err)

	return data
}

func TestDecodePriorityTransaction(t *testing.T) {
	t.Parallel()

	sender := common.HexToAddress("0x1111111111111111111111111111111111111111")
	target := common.HexToAddress("0x2222222222222222222222222222222222222222")
	txHash := crypto.Keccak256Hash([]byte("priority-tx-7"))
	calldata := common.FromHex("0xa9059cbb000000000000000000000000")

	tests := []struct {
		name         string
		data         []byte
		want         types.PriorityTransaction
		wantErr      bool
		wantSelector string
	}{
		{
			name:         "full record",
			data:         packPriorityRequest(t, 7, txHash, 1_700_000_000, sender, target, calldata),
			wantSelector: "0xa9059cbb",
			want: types.PriorityTransaction{
				SequenceIndex:       7,
				Hash:                txHash,
				Sender:              sender,
				Target:              target,
				GasLimit:            big.NewInt(72_000_000),
				GasPerPubdataLimit:  big.NewInt(800),
				Value:               big.NewInt(42),
				MethodSelector:      "0xa9059cbb",
				ExpirationTimestamp: 1_700_000_000,
			},
		},
		{
			name:         "empty calldata yields unknown selector",
			data:         packPriorityRequest(t, 0, txHash, 0, sender, target, nil),
			wantSelector: types.SelectorUnknown,
			want: types.PriorityTransaction{
				SequenceIndex:      0,
				Hash:               txHash,
				Sender:             sender,
				Target:             target,
				GasLimit:           big.NewInt(72_000_000),
				GasPerPubdataLimit: big.NewInt(800),
				Value:              big.NewInt(42),
				MethodSelector:     types.SelectorUnknown,
			},
		},
		{
			name:    "truncated data fails",
			data:    []byte{0x01, 0x02, 0x03},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodePriorityTransaction(ethtypes.Log{Data: tt.data})
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMethodSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		calldata []byte
		want     string
	}{
		{name: "nil calldata", calldata: nil, want: types.SelectorUnknown},
		{name: "three bytes", calldata: []byte{0xa9, 0x05, 0x9c}, want: types.SelectorUnknown},
		{name: "exactly four bytes", calldata: []byte{0xa9, 0x05, 0x9c, 0xbb}, want: "0xa9059cbb"},
		{name: "selector plus args", calldata: common.FromHex("0x095ea7b3ff"), want: "0x095ea7b3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, methodSelector(tt.calldata))
		})
	}
}

func TestPeekSequenceIndex(t *testing.T) {
	t.Parallel()

	t.Run("reads the first data word", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 40)
		data[31] = 0x2a
		index, ok := peekSequenceIndex(ethtypes.Log{Data: data})
		require.True(t, ok)
		assert.Equal(t, uint64(42), index)
	})

	t.Run("short data is unreadable", func(t *testing.T) {
		t.Parallel()

		_, ok := peekSequenceIndex(ethtypes.Log{Data: make([]byte, 16)})
		assert.False(t, ok)
	})

	t.Run("oversized word is unreadable", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 32)
		data[0] = 0xff
		_, ok := peekSequenceIndex(ethtypes.Log{Data: data})
		assert.False(t, ok)
	})
}

func TestWordToAddress(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	assert.Equal(t, addr, wordToAddress(new(big.Int).SetBytes(addr.Bytes())))
	assert.Equal(t, common.Address{}, wordToAddress(nil))
}
