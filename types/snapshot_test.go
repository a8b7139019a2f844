package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnits(t *testing.T) {
	t.Parallel()

	mustBig := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)

		return v
	}

	tests := []struct {
		name     string
		amount   *big.Int
		decimals int
		want     string
	}{
		{name: "nil", amount: nil, decimals: 18, want: "0"},
		{name: "zero", amount: big.NewInt(0), decimals: 18, want: "0"},
		{name: "one wei", amount: big.NewInt(1), decimals: 18, want: "0.000000000000000001"},
		{name: "whole amount", amount: mustBig("5000000000000000000"), decimals: 18, want: "5"},
		{name: "fraction trims zeros", amount: mustBig("1500000000000000000"), decimals: 18, want: "1.5"},
		{name: "sub one", amount: mustBig("10000000000000000"), decimals: 18, want: "0.01"},
		{name: "six decimals", amount: big.NewInt(1_234_567), decimals: 6, want: "1.234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, FormatUnits(tt.amount, tt.decimals))
		})
	}
}

func TestNewBalance(t *testing.T) {
	t.Parallel()

	token := common.HexToAddress("0x0000000000000000000000000000000000000001")
	balance := NewBalance(&token, big.NewInt(42))

	assert.Equal(t, "42", balance.Wei)
	assert.Equal(t, "0.000000000000000042", balance.Formatted)
	require.NotNil(t, balance.BaseToken)
	assert.Equal(t, token, *balance.BaseToken)
}

// Downstream consumers parse the persisted snapshot by field name, so the
// JSON layout is load-bearing.
func TestSnapshot_JSONLayout(t *testing.T) {
	t.Parallel()

	hub := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	chainID := uint64(270)
	block := uint64(12)

	snap := &Snapshot{
		GeneratedAtUnix: 1_700_000_000,
		Network:         NetworkLocal,
		Sequencers: map[Layer]*SequencerReport{
			LayerL1: {
				Status: EndpointOk,
				Sequencer: &Sequencer{
					Layer:       LayerL1,
					Label:       "L1",
					RPCURL:      "http://127.0.0.1:8545",
					Status:      EndpointOk,
					ChainID:     &chainID,
					LatestBlock: &block,
				},
			},
		},
		Bridgehub: &BridgeHubView{
			Address:          hub,
			RegisteredChains: []uint64{270},
			Chains:           map[uint64]*ChainContractBundle{270: {}},
		},
		L1Balances: map[uint64]*Balance{},
		Chains: map[uint64]*ChainReport{
			270: {
				PriorityTreeVerified: true,
				PriorityQueue:        &PriorityQueueStatus{ChainID: 270, Layer: LayerL1, Verified: true},
				PriorityTransactions: []PriorityTransaction{},
			},
		},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	wantKeys := []string{"generated_at_unix", "network", "sequencers", "bridgehub", "l1_balances", "chains"}
	for _, key := range wantKeys {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "gateway_bridgehub")

	hubSection, ok := decoded["bridgehub"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, hubSection, "address")
	assert.Contains(t, hubSection, "registered_chains")
	assert.Contains(t, hubSection, "chain_contracts")

	chainSection, ok := decoded["chains"].(map[string]any)
	require.True(t, ok)
	report, ok := chainSection["270"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, report, "priority_tree_verified")
	assert.Contains(t, report, "priority_queue")
	assert.Contains(t, report, "priority_transactions")

	// The snapshot round-trips without loss.
	var back Snapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	if diff := cmp.Diff(snap, &back); diff != "" {
		t.Errorf("snapshot changed across a JSON round-trip (-want +got):\n%s", diff)
	}
}

func TestSnapshot_ChainIDs(t *testing.T) {
	t.Parallel()

	snap := &Snapshot{Chains: map[uint64]*ChainReport{
		506: {}, 270: {}, 11: {},
	}}

	assert.Equal(t, []uint64{11, 270, 506}, snap.ChainIDs())
}

func TestChainStateTransition_BatchCountersConsistent(t *testing.T) {
	t.Parallel()

	u := func(n uint64) *uint64 { return &n }

	tests := []struct {
		name string
		st   ChainStateTransition
		want bool
	}{
		{name: "all absent", st: ChainStateTransition{}, want: true},
		{
			name: "ordered",
			st:   ChainStateTransition{BatchesCommitted: u(30), BatchesVerified: u(20), BatchesExecuted: u(10)},
			want: true,
		},
		{
			name: "equal counters",
			st:   ChainStateTransition{BatchesCommitted: u(5), BatchesVerified: u(5), BatchesExecuted: u(5)},
			want: true,
		},
		{
			name: "verified ahead of committed",
			st:   ChainStateTransition{BatchesCommitted: u(3), BatchesVerified: u(7)},
			want: false,
		},
		{
			name: "executed ahead of verified",
			st:   ChainStateTransition{BatchesVerified: u(2), BatchesExecuted: u(4)},
			want: false,
		},
		{
			name: "missing middle counter is skipped",
			st:   ChainStateTransition{BatchesCommitted: u(1), BatchesExecuted: u(9)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.st.BatchCountersConsistent())
		})
	}
}
