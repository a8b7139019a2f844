package scout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elasticchain/scout/types"
)

func TestRenderReport(t *testing.T) {
	color.NoColor = true

	u := func(n uint64) *uint64 { return &n }
	hub := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	bridge := common.HexToAddress("0x0000000000000000000000000000000000010003")
	token := common.HexToAddress("0x0000000000000000000000000000000000000001")

	snap := &types.Snapshot{
		GeneratedAtUnix: 1_700_000_000,
		Network:         types.NetworkLocal,
		Sequencers: map[types.Layer]*types.SequencerReport{
			types.LayerL1: {
				Status: types.EndpointOk,
				Sequencer: &types.Sequencer{
					Layer: types.LayerL1, Label: "L1", RPCURL: "http://127.0.0.1:8545",
					Status: types.EndpointOk, ChainID: u(9), LatestBlock: u(100),
				},
			},
			types.LayerL3: {
				Status: types.EndpointError,
				Error:  "port not active",
				Sequencer: &types.Sequencer{
					Layer: types.LayerL3, Label: "L3", RPCURL: "http://127.0.0.1:3060",
					Status: types.EndpointError, Error: "port not active",
				},
			},
		},
		Bridgehub: &types.BridgeHubView{
			Address:          hub,
			SharedBridge:     &bridge,
			RegisteredChains: []uint64{270},
			Chains:           map[uint64]*types.ChainContractBundle{270: {BaseToken: &token}},
		},
		GatewayBridgehub: &types.BridgeHubView{Note: "gateway endpoint unavailable, gateway bridgehub not resolved"},
		L1Balances: map[uint64]*types.Balance{
			270: {BaseToken: &token, Wei: "2000000000000000000", Formatted: "2"},
		},
		Chains: map[uint64]*types.ChainReport{
			270: {
				StateTransition: &types.ChainStateTransition{
					ChainID:          270,
					ProtocolVersion:  &types.ProtocolVersion{Minor: 26, Patch: 1},
					BatchesCommitted: u(12),
					BatchesVerified:  u(11),
					BatchesExecuted:  u(10),
				},
				PriorityTreeVerified: true,
			},
		},
	}

	var buf bytes.Buffer
	RenderReport(&buf, snap)
	out := buf.String()

	assert.Contains(t, out, "local")
	assert.Contains(t, out, "http://127.0.0.1:8545")
	assert.Contains(t, out, "port not active")
	assert.Contains(t, out, "Bridgehub (L1)")
	assert.Contains(t, out, "Shared Bridge")
	assert.Contains(t, out, "gateway endpoint unavailable")
	assert.Contains(t, out, "0.26.1")
	assert.Contains(t, out, "12/11/10")
	assert.Contains(t, out, "verified")
	assert.Contains(t, out, "270")
}

func TestAddressLabel(t *testing.T) {
	color.NoColor = true

	labeled := addressLabel(common.HexToAddress("0x0000000000000000000000000000000000010002"))
	assert.Contains(t, labeled, "Bridgehub")
	require.Contains(t, labeled, "...")

	plain := addressLabel(common.HexToAddress("0x1234567890123456789012345678901234567890"))
	assert.Equal(t, "0x1234567890123456789012345678901234567890", plain)
	assert.False(t, strings.Contains(plain, "("))
}
