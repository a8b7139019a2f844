package types

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ChainContractBundle holds the contract addresses the bridgehub tracks for a
// single registered chain. A nil address means the hub has not assigned that
// contract yet, which is a valid state for a freshly registered chain and is
// distinct from a genuine zero address (the base token placeholder).
type ChainContractBundle struct {
	SharedBridge           *common.Address `json:"shared_bridge,omitempty"`
	StateTransitionManager *common.Address `json:"state_transition_manager,omitempty"`
	StateTransition        *common.Address `json:"state_transition,omitempty"`
	BaseToken              *common.Address `json:"base_token,omitempty"`
	ValidatorTimelock      *common.Address `json:"validator_timelock,omitempty"`
	STMAssetID             *common.Hash    `json:"stm_asset_id,omitempty"`
	Error                  string          `json:"error,omitempty"`
}

// BridgeHubView is the resolved state of one layer's bridgehub contract: the
// authoritative set of registered chain ids and the contract bundle resolved
// for each of them. Absent when the layer's endpoint failed probing, in which
// case Note explains why.
type BridgeHubView struct {
	Address          common.Address                  `json:"address"`
	SharedBridge     *common.Address                 `json:"shared_bridge,omitempty"`
	RegisteredChains []uint64                        `json:"registered_chains"`
	Chains           map[uint64]*ChainContractBundle `json:"chain_contracts"`
	Note             string                          `json:"note,omitempty"`
}

// RegisteredChainIDs returns the discovered chain ids in ascending order.
func (v *BridgeHubView) RegisteredChainIDs() []uint64 {
	ids := make([]uint64, 0, len(v.Chains))
	for id := range v.Chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
