package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ProtocolVersion is the unpacked semver protocol version of a state
// transition contract.
type ProtocolVersion struct {
	Major uint32 `json:"major"`
	Minor uint32 `json:"minor"`
	Patch uint32 `json:"patch"`
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ChainStateTransition is the inspected state of one chain's state transition
// contract. Every field other than ChainID is optional: a failed read leaves
// the field nil rather than aborting the rest of the inspection, so a partial
// record is valid output.
//
// SyncLayerChainID, when present and non-zero, is the chain id this chain
// currently settles through. It should itself be a discovered chain on some
// layer; the scanner reports a violation of that expectation but does not
// treat it as fatal.
type ChainStateTransition struct {
	ChainID            uint64           `json:"chain_id"`
	ProtocolVersion    *ProtocolVersion `json:"protocol_version,omitempty"`
	BatchesCommitted   *uint64          `json:"batches_committed,omitempty"`
	BatchesVerified    *uint64          `json:"batches_verified,omitempty"`
	BatchesExecuted    *uint64          `json:"batches_executed,omitempty"`
	SystemUpgradeTx    *common.Hash     `json:"system_upgrade_tx_hash,omitempty"`
	DefaultAccountHash *common.Hash     `json:"aa_hash,omitempty"`
	BootloaderHash     *common.Hash     `json:"bootloader_hash,omitempty"`
	Verifier           *common.Address  `json:"verifier,omitempty"`
	Admin              *common.Address  `json:"admin,omitempty"`
	SyncLayerChainID   *uint64          `json:"sync_layer_chain_id,omitempty"`
	Anomalies          []string         `json:"anomalies,omitempty"`
}

// BatchCountersConsistent checks the lifecycle ordering of the three batch
// counters: a batch must be committed before it is verified and verified
// before it is executed. Counters that were not readable are skipped.
func (st *ChainStateTransition) BatchCountersConsistent() bool {
	if st.BatchesCommitted != nil && st.BatchesVerified != nil && *st.BatchesCommitted < *st.BatchesVerified {
		return false
	}
	if st.BatchesVerified != nil && st.BatchesExecuted != nil && *st.BatchesVerified < *st.BatchesExecuted {
		return false
	}

	return true
}
