package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SelectorUnknown is reported when a priority transaction carries no
// calldata, or its calldata is shorter than a 4-byte method selector.
const SelectorUnknown = "unknown"

// PriorityTransaction is one decoded entry of a chain's priority queue,
// ordered by SequenceIndex. Indices are contiguous and strictly increasing
// from the queue's first index; a gap is a consistency error surfaced by the
// verifier. Hash is the canonical transaction hash the chain folded into its
// priority root.
type PriorityTransaction struct {
	SequenceIndex       uint64         `json:"sequence_index"`
	Hash                common.Hash    `json:"tx_hash"`
	Sender              common.Address `json:"sender"`
	Target              common.Address `json:"target"`
	GasLimit            *big.Int       `json:"gas_limit"`
	GasPerPubdataLimit  *big.Int       `json:"gas_per_pubdata_limit"`
	Value               *big.Int       `json:"value"`
	MethodSelector      string         `json:"method_selector"`
	ExpirationTimestamp uint64         `json:"expiration_timestamp"`
	DecodeError         string         `json:"decode_error,omitempty"`
}

// PriorityQueueStatus is the outcome of verifying one chain's priority queue
// against its committed root. Verified is true iff RecomputedRoot is present
// and equals OnChainRoot. When the queue cannot be verified (empty queue,
// unreachable chain, decode failure) RecomputedRoot is nil and Note names
// the reason.
type PriorityQueueStatus struct {
	ChainID        uint64       `json:"chain_id"`
	Layer          Layer        `json:"layer"`
	OnChainRoot    *common.Hash `json:"on_chain_root,omitempty"`
	RecomputedRoot *common.Hash `json:"recomputed_root,omitempty"`
	FirstPending   *uint64      `json:"first_unprocessed,omitempty"`
	TotalEnqueued  *uint64      `json:"total_enqueued,omitempty"`
	Verified       bool         `json:"verified"`
	Note           string       `json:"note,omitempty"`
}
