package types

import (
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SequencerReport is the per-layer section of the snapshot: the probe status,
// the probed endpoint when it answered, and the failure reason when it did
// not.
type SequencerReport struct {
	Status    EndpointStatus `json:"status"`
	Sequencer *Sequencer     `json:"sequencer,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Balance is one chain's base-token balance held by the shared bridge,
// reported both as a raw wei-equivalent integer string and as a
// human-readable decimal.
type Balance struct {
	BaseToken *common.Address `json:"base_token,omitempty"`
	Wei       string          `json:"wei"`
	Formatted string          `json:"formatted"`
}

// NewBalance formats a raw balance. The human-readable form assumes the
// conventional 18 decimals.
func NewBalance(token *common.Address, wei *big.Int) *Balance {
	return &Balance{
		BaseToken: token,
		Wei:       wei.String(),
		Formatted: FormatUnits(wei, 18),
	}
}

// FormatUnits renders an integer amount as a decimal string with the given
// number of fractional digits, trimming trailing zeros. FormatUnits(1, 18)
// is "0.000000000000000001"; whole amounts render without a fraction.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	if frac.Sign() == 0 {
		return whole.String()
	}

	fracStr := strings.TrimRight(
		strings.Repeat("0", decimals-len(frac.String()))+frac.String(), "0")

	return whole.String() + "." + fracStr
}

// ChainReport groups everything the scanner learned about one chain id.
type ChainReport struct {
	StateTransition      *ChainStateTransition `json:"state_transition,omitempty"`
	PriorityTreeVerified bool                  `json:"priority_tree_verified"`
	PriorityTreeNote     string                `json:"priority_tree_note,omitempty"`
	PriorityQueue        *PriorityQueueStatus  `json:"priority_queue,omitempty"`
	PriorityTransactions []PriorityTransaction `json:"priority_transactions"`
}

// Snapshot is the top-level scan result. It is created fresh each run, never
// mutated after being handed to the writer, and serialized with the stable
// field names downstream consumers rely on.
type Snapshot struct {
	GeneratedAtUnix  int64                      `json:"generated_at_unix"`
	Network          Network                    `json:"network"`
	Sequencers       map[Layer]*SequencerReport `json:"sequencers"`
	Bridgehub        *BridgeHubView             `json:"bridgehub,omitempty"`
	GatewayBridgehub *BridgeHubView             `json:"gateway_bridgehub,omitempty"`
	L1Balances       map[uint64]*Balance        `json:"l1_balances"`
	Chains           map[uint64]*ChainReport    `json:"chains"`
}

// ChainIDs returns the ids present in the Chains section in ascending order.
func (s *Snapshot) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(s.Chains))
	for id := range s.Chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
