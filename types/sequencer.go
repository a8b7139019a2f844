package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// EndpointStatus is the probe outcome for a configured RPC endpoint.
// An endpoint starts Unprobed and transitions exactly once per scan run.
type EndpointStatus string

const (
	EndpointUnprobed EndpointStatus = "unprobed"
	EndpointOk       EndpointStatus = "ok"
	EndpointError    EndpointStatus = "error"
)

// Sequencer describes one probed layer endpoint. ChainID and LatestBlock are
// nil until the endpoint has been probed successfully; Error carries the
// probe failure reason when Status is EndpointError. ParentChainID is set for
// L2/L3 sequencers and records the chain id they settle onto on their parent
// layer. Bridgehub is the hub contract address the endpoint reported for its
// parent layer, when it reported one.
type Sequencer struct {
	Layer         Layer           `json:"layer"`
	Label         string          `json:"label"`
	RPCURL        string          `json:"rpc_url"`
	Status        EndpointStatus  `json:"status"`
	ChainID       *uint64         `json:"chain_id,omitempty"`
	LatestBlock   *uint64         `json:"latest_block,omitempty"`
	ParentChainID *uint64         `json:"parent_chain_id,omitempty"`
	Bridgehub     *common.Address `json:"bridgehub,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Ok reports whether the endpoint answered both probe queries.
func (s *Sequencer) Ok() bool {
	return s.Status == EndpointOk
}

func (s *Sequencer) String() string {
	if !s.Ok() {
		return fmt.Sprintf("sequencer %s at %s: %s (%s)", s.Label, s.RPCURL, s.Status, s.Error)
	}

	settles := ""
	if s.ParentChainID != nil {
		settles = fmt.Sprintf(", settles on %d", *s.ParentChainID)
	}

	return fmt.Sprintf("sequencer %s at %s (chain %d, block %d%s)",
		s.Label, s.RPCURL, *s.ChainID, *s.LatestBlock, settles)
}
