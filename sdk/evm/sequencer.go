package evm

import (
	"context"

	"github.com/elasticchain/scout/types"
)

// Prober classifies the liveness of configured layer endpoints. Each probe is
// independent: a dead endpoint yields an errored Sequencer value and a nil
// client, never an error that would abort the run.
type Prober struct {
	opts Options
}

// NewProber creates a Prober whose clients use the given call options.
func NewProber(opts Options) *Prober {
	return &Prober{opts: opts}
}

// Detect probes one endpoint: TCP liveness, chain id and latest block, then
// the zks_ namespace to find out whether the endpoint settles onto a parent
// layer (and through which bridgehub). The returned client is non-nil exactly
// when the sequencer status is ok; the caller owns closing it.
func (p *Prober) Detect(ctx context.Context, layer types.Layer, label, rawurl string) (*types.Sequencer, *Client) {
	seq := &types.Sequencer{
		Layer:  layer,
		Label:  label,
		RPCURL: rawurl,
		Status: types.EndpointUnprobed,
	}

	if !PortActive(rawurl, p.opts.timeout()) {
		seq.Status = types.EndpointError
		seq.Error = "port not active"

		return seq, nil
	}

	client, err := Dial(ctx, rawurl, p.opts)
	if err != nil {
		seq.Status = types.EndpointError
		seq.Error = err.Error()

		return seq, nil
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		seq.Status = types.EndpointError
		seq.Error = "chain id query failed: " + err.Error()

		return seq, nil
	}

	latestBlock, err := client.BlockNumber(ctx)
	if err != nil {
		client.Close()
		seq.Status = types.EndpointError
		seq.Error = "latest block query failed: " + err.Error()

		return seq, nil
	}

	seq.Status = types.EndpointOk
	seq.ChainID = &chainID
	seq.LatestBlock = &latestBlock

	// An endpoint that answers the zks_ namespace settles onto a parent
	// layer; a plain L1 node rejects the method and stays as it is.
	if hub, err := client.BridgehubAddress(ctx); err == nil {
		seq.Bridgehub = &hub
		if parent, err := client.L1ChainID(ctx); err == nil {
			seq.ParentChainID = &parent
		}
	}

	return seq, client
}
