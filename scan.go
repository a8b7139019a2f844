package scout

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/elasticchain/scout/sdk/evm"
	"github.com/elasticchain/scout/types"
)

// Scanner runs one scan over the configured deployment. It holds no state
// across runs; every Scan builds a fresh Snapshot owned by that run.
type Scanner struct {
	cfg ScanConfig
	log *zap.SugaredLogger

	prober    *evm.Prober
	resolver  *evm.HubResolver
	inspector *evm.Inspector
	verifier  *evm.QueueVerifier
	balances  *evm.BalanceReader
}

// NewScanner validates the config and wires the chain access components.
func NewScanner(cfg ScanConfig, log *zap.SugaredLogger) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	opts := cfg.clientOptions()

	return &Scanner{
		cfg:       cfg,
		log:       log,
		prober:    evm.NewProber(opts),
		resolver:  evm.NewHubResolver(log),
		inspector: evm.NewInspector(log),
		verifier:  evm.NewQueueVerifier(log, nil),
		balances:  evm.NewBalanceReader(),
	}, nil
}

// probeResult pairs a probed sequencer with the client that talks to it. The
// client is nil when the endpoint is down.
type probeResult struct {
	seq    *types.Sequencer
	client *evm.Client
}

// chainWork is one per-chain unit of the inspection/verification fan-out.
type chainWork struct {
	layer   types.Layer
	client  *evm.Client
	chainID uint64
	bundle  *types.ChainContractBundle
	onL1    bool
}

type chainResult struct {
	chainID uint64
	report  *types.ChainReport
	balance *types.Balance
}

// Scan executes the whole run: probe, resolve, inspect, verify, merge.
// Everything below the snapshot write is best-effort; the returned error is
// non-nil only when the run is cancelled.
func (s *Scanner) Scan(ctx context.Context) (*types.Snapshot, error) {
	snap := &types.Snapshot{
		GeneratedAtUnix: time.Now().Unix(),
		Network:         s.cfg.Network,
		Sequencers:      make(map[types.Layer]*types.SequencerReport, len(s.cfg.Endpoints)),
		L1Balances:      make(map[uint64]*types.Balance),
		Chains:          make(map[uint64]*types.ChainReport),
	}

	probes := s.probeEndpoints(ctx)
	defer func() {
		for _, p := range probes {
			if p.client != nil {
				p.client.Close()
			}
		}
	}()

	for layer, p := range probes {
		report := &types.SequencerReport{
			Status:    p.seq.Status,
			Sequencer: p.seq,
		}
		if !p.seq.Ok() {
			report.Error = p.seq.Error
		}
		snap.Sequencers[layer] = report
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap.Bridgehub = s.resolveL1Hub(ctx, probes)
	snap.GatewayBridgehub = s.resolveGatewayHub(ctx, probes)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	work := collectChainWork(probes, snap)
	s.runChainWork(ctx, work, snap)

	flagUndiscoveredSyncLayers(snap)

	return snap, ctx.Err()
}

// probeEndpoints probes every configured endpoint concurrently. One
// endpoint's failure has no effect on the others.
func (s *Scanner) probeEndpoints(ctx context.Context) map[types.Layer]*probeResult {
	results := make([]*probeResult, len(s.cfg.Endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range s.cfg.Endpoints {
		g.Go(func() error {
			seq, client := s.prober.Detect(gctx, ep.Layer, ep.Label, ep.URL)
			results[i] = &probeResult{seq: seq, client: client}
			s.log.Infow("endpoint probed", "layer", ep.Layer, "url", ep.URL, "status", seq.Status)

			return nil
		})
	}
	_ = g.Wait()

	byLayer := make(map[types.Layer]*probeResult, len(results))
	for _, r := range results {
		byLayer[r.seq.Layer] = r
	}

	return byLayer
}

// resolveL1Hub resolves the settlement layer's bridgehub. Its address is not
// configured anywhere: the gateway endpoint reports which L1 hub it settles
// through, so both endpoints have to be live.
func (s *Scanner) resolveL1Hub(ctx context.Context, probes map[types.Layer]*probeResult) *types.BridgeHubView {
	l1, l1ok := probes[types.LayerL1]
	if !l1ok || !l1.seq.Ok() {
		return &types.BridgeHubView{Note: "l1 endpoint unavailable, bridgehub not resolved"}
	}

	l2, l2ok := probes[types.LayerL2]
	if !l2ok || !l2.seq.Ok() || l2.seq.Bridgehub == nil {
		return &types.BridgeHubView{Note: "gateway endpoint unavailable, bridgehub address unknown"}
	}

	view, err := s.resolver.Resolve(ctx, l1.client, *l2.seq.Bridgehub)
	if err != nil {
		s.log.Warnw("bridgehub resolution failed", "hub", l2.seq.Bridgehub.Hex(), "err", err)

		return &types.BridgeHubView{Address: *l2.seq.Bridgehub, Note: err.Error()}
	}

	return view
}

// resolveGatewayHub resolves the bridgehub deployed on the gateway layer
// itself, which registers the L3 client chains.
func (s *Scanner) resolveGatewayHub(ctx context.Context, probes map[types.Layer]*probeResult) *types.BridgeHubView {
	l2, ok := probes[types.LayerL2]
	if !ok || !l2.seq.Ok() {
		return &types.BridgeHubView{Note: "gateway endpoint unavailable, gateway bridgehub not resolved"}
	}

	hub := s.cfg.gatewayHub()
	view, err := s.resolver.Resolve(ctx, l2.client, hub)
	if err != nil {
		s.log.Warnw("gateway bridgehub resolution failed", "hub", hub.Hex(), "err", err)

		return &types.BridgeHubView{Address: hub, Note: err.Error()}
	}

	return view
}

// collectChainWork flattens both hubs' registered chains into independent
// work items. Chains registered on the L1 hub are read through the L1
// endpoint, gateway-registered chains through the gateway endpoint.
func collectChainWork(probes map[types.Layer]*probeResult, snap *types.Snapshot) []chainWork {
	var work []chainWork

	add := func(view *types.BridgeHubView, hostLayer types.Layer, client *evm.Client, onL1 bool) {
		if view == nil || client == nil {
			return
		}
		for _, id := range view.RegisteredChains {
			work = append(work, chainWork{
				layer:   hostLayer,
				client:  client,
				chainID: id,
				bundle:  view.Chains[id],
				onL1:    onL1,
			})
		}
	}

	if l1, ok := probes[types.LayerL1]; ok {
		add(snap.Bridgehub, types.LayerL1, l1.client, true)
	}
	if l2, ok := probes[types.LayerL2]; ok {
		add(snap.GatewayBridgehub, types.LayerL2, l2.client, false)
	}

	return work
}

// runChainWork fans the per-chain inspection and verification out and merges
// the results. When the same chain id is registered on both hubs, the L1
// registration wins; work items are ordered L1 first.
func (s *Scanner) runChainWork(ctx context.Context, work []chainWork, snap *types.Snapshot) {
	results := make([]*chainResult, len(work))

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range work {
		g.Go(func() error {
			results[i] = s.scanChain(gctx, w)

			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r == nil {
			continue
		}
		if _, dup := snap.Chains[r.chainID]; dup {
			s.log.Warnw("chain id registered on both hubs, keeping the L1 view", "chain", r.chainID)
			continue
		}
		snap.Chains[r.chainID] = r.report
		if work[i].onL1 && r.balance != nil {
			snap.L1Balances[r.chainID] = r.balance
		}
	}
}

// scanChain inspects one chain's state transition contract, verifies its
// priority queue and, for L1-registered chains, reads the bridged balance.
func (s *Scanner) scanChain(ctx context.Context, w chainWork) *chainResult {
	report := &types.ChainReport{
		PriorityTransactions: []types.PriorityTransaction{},
	}
	result := &chainResult{chainID: w.chainID, report: report}

	if w.bundle == nil || w.bundle.StateTransition == nil {
		report.PriorityTreeNote = "state transition contract unassigned"

		return result
	}
	st := *w.bundle.StateTransition

	report.StateTransition = s.inspector.Inspect(ctx, w.client, w.chainID, st)

	status, txs := s.verifier.Verify(ctx, w.client, w.layer, w.chainID, st)
	report.PriorityQueue = status
	report.PriorityTreeVerified = status.Verified
	report.PriorityTreeNote = status.Note
	if txs != nil {
		report.PriorityTransactions = txs
	}

	if w.onL1 {
		balance, err := s.balances.Read(ctx, w.client, w.bundle)
		if err != nil {
			s.log.Warnw("balance read failed", "chain", w.chainID, "err", err)
		} else {
			result.balance = balance
		}
	}

	return result
}

// flagUndiscoveredSyncLayers checks the soft invariant that a chain's sync
// layer, when set, is itself a discovered chain on some layer. A violation is
// recorded as an anomaly on the referencing chain, never as a failure.
func flagUndiscoveredSyncLayers(snap *types.Snapshot) {
	for id, report := range snap.Chains {
		st := report.StateTransition
		if st == nil || st.SyncLayerChainID == nil || *st.SyncLayerChainID == 0 {
			continue
		}
		if _, ok := snap.Chains[*st.SyncLayerChainID]; !ok {
			st.Anomalies = append(st.Anomalies, fmt.Sprintf(
				"sync layer chain %d referenced by chain %d was not discovered on any layer",
				*st.SyncLayerChainID, id))
		}
	}
}
