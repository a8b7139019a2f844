package evm

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/elasticchain/scout/internal/utils/safecast"
	"github.com/elasticchain/scout/types"
)

// logWindow is the block span of one eth_getLogs query when scanning a
// chain's history backwards. Local nodes cap unbounded range queries.
const logWindow = 10_000

// EmptyContractError is returned when the configured bridgehub address holds
// no code, which usually means the address or the chain is wrong.
type EmptyContractError struct {
	Address common.Address
	URL     string
}

func (e *EmptyContractError) Error() string {
	return fmt.Sprintf("no contract code at %s on %s, wrong address or wrong chain", e.Address.Hex(), e.URL)
}

// HubResolver reads a layer's bridgehub contract: the authoritative set of
// registered chain ids and the contract bundle behind each of them.
type HubResolver struct {
	log *zap.SugaredLogger
}

// NewHubResolver creates a HubResolver.
func NewHubResolver(log *zap.SugaredLogger) *HubResolver {
	return &HubResolver{log: log}
}

// Resolve reads the bridgehub at hub on the given layer endpoint. A failure
// to reach the hub itself is returned as an error (the caller reports the
// layer's view as absent); a failure while resolving one chain id is recorded
// on that chain's bundle and does not stop the other chain ids.
func (r *HubResolver) Resolve(ctx context.Context, client *Client, hub common.Address) (*types.BridgeHubView, error) {
	code, err := client.CodeAt(ctx, hub)
	if err != nil {
		return nil, fmt.Errorf("read bridgehub code: %w", err)
	}
	if len(code) == 0 {
		return nil, &EmptyContractError{Address: hub, URL: client.URL()}
	}

	view := &types.BridgeHubView{
		Address: hub,
		Chains:  make(map[uint64]*types.ChainContractBundle),
	}

	if addr, err := r.callAddress(ctx, client, hub, bridgehubABI, "sharedBridge"); err == nil {
		view.SharedBridge = optionalAddress(addr)
	} else {
		r.log.Warnw("shared bridge read failed", "hub", hub.Hex(), "err", err)
	}

	ids, err := r.discoverChains(ctx, client, hub)
	if err != nil {
		return nil, fmt.Errorf("discover registered chains: %w", err)
	}

	for _, id := range ids {
		view.Chains[id] = r.resolveBundle(ctx, client, hub, view.SharedBridge, id)
	}
	view.RegisteredChains = view.RegisteredChainIDs()

	return view, nil
}

// discoverChains scans the hub's NewChain events backwards from the latest
// block. The resulting set is deduplicated; ids are returned ascending.
func (r *HubResolver) discoverChains(ctx context.Context, client *Client, hub common.Address) ([]uint64, error) {
	newChainTopic := bridgehubABI.Events["NewChain"].ID

	latest, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	for current := latest; ; {
		var from uint64
		if current > logWindow {
			from = current - logWindow + 1
		}

		logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(current),
			Addresses: []common.Address{hub},
			Topics:    [][]common.Hash{{newChainTopic}},
		})
		if err != nil {
			return nil, err
		}

		for _, lg := range logs {
			if len(lg.Topics) < 2 {
				continue
			}
			id, err := safecast.BigToUint64(new(big.Int).SetBytes(lg.Topics[1].Bytes()))
			if err != nil {
				r.log.Warnw("chain id out of range in NewChain event", "topic", lg.Topics[1].Hex())
				continue
			}
			seen[id] = struct{}{}
		}

		if from == 0 {
			break
		}
		current = from - 1
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// resolveBundle reads one chain's contract addresses through the hub. The
// read order matters: the state transition contract is obtained through the
// hub's chain registry, and the validator timelock through the chain's state
// transition manager, so those reads depend on the manager being resolved
// first. A zero address at any step means "not yet assigned", not an error.
func (r *HubResolver) resolveBundle(ctx context.Context, client *Client, hub common.Address, sharedBridge *common.Address, chainID uint64) *types.ChainContractBundle {
	bundle := &types.ChainContractBundle{SharedBridge: sharedBridge}
	id := new(big.Int).SetUint64(chainID)

	stm, err := r.callAddress(ctx, client, hub, bridgehubABI, "stateTransitionManager", id)
	if err != nil {
		bundle.Error = fmt.Sprintf("state transition manager: %v", err)

		return bundle
	}
	bundle.StateTransitionManager = optionalAddress(stm)

	st, err := r.callAddress(ctx, client, hub, bridgehubABI, "getHyperchain", id)
	if err != nil {
		bundle.Error = fmt.Sprintf("state transition contract: %v", err)

		return bundle
	}
	bundle.StateTransition = optionalAddress(st)

	baseToken, err := r.callAddress(ctx, client, hub, bridgehubABI, "baseToken", id)
	if err != nil {
		bundle.Error = fmt.Sprintf("base token: %v", err)

		return bundle
	}
	bundle.BaseToken = optionalAddress(baseToken)

	values, err := client.Call(ctx, hub, bridgehubABI, "stmAssetIdFromChainId", id)
	if err != nil {
		bundle.Error = fmt.Sprintf("stm asset id: %v", err)

		return bundle
	}
	if raw, ok := values[0].([32]byte); ok {
		assetID := common.Hash(raw)
		if assetID != (common.Hash{}) {
			bundle.STMAssetID = &assetID
		}
	}

	// The timelock lives behind the manager, so an unassigned manager leaves
	// it unassigned too.
	if bundle.StateTransitionManager != nil {
		timelock, err := r.callAddress(ctx, client, *bundle.StateTransitionManager, stmABI, "validatorTimelock")
		if err != nil {
			bundle.Error = fmt.Sprintf("validator timelock: %v", err)

			return bundle
		}
		bundle.ValidatorTimelock = optionalAddress(timelock)
	}

	return bundle
}

func (r *HubResolver) callAddress(ctx context.Context, client *Client, to common.Address, contractABI gethabi.ABI, method string, args ...any) (common.Address, error) {
	values, err := client.Call(ctx, to, contractABI, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s returned %T, expected address", method, values[0])
	}

	return addr, nil
}

// optionalAddress maps the zero address to nil so that "not yet assigned"
// stays distinct from a genuine address in the snapshot.
func optionalAddress(addr common.Address) *common.Address {
	if addr == (common.Address{}) {
		return nil
	}

	return &addr
}
