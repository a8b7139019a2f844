package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/elasticchain/scout/types"
)

// ETHTokenPlaceholder is the conventional base-token address meaning "the
// native ether of the settlement layer" rather than a deployed ERC-20.
var ETHTokenPlaceholder = common.HexToAddress("0x0000000000000000000000000000000000000001")

// BalanceReader reports, per chain, the base-token balance the shared bridge
// holds on the settlement layer.
type BalanceReader struct{}

// NewBalanceReader creates a BalanceReader.
func NewBalanceReader() *BalanceReader {
	return &BalanceReader{}
}

// Read resolves one chain's bridged balance from its contract bundle. It
// returns nil without error when the bundle lacks the addresses needed (an
// unassigned base token or shared bridge is a valid state, not a failure).
func (b *BalanceReader) Read(ctx context.Context, client *Client, bundle *types.ChainContractBundle) (*types.Balance, error) {
	if bundle == nil || bundle.BaseToken == nil || bundle.SharedBridge == nil {
		return nil, nil
	}

	if *bundle.BaseToken == ETHTokenPlaceholder {
		wei, err := client.BalanceAt(ctx, *bundle.SharedBridge)
		if err != nil {
			return nil, fmt.Errorf("native balance of shared bridge: %w", err)
		}

		return types.NewBalance(bundle.BaseToken, wei), nil
	}

	values, err := client.Call(ctx, *bundle.BaseToken, erc20ABI, "balanceOf", *bundle.SharedBridge)
	if err != nil {
		return nil, fmt.Errorf("base token balance of shared bridge: %w", err)
	}
	wei, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T, expected uint256", values[0])
	}

	return types.NewBalance(bundle.BaseToken, wei), nil
}
