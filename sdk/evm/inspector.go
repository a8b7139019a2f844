package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/elasticchain/scout/internal/utils/safecast"
	"github.com/elasticchain/scout/types"
)

// Semver packing of the on-chain protocol version: three u32 components,
// patch in the low bits. This must match the deployed packing bit-for-bit
// since the unpacked value is externally displayed and compared.
const (
	semverMinorShift = 32
	semverMajorShift = 64
)

var semverComponentMask = new(big.Int).SetUint64(0xffffffff)

// UnpackSemVer splits a packed protocol version into its major/minor/patch
// components. Bits above the major component must be zero.
func UnpackSemVer(packed *big.Int) (types.ProtocolVersion, error) {
	if packed == nil || packed.Sign() < 0 {
		return types.ProtocolVersion{}, fmt.Errorf("invalid packed protocol version")
	}
	if packed.BitLen() > semverMajorShift+32 {
		return types.ProtocolVersion{}, fmt.Errorf("packed protocol version %s has bits above the major component", packed)
	}

	component := func(shift uint) uint32 {
		word := new(big.Int).Rsh(packed, shift)
		word.And(word, semverComponentMask)

		return uint32(word.Uint64())
	}

	return types.ProtocolVersion{
		Major: component(semverMajorShift),
		Minor: component(semverMinorShift),
		Patch: component(0),
	}, nil
}

// Inspector reads per-chain state transition metadata. Every read is
// isolated: one failing getter degrades its field to absent and the rest of
// the record is still produced.
type Inspector struct {
	log *zap.SugaredLogger
}

// NewInspector creates an Inspector.
func NewInspector(log *zap.SugaredLogger) *Inspector {
	return &Inspector{log: log}
}

// Inspect reads the state transition contract at st for the given chain id.
func (i *Inspector) Inspect(ctx context.Context, client *Client, chainID uint64, st common.Address) *types.ChainStateTransition {
	record := &types.ChainStateTransition{ChainID: chainID}

	record.ProtocolVersion = i.readProtocolVersion(ctx, client, st)
	record.BatchesCommitted = i.readCounter(ctx, client, st, "getTotalBatchesCommitted")
	record.BatchesVerified = i.readCounter(ctx, client, st, "getTotalBatchesVerified")
	record.BatchesExecuted = i.readCounter(ctx, client, st, "getTotalBatchesExecuted")
	record.SystemUpgradeTx = i.readHash(ctx, client, st, "getL2SystemContractsUpgradeTxHash")
	record.DefaultAccountHash = i.readHash(ctx, client, st, "getL2DefaultAccountBytecodeHash")
	record.BootloaderHash = i.readHash(ctx, client, st, "getL2BootloaderBytecodeHash")
	record.Verifier = i.readAddress(ctx, client, st, "getVerifier")
	record.Admin = i.readAddress(ctx, client, st, "getAdmin")
	record.SyncLayerChainID = i.readSyncLayerChainID(ctx, client, st)

	if !record.BatchCountersConsistent() {
		record.Anomalies = append(record.Anomalies,
			"batch counters out of order: committed >= verified >= executed does not hold")
	}

	return record
}

// readProtocolVersion prefers the contract's own semver getter and falls
// back to unpacking the legacy packed value.
func (i *Inspector) readProtocolVersion(ctx context.Context, client *Client, st common.Address) *types.ProtocolVersion {
	if values, err := client.Call(ctx, st, hyperchainABI, "getSemverProtocolVersion"); err == nil && len(values) == 3 {
		major, okMajor := values[0].(uint32)
		minor, okMinor := values[1].(uint32)
		patch, okPatch := values[2].(uint32)
		if okMajor && okMinor && okPatch {
			return &types.ProtocolVersion{Major: major, Minor: minor, Patch: patch}
		}
	}

	values, err := client.Call(ctx, st, hyperchainABI, "getProtocolVersion")
	if err != nil {
		i.log.Debugw("protocol version unavailable", "contract", st.Hex(), "err", err)

		return nil
	}
	packed, ok := values[0].(*big.Int)
	if !ok {
		return nil
	}

	version, err := UnpackSemVer(packed)
	if err != nil {
		i.log.Warnw("packed protocol version malformed", "contract", st.Hex(), "err", err)

		return nil
	}

	return &version
}

func (i *Inspector) readCounter(ctx context.Context, client *Client, st common.Address, method string) *uint64 {
	values, err := client.Call(ctx, st, hyperchainABI, method)
	if err != nil {
		i.log.Debugw("counter unavailable", "method", method, "contract", st.Hex(), "err", err)

		return nil
	}
	raw, ok := values[0].(*big.Int)
	if !ok {
		return nil
	}
	n, err := safecast.BigToUint64(raw)
	if err != nil {
		i.log.Warnw("counter out of range", "method", method, "value", raw)

		return nil
	}

	return &n
}

func (i *Inspector) readHash(ctx context.Context, client *Client, st common.Address, method string) *common.Hash {
	values, err := client.Call(ctx, st, hyperchainABI, method)
	if err != nil {
		i.log.Debugw("hash unavailable", "method", method, "contract", st.Hex(), "err", err)

		return nil
	}
	raw, ok := values[0].([32]byte)
	if !ok {
		return nil
	}
	h := common.Hash(raw)
	if h == (common.Hash{}) {
		return nil
	}

	return &h
}

func (i *Inspector) readAddress(ctx context.Context, client *Client, st common.Address, method string) *common.Address {
	values, err := client.Call(ctx, st, hyperchainABI, method)
	if err != nil {
		i.log.Debugw("address unavailable", "method", method, "contract", st.Hex(), "err", err)

		return nil
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return nil
	}

	return optionalAddress(addr)
}

// readSyncLayerChainID resolves the sync layer, when one is set, to the chain
// id it serves. The sync layer getter returns the address of the sync layer's
// state transition contract on the same endpoint, so its chain id is one more
// getChainId call away.
func (i *Inspector) readSyncLayerChainID(ctx context.Context, client *Client, st common.Address) *uint64 {
	syncLayer := i.readAddress(ctx, client, st, "getSyncLayer")
	if syncLayer == nil {
		return nil
	}

	values, err := client.Call(ctx, *syncLayer, hyperchainABI, "getChainId")
	if err != nil {
		i.log.Debugw("sync layer chain id unavailable", "sync_layer", syncLayer.Hex(), "err", err)

		return nil
	}
	raw, ok := values[0].(*big.Int)
	if !ok {
		return nil
	}
	id, err := safecast.BigToUint64(raw)
	if err != nil {
		return nil
	}

	return &id
}
