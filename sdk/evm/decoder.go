package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/elasticchain/scout/internal/utils/safecast"
	"github.com/elasticchain/scout/types"
)

// l2CanonicalTransaction mirrors the fixed encoding of a priority request's
// embedded transaction. Address-valued fields travel as uint256 words.
type l2CanonicalTransaction struct {
	TxType                 *big.Int
	From                   *big.Int
	To                     *big.Int
	GasLimit               *big.Int
	GasPerPubdataByteLimit *big.Int
	MaxFeePerGas           *big.Int
	MaxPriorityFeePerGas   *big.Int
	Paymaster              *big.Int
	Nonce                  *big.Int
	Value                  *big.Int
	Reserved               [4]*big.Int
	Data                   []byte
	Signature              []byte
	FactoryDeps            []*big.Int
	PaymasterInput         []byte
	ReservedDynamic        []byte
}

type newPriorityRequestEvent struct {
	TxId                *big.Int
	TxHash              [32]byte
	ExpirationTimestamp uint64
	Transaction         l2CanonicalTransaction
	FactoryDeps         [][]byte
}

// DecodePriorityTransaction decodes one NewPriorityRequest log into a
// PriorityTransaction. A failure is isolated to this record; the caller keeps
// decoding subsequent records.
func DecodePriorityTransaction(lg ethtypes.Log) (types.PriorityTransaction, error) {
	var ev newPriorityRequestEvent
	if err := mailboxABI.UnpackIntoInterface(&ev, "NewPriorityRequest", lg.Data); err != nil {
		return types.PriorityTransaction{}, fmt.Errorf("unpack priority request: %w", err)
	}

	index, err := safecast.BigToUint64(ev.TxId)
	if err != nil {
		return types.PriorityTransaction{}, fmt.Errorf("priority tx id out of range: %w", err)
	}

	return types.PriorityTransaction{
		SequenceIndex:       index,
		Hash:                common.Hash(ev.TxHash),
		Sender:              wordToAddress(ev.Transaction.From),
		Target:              wordToAddress(ev.Transaction.To),
		GasLimit:            ev.Transaction.GasLimit,
		GasPerPubdataLimit:  ev.Transaction.GasPerPubdataByteLimit,
		Value:               ev.Transaction.Value,
		MethodSelector:      methodSelector(ev.Transaction.Data),
		ExpirationTimestamp: ev.ExpirationTimestamp,
	}, nil
}

// methodSelector extracts the first four bytes of the embedded calldata. No
// reverse lookup of selector names is attempted.
func methodSelector(calldata []byte) string {
	if len(calldata) < 4 {
		return types.SelectorUnknown
	}

	return hexutil.Encode(calldata[:4])
}

// wordToAddress converts a uint256-encoded address to its 20-byte form.
func wordToAddress(word *big.Int) common.Address {
	if word == nil {
		return common.Address{}
	}

	return common.BytesToAddress(word.Bytes())
}

// peekSequenceIndex extracts the sequence index from a raw log without a full
// decode, so a malformed record can still be reported at its position. The
// index is the event's first data word.
func peekSequenceIndex(lg ethtypes.Log) (uint64, bool) {
	if len(lg.Data) < 32 {
		return 0, false
	}
	index, err := safecast.BigToUint64(new(big.Int).SetBytes(lg.Data[:32]))
	if err != nil {
		return 0, false
	}

	return index, true
}
