package evm

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/elasticchain/scout/internal/core/merkle"
	"github.com/elasticchain/scout/internal/utils/safecast"
	"github.com/elasticchain/scout/types"
)

// QueueVerifier checks a chain's priority queue against its committed root:
// it fetches every priority request the chain ever accepted, recomputes the
// root with the chain's combination rule and compares. Nothing here is fatal;
// a non-verifiable queue is reported with a note.
type QueueVerifier struct {
	log    *zap.SugaredLogger
	hasher merkle.RootHasher
}

// NewQueueVerifier creates a QueueVerifier. A nil hasher selects the rule of
// current deployments.
func NewQueueVerifier(log *zap.SugaredLogger, hasher merkle.RootHasher) *QueueVerifier {
	if hasher == nil {
		hasher = merkle.FullTree{}
	}

	return &QueueVerifier{log: log, hasher: hasher}
}

// Verify reads the priority queue state of the chain whose state transition
// contract is st, hosted on the given layer. The returned transactions are
// ordered by sequence index and include error entries for records that failed
// to decode.
func (v *QueueVerifier) Verify(ctx context.Context, client *Client, layer types.Layer, chainID uint64, st common.Address) (*types.PriorityQueueStatus, []types.PriorityTransaction) {
	status := &types.PriorityQueueStatus{ChainID: chainID, Layer: layer}

	values, err := client.Call(ctx, st, hyperchainABI, "getPriorityTreeRoot")
	if err != nil {
		status.Note = fmt.Sprintf("on-chain priority root unavailable: %v", err)

		return status, nil
	}
	if raw, ok := values[0].([32]byte); ok {
		root := common.Hash(raw)
		status.OnChainRoot = &root
	}

	first, err := v.readIndex(ctx, client, st, "getFirstUnprocessedPriorityTx")
	if err != nil {
		status.Note = fmt.Sprintf("first unprocessed index unavailable: %v", err)

		return status, nil
	}
	total, err := v.readIndex(ctx, client, st, "getTotalPriorityTxs")
	if err != nil {
		status.Note = fmt.Sprintf("total priority txs unavailable: %v", err)

		return status, nil
	}
	status.FirstPending = &first
	status.TotalEnqueued = &total

	if total == 0 {
		status.Note = "no priority transactions"

		return status, nil
	}

	txs, decodeFailures, err := v.fetchTransactions(ctx, client, st)
	if err != nil {
		status.Note = fmt.Sprintf("priority request scan failed: %v", err)

		return status, nil
	}
	if len(txs) == 0 {
		status.Note = "no priority request events found despite non-empty queue"

		return status, txs
	}

	if gapNote := checkContiguity(txs); gapNote != "" {
		status.Note = gapNote

		return status, txs
	}
	if decodeFailures > 0 {
		status.Note = fmt.Sprintf("%d priority records failed to decode, root cannot be trusted", decodeFailures)

		return status, txs
	}

	fetched, err := safecast.IntToUint64(len(txs))
	if err != nil || fetched != total {
		status.Note = fmt.Sprintf("fetched %d priority requests but contract reports %d enqueued", len(txs), total)

		return status, txs
	}

	leaves := make([]common.Hash, len(txs))
	for i, tx := range txs {
		leaves[i] = tx.Hash
	}
	recomputed := v.hasher.Root(leaves)
	status.RecomputedRoot = &recomputed

	if status.OnChainRoot != nil && recomputed == *status.OnChainRoot {
		status.Verified = true
	} else {
		status.Note = "recomputed root does not match the on-chain root"
	}

	return status, txs
}

// fetchTransactions scans the mailbox's NewPriorityRequest events backwards
// from the latest block and decodes them. A record that fails to decode
// becomes an error entry at its sequence index (when that much is readable)
// and does not stop the scan.
func (v *QueueVerifier) fetchTransactions(ctx context.Context, client *Client, st common.Address) ([]types.PriorityTransaction, int, error) {
	topic := mailboxABI.Events["NewPriorityRequest"].ID

	latest, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		txs      []types.PriorityTransaction
		failures int
	)
	for current := latest; ; {
		var from uint64
		if current > logWindow {
			from = current - logWindow + 1
		}

		logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(current),
			Addresses: []common.Address{st},
			Topics:    [][]common.Hash{{topic}},
		})
		if err != nil {
			return nil, 0, err
		}

		for _, lg := range logs {
			tx, err := DecodePriorityTransaction(lg)
			if err != nil {
				failures++
				index, ok := peekSequenceIndex(lg)
				if !ok {
					v.log.Warnw("undecodable priority request with unreadable index",
						"contract", st.Hex(), "block", lg.BlockNumber, "err", err)
					continue
				}
				txs = append(txs, types.PriorityTransaction{
					SequenceIndex:  index,
					MethodSelector: types.SelectorUnknown,
					DecodeError:    err.Error(),
				})

				continue
			}
			txs = append(txs, tx)
		}

		if from == 0 {
			break
		}
		current = from - 1
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].SequenceIndex < txs[j].SequenceIndex })

	return txs, failures, nil
}

// checkContiguity enforces that sequence indices start at zero and increase
// strictly by one. A gap means events were missed or the queue is
// inconsistent, so the root cannot be recomputed honestly.
func checkContiguity(txs []types.PriorityTransaction) string {
	if len(txs) == 0 {
		return ""
	}
	if txs[0].SequenceIndex != 0 {
		return fmt.Sprintf("priority requests start at index %d, expected 0", txs[0].SequenceIndex)
	}

	for i := 1; i < len(txs); i++ {
		prev, cur := txs[i-1].SequenceIndex, txs[i].SequenceIndex
		if cur != prev+1 {
			return fmt.Sprintf("sequence gap between priority indices %d and %d", prev, cur)
		}
	}

	return ""
}

func (v *QueueVerifier) readIndex(ctx context.Context, client *Client, st common.Address, method string) (uint64, error) {
	values, err := client.Call(ctx, st, hyperchainABI, method)
	if err != nil {
		return 0, err
	}
	raw, ok := values[0].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("%s returned %T, expected uint256", method, values[0])
	}

	return safecast.BigToUint64(raw)
}
