// Package merkle recomputes the priority-queue root hash the way the
// deployed state transition contracts build it when appending priority
// operations.
package merkle

import (
	"math/bits"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RootHasher turns an ordered list of leaf hashes into a queue root. The
// combination rule is an external protocol detail that must match the
// deployed chain bit-for-bit, so it is pluggable: a protocol revision that
// switches to an incremental rule gets a new implementation without touching
// the verifier.
type RootHasher interface {
	Root(leaves []common.Hash) common.Hash
}

// FullTree is the combination rule of current deployments: leaves sit at
// their sequence index in a binary tree sized to the next power of two,
// vacant slots hold keccak256 of the empty string, and parents are the
// keccak256 of the concatenated child pair.
type FullTree struct{}

var _ RootHasher = FullTree{}

// EmptyLeaf is the padding value for vacant tree slots.
var EmptyLeaf = crypto.Keccak256Hash(nil)

// Root computes the queue root. An empty leaf list yields the root of a
// single-slot tree, i.e. EmptyLeaf. The computation is deterministic: the
// same leaves always produce the same root.
func (FullTree) Root(leaves []common.Hash) common.Hash {
	size := nextPowerOfTwo(len(leaves))

	nodes := make([]common.Hash, size)
	copy(nodes, leaves)
	for i := len(leaves); i < size; i++ {
		nodes[i] = EmptyLeaf
	}

	for len(nodes) > 1 {
		parents := make([]common.Hash, len(nodes)/2)
		for i := range parents {
			parents[i] = hashPair(nodes[2*i], nodes[2*i+1])
		}
		nodes = parents
	}

	return nodes[0]
}

func hashPair(a, b common.Hash) common.Hash {
	return crypto.Keccak256Hash(a.Bytes(), b.Bytes())
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}
