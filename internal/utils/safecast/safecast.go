// Package safecast implements functions to safely cast types to avoid panics
package safecast

import (
	"fmt"
	"math"
	"math/big"

	"github.com/spf13/cast"
)

// BigToUint64 converts a contract-returned uint256 to uint64, rejecting nil
// and values outside the uint64 range instead of truncating them.
func BigToUint64(value *big.Int) (uint64, error) {
	if value == nil {
		return 0, fmt.Errorf("nil big.Int cannot be converted to uint64")
	}
	if value.Sign() < 0 || !value.IsUint64() {
		return 0, fmt.Errorf("value %s exceeds uint64 range", value)
	}

	return value.Uint64(), nil
}

// Uint64ToUint32 safely converts a uint64 to uint32 using cast and checks for overflow
func Uint64ToUint32(value uint64) (uint32, error) {
	if value > math.MaxUint32 {
		return 0, fmt.Errorf("value %d exceeds uint32 range", value)
	}

	return cast.ToUint32E(value)
}

// IntToUint64 safely converts an int to uint64, rejecting negatives
func IntToUint64(value int) (uint64, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint64", value)
	}

	return cast.ToUint64E(value)
}
