package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterABI = `[
	{"name":"getCount","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"holderOf","type":"function","stateMutability":"view","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"address"}]}
]`

func TestMustParsePanicsOnGarbage(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustParse("not json") })
	assert.NotPanics(t, func() { MustParse(counterABI) })
}

func TestPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()

	parsed := MustParse(counterABI)

	data, err := Pack(parsed, "holderOf", big.NewInt(7))
	require.NoError(t, err)
	// 4-byte selector + one 32-byte word.
	require.Len(t, data, 36)

	addr := common.HexToAddress("0x00000000000000000000000000000000000aBCde")
	ret := make([]byte, 32)
	copy(ret[12:], addr.Bytes())

	values, err := Unpack(parsed, "holderOf", ret)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, addr, values[0].(common.Address))
}

func TestPackUnknownMethod(t *testing.T) {
	t.Parallel()

	parsed := MustParse(counterABI)

	_, err := Pack(parsed, "noSuchMethod")
	require.Error(t, err)
}
