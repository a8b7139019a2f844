package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayer_Validate(t *testing.T) {
	t.Parallel()

	for _, layer := range AllLayers() {
		assert.NoError(t, layer.Validate())
	}

	err := Layer("l4").Validate()
	var invalid *InvalidLayerError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "l4", invalid.Layer)
}

func TestAllLayers_SettlementOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Layer{LayerL1, LayerL2, LayerL3}, AllLayers())

	// Callers get their own copy.
	layers := AllLayers()
	layers[0] = LayerL3
	assert.Equal(t, LayerL1, AllLayers()[0])
}

func TestNetwork_Validate(t *testing.T) {
	t.Parallel()

	for _, network := range []Network{NetworkLocal, NetworkMainnet, NetworkTestnet, NetworkStage} {
		assert.NoError(t, network.Validate())
	}

	err := Network("devnet").Validate()
	var invalid *InvalidNetworkError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "devnet", invalid.Network)
}

func TestSequencer_Ok(t *testing.T) {
	t.Parallel()

	assert.False(t, (&Sequencer{Status: EndpointUnprobed}).Ok())
	assert.False(t, (&Sequencer{Status: EndpointError}).Ok())
	assert.True(t, (&Sequencer{Status: EndpointOk}).Ok())
}
