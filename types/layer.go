package types

import (
	"fmt"
	"slices"
)

// Layer identifies one of the three network tiers of an elastic chain
// deployment: the L1 settlement chain, the L2 gateway, and L3 client chains.
type Layer string

const (
	LayerL1 Layer = "l1"
	LayerL2 Layer = "l2"
	LayerL3 Layer = "l3"
)

var allLayers = []Layer{LayerL1, LayerL2, LayerL3}

// AllLayers returns the layers in settlement order, L1 first.
func AllLayers() []Layer {
	return slices.Clone(allLayers)
}

func (l Layer) String() string {
	return string(l)
}

// Validate returns an error if the layer is not one of l1, l2, l3.
func (l Layer) Validate() error {
	if !slices.Contains(allLayers, l) {
		return &InvalidLayerError{Layer: string(l)}
	}

	return nil
}

// InvalidLayerError is returned when a layer value is not one of the three
// known tiers.
type InvalidLayerError struct {
	Layer string
}

func (e *InvalidLayerError) Error() string {
	return fmt.Sprintf("invalid layer %q, expected one of l1, l2, l3", e.Layer)
}

// Network labels the deployment the scanner is pointed at.
type Network string

const (
	NetworkLocal   Network = "local"
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkStage   Network = "stage"
)

var allNetworks = []Network{NetworkLocal, NetworkMainnet, NetworkTestnet, NetworkStage}

func (n Network) String() string {
	return string(n)
}

// Validate returns an error if the network label is unknown.
func (n Network) Validate() error {
	if !slices.Contains(allNetworks, n) {
		return &InvalidNetworkError{Network: string(n)}
	}

	return nil
}

// InvalidNetworkError is returned when a network label is not recognized.
type InvalidNetworkError struct {
	Network string
}

func (e *InvalidNetworkError) Error() string {
	return fmt.Sprintf("invalid network %q, expected one of local, mainnet, testnet, stage", e.Network)
}
