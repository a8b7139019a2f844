// Package scout scans a multi-layer elastic chain deployment: it probes each
// layer's RPC endpoint, discovers the chains registered with each layer's
// bridgehub, inspects their state transition contracts, verifies priority
// queue roots and assembles everything into one persisted snapshot.
package scout

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/elasticchain/scout/sdk/evm"
	"github.com/elasticchain/scout/types"
)

// Default local endpoints of a dev deployment, one port per layer.
const (
	DefaultL1URL = "http://127.0.0.1:8545"
	DefaultL2URL = "http://127.0.0.1:3050"
	DefaultL3URL = "http://127.0.0.1:3060"
)

// DefaultOutputPath is where the snapshot lands unless overridden.
const DefaultOutputPath = "data/output.json"

// GatewayBridgehubAddress is the fixed system address of the bridgehub
// contract deployed on the gateway layer.
var GatewayBridgehubAddress = common.HexToAddress("0x0000000000000000000000000000000000010002")

var validate = validator.New()

// EndpointConfig names one layer endpoint to probe.
type EndpointConfig struct {
	Layer types.Layer `validate:"required"`
	Label string      `validate:"required"`
	URL   string      `validate:"required,url"`
}

// ScanConfig is the immutable configuration of one scan run. It is passed by
// value to every component; nothing in the scanner mutates it or keeps
// process-wide state.
type ScanConfig struct {
	Network   types.Network    `validate:"required"`
	Endpoints []EndpointConfig `validate:"required,min=1,dive"`

	// Timeout bounds each individual RPC call.
	Timeout time.Duration
	// Retries is the number of additional attempts per failed RPC read;
	// zero means reads fail immediately, which is the default behavior.
	Retries        uint64
	RetryBaseDelay time.Duration

	// GatewayBridgehub overrides the gateway layer's hub address.
	GatewayBridgehub common.Address
}

// DefaultConfig returns a config pointed at the conventional local ports.
func DefaultConfig(network types.Network) ScanConfig {
	return ScanConfig{
		Network: network,
		Endpoints: []EndpointConfig{
			{Layer: types.LayerL1, Label: "L1", URL: DefaultL1URL},
			{Layer: types.LayerL2, Label: "Gateway", URL: DefaultL2URL},
			{Layer: types.LayerL3, Label: "L3", URL: DefaultL3URL},
		},
		Timeout:          evm.DefaultCallTimeout,
		GatewayBridgehub: GatewayBridgehubAddress,
	}
}

// Validate checks the config before a run.
func (c ScanConfig) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}
	for _, ep := range c.Endpoints {
		if err := ep.Layer.Validate(); err != nil {
			return err
		}
	}

	return validate.Struct(c)
}

func (c ScanConfig) clientOptions() evm.Options {
	return evm.Options{
		Timeout: c.Timeout,
		Retry: evm.RetryPolicy{
			MaxRetries: c.Retries,
			BaseDelay:  c.RetryBaseDelay,
		},
	}
}

func (c ScanConfig) gatewayHub() common.Address {
	if c.GatewayBridgehub == (common.Address{}) {
		return GatewayBridgehubAddress
	}

	return c.GatewayBridgehub
}
