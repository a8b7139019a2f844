// Package abi wraps go-ethereum's ABI machinery with the small helpers the
// scanner needs to issue read-only contract calls without generated bindings.
package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MustParse parses a JSON contract ABI at package init time. The ABIs here
// are compile-time constants, so a parse failure is a programming error.
func MustParse(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}

	return parsed
}

// Pack encodes a method call (selector plus arguments) for eth_call.
func Pack(contractABI abi.ABI, method string, args ...any) ([]byte, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	return data, nil
}

// Unpack decodes the return data of a method call.
func Unpack(contractABI abi.ABI, method string, data []byte) ([]any, error) {
	values, err := contractABI.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	return values, nil
}
