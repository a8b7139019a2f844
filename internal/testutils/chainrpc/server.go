// Package chainrpc is a configurable in-process JSON-RPC endpoint used by
// tests to stand in for a layer's node. It answers the subset of eth_ and
// zks_ methods the scanner issues.
package chainrpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const (
	codeMethodNotFound = -32601
	codeExecutionError = 3
)

type callKey struct {
	to       common.Address
	selector [4]byte
}

// Server is one fake layer endpoint. All fields are guarded by mu; handlers
// never block on anything but the mutex.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	chainID     uint64
	latestBlock uint64
	l1ChainID   *uint64
	bridgehub   *common.Address
	code        map[common.Address][]byte
	balances    map[common.Address]string
	callResults map[callKey][]byte
	callErrors  map[callKey]string
	logs        []ethtypes.Log
}

// New starts a stub endpoint with the given chain id and latest block.
func New(chainID, latestBlock uint64) *Server {
	s := &Server{
		chainID:     chainID,
		latestBlock: latestBlock,
		code:        make(map[common.Address][]byte),
		balances:    make(map[common.Address]string),
		callResults: make(map[callKey][]byte),
		callErrors:  make(map[callKey]string),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))

	return s
}

// URL returns the endpoint URL (http://127.0.0.1:port).
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the endpoint down.
func (s *Server) Close() { s.srv.Close() }

// SetBridgehub makes the endpoint answer zks_getBridgehubContract, marking it
// as an L2/L3-style sequencer settling through the given hub.
func (s *Server) SetBridgehub(addr common.Address, l1ChainID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bridgehub = &addr
	s.l1ChainID = &l1ChainID
}

// SetCode installs bytecode at addr for eth_getCode.
func (s *Server) SetCode(addr common.Address, code []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code[addr] = code
}

// SetBalance installs a native balance for eth_getBalance.
func (s *Server) SetBalance(addr common.Address, wei *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = hexutil.EncodeBig(wei)
}

// StubCall makes eth_call on (to, method) return the ABI-encoded outputs.
func (s *Server) StubCall(to common.Address, contractABI gethabi.ABI, method string, outputs ...any) {
	m, ok := contractABI.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chainrpc: no method %q in ABI", method))
	}
	ret, err := m.Outputs.Pack(outputs...)
	if err != nil {
		panic(fmt.Sprintf("chainrpc: pack outputs of %s: %v", method, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.callResults[callKey{to: to, selector: [4]byte(m.ID)}] = ret
}

// FailCall makes eth_call on (to, method) revert with the given message.
func (s *Server) FailCall(to common.Address, contractABI gethabi.ABI, method, message string) {
	m, ok := contractABI.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chainrpc: no method %q in ABI", method))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.callErrors[callKey{to: to, selector: [4]byte(m.ID)}] = message
}

// AddLog appends a log returned by matching eth_getLogs queries.
func (s *Server) AddLog(lg ethtypes.Log) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, lg)
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	result, rpcErr := s.dispatch(req)
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) dispatch(req rpcRequest) (any, *rpcError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Method {
	case "eth_chainId":
		return hexutil.EncodeUint64(s.chainID), nil
	case "eth_blockNumber":
		return hexutil.EncodeUint64(s.latestBlock), nil
	case "zks_getBridgehubContract":
		if s.bridgehub == nil {
			return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
		}

		return s.bridgehub.Hex(), nil
	case "zks_L1ChainId":
		if s.l1ChainID == nil {
			return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
		}

		return hexutil.EncodeUint64(*s.l1ChainID), nil
	case "eth_getCode":
		var addr common.Address
		if err := unmarshalParam(req.Params, 0, &addr); err != nil {
			return nil, &rpcError{Code: -32602, Message: err.Error()}
		}

		return hexutil.Encode(s.code[addr]), nil
	case "eth_getBalance":
		var addr common.Address
		if err := unmarshalParam(req.Params, 0, &addr); err != nil {
			return nil, &rpcError{Code: -32602, Message: err.Error()}
		}
		wei, ok := s.balances[addr]
		if !ok {
			return "0x0", nil
		}

		return wei, nil
	case "eth_call":
		return s.handleCall(req.Params)
	case "eth_getLogs":
		return s.handleGetLogs(req.Params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

func (s *Server) handleCall(params []json.RawMessage) (any, *rpcError) {
	var args callArgs
	if err := unmarshalParam(params, 0, &args); err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}
	data := args.Data
	if len(data) == 0 {
		data = args.Input
	}
	if args.To == nil || len(data) < 4 {
		return nil, &rpcError{Code: -32602, Message: "malformed call object"}
	}

	key := callKey{to: *args.To, selector: [4]byte(data[:4])}
	if msg, ok := s.callErrors[key]; ok {
		return nil, &rpcError{Code: codeExecutionError, Message: "execution reverted: " + msg}
	}
	ret, ok := s.callResults[key]
	if !ok {
		return nil, &rpcError{Code: codeExecutionError, Message: "execution reverted"}
	}

	return hexutil.Encode(ret), nil
}

type filterArgs struct {
	FromBlock string           `json:"fromBlock"`
	ToBlock   string           `json:"toBlock"`
	Address   json.RawMessage  `json:"address"`
	Topics    [][]*common.Hash `json:"topics"`
}

func (s *Server) handleGetLogs(params []json.RawMessage) (any, *rpcError) {
	var args filterArgs
	if err := unmarshalParam(params, 0, &args); err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}

	from, to, err := blockRange(args.FromBlock, args.ToBlock, s.latestBlock)
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}
	addrs, err := filterAddresses(args.Address)
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}

	matched := make([]ethtypes.Log, 0)
	for _, lg := range s.logs {
		if lg.BlockNumber < from || lg.BlockNumber > to {
			continue
		}
		if len(addrs) > 0 && !containsAddress(addrs, lg.Address) {
			continue
		}
		if !topicsMatch(args.Topics, lg.Topics) {
			continue
		}
		matched = append(matched, lg)
	}

	return matched, nil
}

func unmarshalParam(params []json.RawMessage, i int, v any) error {
	if i >= len(params) {
		return fmt.Errorf("missing param %d", i)
	}

	return json.Unmarshal(params[i], v)
}

func blockRange(fromHex, toHex string, latest uint64) (uint64, uint64, error) {
	parse := func(s string, fallback uint64) (uint64, error) {
		switch s {
		case "", "latest", "pending":
			return fallback, nil
		case "earliest":
			return 0, nil
		default:
			return hexutil.DecodeUint64(s)
		}
	}

	from, err := parse(fromHex, 0)
	if err != nil {
		return 0, 0, err
	}
	to, err := parse(toHex, latest)
	if err != nil {
		return 0, 0, err
	}

	return from, to, nil
}

func filterAddresses(raw json.RawMessage) ([]common.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		var addrs []common.Address
		err := json.Unmarshal(raw, &addrs)

		return addrs, err
	}

	var addr common.Address
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, err
	}

	return []common.Address{addr}, nil
}

func containsAddress(addrs []common.Address, addr common.Address) bool {
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}

	return false
}

func topicsMatch(want [][]*common.Hash, got []common.Hash) bool {
	for i, alternatives := range want {
		if len(alternatives) == 0 {
			continue
		}
		if i >= len(got) {
			return false
		}
		ok := false
		for _, alt := range alternatives {
			if alt == nil || *alt == got[i] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	return true
}
