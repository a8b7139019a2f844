package evm

import (
	"github.com/elasticchain/scout/internal/utils/abi"
)

// Inline ABIs for the handful of read-only entry points the scanner touches.
// Generated bindings would drag in the full contract surfaces; these calls
// are stable protocol interfaces.

const bridgehubABIJSON = `[
	{"name":"sharedBridge","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"stateTransitionManager","type":"function","stateMutability":"view","inputs":[{"name":"chainId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"baseToken","type":"function","stateMutability":"view","inputs":[{"name":"chainId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"getHyperchain","type":"function","stateMutability":"view","inputs":[{"name":"_chainId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"stmAssetIdFromChainId","type":"function","stateMutability":"view","inputs":[{"name":"chainId","type":"uint256"}],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"NewChain","type":"event","anonymous":false,"inputs":[
		{"name":"chainId","type":"uint256","indexed":true},
		{"name":"stateTransitionManager","type":"address","indexed":false},
		{"name":"chainGovernance","type":"address","indexed":true}]}
]`

const stmABIJSON = `[
	{"name":"validatorTimelock","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

const hyperchainABIJSON = `[
	{"name":"getVerifier","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"getAdmin","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"getTotalBatchesCommitted","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getTotalBatchesVerified","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getTotalBatchesExecuted","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getSemverProtocolVersion","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"},{"name":"","type":"uint32"},{"name":"","type":"uint32"}]},
	{"name":"getProtocolVersion","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getL2BootloaderBytecodeHash","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"getL2DefaultAccountBytecodeHash","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"getL2SystemContractsUpgradeTxHash","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"getChainId","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getSyncLayer","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"name":"getPriorityTreeRoot","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
	{"name":"getFirstUnprocessedPriorityTx","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"getTotalPriorityTxs","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

const mailboxABIJSON = `[
	{"name":"NewPriorityRequest","type":"event","anonymous":false,"inputs":[
		{"name":"txId","type":"uint256","indexed":false},
		{"name":"txHash","type":"bytes32","indexed":false},
		{"name":"expirationTimestamp","type":"uint64","indexed":false},
		{"name":"transaction","type":"tuple","indexed":false,"components":[
			{"name":"txType","type":"uint256"},
			{"name":"from","type":"uint256"},
			{"name":"to","type":"uint256"},
			{"name":"gasLimit","type":"uint256"},
			{"name":"gasPerPubdataByteLimit","type":"uint256"},
			{"name":"maxFeePerGas","type":"uint256"},
			{"name":"maxPriorityFeePerGas","type":"uint256"},
			{"name":"paymaster","type":"uint256"},
			{"name":"nonce","type":"uint256"},
			{"name":"value","type":"uint256"},
			{"name":"reserved","type":"uint256[4]"},
			{"name":"data","type":"bytes"},
			{"name":"signature","type":"bytes"},
			{"name":"factoryDeps","type":"uint256[]"},
			{"name":"paymasterInput","type":"bytes"},
			{"name":"reservedDynamic","type":"bytes"}]},
		{"name":"factoryDeps","type":"bytes[]","indexed":false}]}
]`

const erc20ABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

var (
	bridgehubABI  = abi.MustParse(bridgehubABIJSON)
	stmABI        = abi.MustParse(stmABIJSON)
	hyperchainABI = abi.MustParse(hyperchainABIJSON)
	mailboxABI    = abi.MustParse(mailboxABIJSON)
	erc20ABI      = abi.MustParse(erc20ABIJSON)
)
