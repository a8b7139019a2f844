package scout

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/elasticchain/scout/types"
)

// Well-known system contract addresses, labeled for readability.
var knownContracts = map[common.Address]string{
	common.HexToAddress("0x0000000000000000000000000000000000008006"): "Deployer",
	common.HexToAddress("0x0000000000000000000000000000000000010002"): "Bridgehub",
	common.HexToAddress("0x0000000000000000000000000000000000010003"): "Shared Bridge",
}

// RenderReport writes a human-readable rendering of the snapshot. It reads
// only the snapshot; no endpoint is queried again.
func RenderReport(w io.Writer, snap *types.Snapshot) {
	title := color.New(color.Bold)
	generated := time.Unix(snap.GeneratedAtUnix, 0).UTC().Format(time.RFC3339)
	title.Fprintf(w, "===== Elastic chain scan — %s (%s) =====\n\n", snap.Network, generated)

	renderSequencers(w, snap)
	renderHub(w, "Bridgehub (L1)", snap.Bridgehub)
	renderHub(w, "Gateway bridgehub", snap.GatewayBridgehub)
	renderChains(w, snap)
	renderBalances(w, snap)
}

func renderSequencers(w io.Writer, snap *types.Snapshot) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Layer", "Status", "RPC", "Chain ID", "Latest Block", "Settles On"})

	for _, layer := range types.AllLayers() {
		report, ok := snap.Sequencers[layer]
		if !ok {
			continue
		}

		status := statusCell(report.Status == types.EndpointOk, string(report.Status))
		chainID, block, parent, url := "-", "-", "-", "-"
		if seq := report.Sequencer; seq != nil {
			url = seq.RPCURL
			if seq.ChainID != nil {
				chainID = strconv.FormatUint(*seq.ChainID, 10)
			}
			if seq.LatestBlock != nil {
				block = strconv.FormatUint(*seq.LatestBlock, 10)
			}
			if seq.ParentChainID != nil {
				parent = strconv.FormatUint(*seq.ParentChainID, 10)
			}
		}
		if report.Error != "" {
			url = fmt.Sprintf("%s (%s)", url, report.Error)
		}

		table.Append([]string{string(layer), status, url, chainID, block, parent})
	}

	table.Render()
	fmt.Fprintln(w)
}

func renderHub(w io.Writer, name string, view *types.BridgeHubView) {
	if view == nil {
		return
	}

	color.New(color.Bold).Fprintf(w, "%s\n", name)
	if view.Note != "" {
		fmt.Fprintf(w, "  %s\n\n", color.YellowString(view.Note))

		return
	}
	fmt.Fprintf(w, "  address: %s\n", addressLabel(view.Address))
	if view.SharedBridge != nil {
		fmt.Fprintf(w, "  shared bridge: %s\n", addressLabel(*view.SharedBridge))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chain", "Name", "STM", "State Transition", "Base Token", "Timelock"})

	for _, id := range view.RegisteredChains {
		bundle := view.Chains[id]
		row := []string{
			strconv.FormatUint(id, 10),
			chainName(id),
			optionalAddrCell(bundle.StateTransitionManager),
			optionalAddrCell(bundle.StateTransition),
			optionalAddrCell(bundle.BaseToken),
			optionalAddrCell(bundle.ValidatorTimelock),
		}
		if bundle.Error != "" {
			row[2] = color.RedString(bundle.Error)
		}
		table.Append(row)
	}

	table.Render()
	fmt.Fprintln(w)
}

func renderChains(w io.Writer, snap *types.Snapshot) {
	if len(snap.Chains) == 0 {
		return
	}

	color.New(color.Bold).Fprintln(w, "Chains")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chain", "Version", "Batches (C/V/E)", "Priority Root", "Note"})

	for _, id := range snap.ChainIDs() {
		report := snap.Chains[id]

		version, batches := "-", "-"
		if st := report.StateTransition; st != nil {
			if st.ProtocolVersion != nil {
				version = st.ProtocolVersion.String()
			}
			batches = fmt.Sprintf("%s/%s/%s",
				optionalUintCell(st.BatchesCommitted),
				optionalUintCell(st.BatchesVerified),
				optionalUintCell(st.BatchesExecuted))
		}

		table.Append([]string{
			strconv.FormatUint(id, 10),
			version,
			batches,
			statusCell(report.PriorityTreeVerified, verifiedWord(report.PriorityTreeVerified)),
			report.PriorityTreeNote,
		})
	}

	table.Render()
	fmt.Fprintln(w)
}

func renderBalances(w io.Writer, snap *types.Snapshot) {
	if len(snap.L1Balances) == 0 {
		return
	}

	color.New(color.Bold).Fprintln(w, "L1 balances")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chain", "Base Token", "Balance"})

	for _, id := range snap.ChainIDs() {
		balance, ok := snap.L1Balances[id]
		if !ok {
			continue
		}
		table.Append([]string{
			strconv.FormatUint(id, 10),
			optionalAddrCell(balance.BaseToken),
			balance.Formatted,
		})
	}

	table.Render()
	fmt.Fprintln(w)
}

func statusCell(ok bool, word string) string {
	if ok {
		return color.GreenString(word)
	}

	return color.RedString(word)
}

func verifiedWord(verified bool) string {
	if verified {
		return "verified"
	}

	return "unverified"
}

// addressLabel shortens an address and attaches the human name of well-known
// system contracts.
func addressLabel(addr common.Address) string {
	hex := addr.Hex()
	short := hex[:6] + "..." + hex[len(hex)-4:]
	if name, ok := knownContracts[addr]; ok {
		return fmt.Sprintf("%s (%s)", short, name)
	}

	return hex
}

func optionalAddrCell(addr *common.Address) string {
	if addr == nil {
		return "unassigned"
	}

	return addressLabel(*addr)
}

func optionalUintCell(n *uint64) string {
	if n == nil {
		return "?"
	}

	return strconv.FormatUint(*n, 10)
}

// chainName resolves a human name for well-known public chain ids; local
// dev chains have none.
func chainName(id uint64) string {
	name, err := chainsel.NameFromChainId(id)
	if err != nil {
		return "-"
	}

	return name
}
