// Package export renders the operator-facing audit view of a project's proofs
// as flat delimited rows for offline review.
package export

import (
	"encoding/csv"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/market"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
)

// Header is the fixed column schema of the audit export. Order matters:
// downstream spreadsheets key on position, not name.
var Header = []string{
	"Order ID",
	"Status",
	"Validation Status",
	"Seller",
	"Buyer",
	"Amount",
	"Unit Price",
	"Total Value",
	"Proof reference",
	"Expected evidence source",
	"Reference matches expected source",
	"Resolution succeeded",
	"Resolved tx hash",
	"Resolved from",
	"Resolved to",
	"Resolved asset",
	"Resolved amount",
	"Validation errors",
	"Accepted",
	"Accepted at",
	"Settlement deadline",
}

// Row is one proof's flat audit record.
type Row struct {
	cells []string
}

// BuildRows assembles the audit rows for one project, ordered by order id.
func BuildRows(snap *ledger.Snapshot, project ledger.ProjectID, verdicts map[int64]proof.Verdict, explorer *url.URL) []Row {
	state := snap.States[project]

	orders := snap.ProjectOrders(project)
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })

	var rows []Row
	for _, o := range orders {
		p, ok := snap.Proofs[o.ID]
		if !ok || p.Reference == "" {
			continue
		}
		v := verdicts[o.ID]
		rows = append(rows, buildRow(o, p, v, state, explorer))
	}
	return rows
}

func buildRow(o ledger.Order, p ledger.Proof, v proof.Verdict, state *ledger.SettlementState, explorer *url.URL) Row {
	resolution := "not-applicable"
	if v.Resolved != nil {
		resolution = yesNo(*v.Resolved)
	}

	var txHash, txFrom, txTo, txAsset, txAmount string
	if v.Tx != nil {
		txHash = v.Tx.Hash.Hex()
		txFrom = v.Tx.From.Hex()
		txTo = v.Tx.To.Hex()
		txAsset = v.Tx.Asset.Hex()
		if v.Tx.Amount != nil {
			txAmount = v.Tx.Amount.String()
		}
	}

	var deadline string
	if state != nil {
		deadline = state.Deadline.UTC().Format(time.RFC3339)
	}
	var acceptedAt string
	if p.Accepted {
		acceptedAt = p.AcceptedAt.UTC().Format(time.RFC3339)
	}

	return Row{cells: []string{
		strconv.FormatInt(o.ID, 10),
		o.Status.String(),
		string(v.Status),
		o.Seller.Hex(),
		o.Buyer.Hex(),
		market.Amount(o).String(),
		market.Price(o).String(),
		market.Value(o).String(),
		p.Reference,
		explorer.String(),
		yesNo(v.HostMatch),
		resolution,
		txHash,
		txFrom,
		txTo,
		txAsset,
		txAmount,
		strings.Join(v.Errors, "; "),
		yesNo(p.Accepted),
		acceptedAt,
		deadline,
	}}
}

// WriteCSV emits the rows as comma-delimited text, header first.
func WriteCSV(w io.Writer, rows []Row) error {
	return write(csv.NewWriter(w), rows)
}

// WriteTSV is the secondary, spreadsheet-friendly rendition of the same rows.
func WriteTSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return write(cw, rows)
}

func write(cw *csv.Writer, rows []Row) error {
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
