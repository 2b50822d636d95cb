// Package proof validates off-chain delivery evidence submitted for
// points-path orders against the expected transfer parameters.
package proof

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gitlab.com/distributed_lab/logan/v3"
)

// Status is the validation verdict of one proof.
type Status string

const (
	StatusApproved     Status = "APPROVED"
	StatusNotApproved  Status = "NOT_APPROVED"
	StatusManualReview Status = "MANUAL_REVIEW"
)

// TxDetails is the resolved transfer referenced by a proof.
type TxDetails struct {
	Hash   common.Hash
	From   common.Address
	To     common.Address
	Asset  common.Address
	Amount *big.Int
}

// Expected are the transfer parameters a valid proof must match. Amount is
// denominated in the settlement asset; for points projects the caller converts
// the points amount before validation.
type Expected struct {
	Seller common.Address
	Buyer  common.Address
	Asset  common.Address
	Amount *big.Int
}

// Verdict is a derived, non-persisted value; it is recomputed whenever the
// proof or the expected parameters change.
type Verdict struct {
	OrderID   int64
	Status    Status
	Errors    []string
	HostMatch bool
	// Resolved is nil when resolution was never attempted (structural failure).
	Resolved *bool
	Tx       *TxDetails
}

// TxReader resolves a referenced transaction into its transfer details.
// Implementations return ErrNoTransfer unwrapped when the transaction exists
// but carries no token transfer.
type TxReader interface {
	TransactionTransfer(ctx context.Context, hash common.Hash) (*TxDetails, error)
}

type Validator struct {
	log    *logan.Entry
	reader TxReader
}

func NewValidator(log *logan.Entry, reader TxReader) *Validator {
	return &Validator{log: log.WithField("who", "proof-validator"), reader: reader}
}

var txHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Validate checks one proof reference against the expected transfer. Safe to
// re-run on every refresh cycle; the single external read goes through the
// injected TxReader.
func (v *Validator) Validate(ctx context.Context, orderID int64, reference string, explorer *url.URL, exp Expected) Verdict {
	verdict := Verdict{OrderID: orderID}

	ref, err := url.Parse(strings.TrimSpace(reference))
	if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
		verdict.Status = StatusManualReview
		verdict.Errors = append(verdict.Errors, "proof reference is not a valid URL")
		return verdict
	}

	if !strings.EqualFold(ref.Hostname(), explorer.Hostname()) {
		verdict.Status = StatusNotApproved
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("evidence source: expected host %q, found %q", explorer.Hostname(), ref.Hostname()))
		return verdict
	}
	verdict.HostMatch = true

	hash, ok := extractTxHash(ref)
	if !ok {
		verdict.Status = StatusManualReview
		verdict.Errors = append(verdict.Errors, "reference does not contain a recognizable transaction hash")
		return verdict
	}

	resolved := false
	verdict.Resolved = &resolved

	tx, err := v.reader.TransactionTransfer(ctx, hash)
	if err == ErrNoTransfer {
		verdict.Status = StatusNotApproved
		verdict.Errors = append(verdict.Errors, "asset: no token transfer found in referenced transaction")
		return verdict
	}
	if err != nil {
		v.log.WithError(err).WithField("order_id", orderID).Debug("proof reference resolution failed")
		verdict.Status = StatusManualReview
		verdict.Errors = append(verdict.Errors, "could not resolve reference")
		return verdict
	}
	resolved = true
	verdict.Tx = tx

	if tx.From != exp.Seller {
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("from: expected %s, found %s", exp.Seller.Hex(), tx.From.Hex()))
	}
	if tx.To != exp.Buyer {
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("to: expected %s, found %s", exp.Buyer.Hex(), tx.To.Hex()))
	}
	if tx.Asset != exp.Asset {
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("asset: expected %s, found %s", exp.Asset.Hex(), tx.Asset.Hex()))
	}
	if exp.Amount == nil || tx.Amount == nil || tx.Amount.Cmp(exp.Amount) != 0 {
		verdict.Errors = append(verdict.Errors,
			fmt.Sprintf("amount: expected %s, found %s", bigString(exp.Amount), bigString(tx.Amount)))
	}

	if len(verdict.Errors) == 0 {
		verdict.Status = StatusApproved
	} else {
		verdict.Status = StatusNotApproved
	}
	return verdict
}

// extractTxHash pulls the transaction hash out of an explorer URL of the
// /tx/{hash} shape; the hash is expected in the last path segment.
func extractTxHash(ref *url.URL) (common.Hash, bool) {
	path := strings.TrimRight(ref.Path, "/")
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return common.Hash{}, false
	}
	segment := path[idx+1:]
	if !txHashRe.MatchString(segment) {
		return common.Hash{}, false
	}
	return common.HexToHash(segment), true
}

func bigString(n *big.Int) string {
	if n == nil {
		return "<none>"
	}
	return n.String()
}
