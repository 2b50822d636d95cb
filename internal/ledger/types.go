package ledger

import (
	"encoding/hex"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
)

// OrderStatus mirrors the escrow contract's order status enum.
type OrderStatus uint8

const (
	StatusOpen OrderStatus = iota
	StatusFunded
	StatusSettled
	StatusDefaulted
	StatusCanceled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusOpen:
		return "OPEN"
	case StatusFunded:
		return "FUNDED"
	case StatusSettled:
		return "SETTLED"
	case StatusDefaulted:
		return "DEFAULTED"
	case StatusCanceled:
		return "CANCELED"
	}
	return "UNKNOWN"
}

// Ended reports whether the order reached a terminal status.
func (s OrderStatus) Ended() bool {
	return s == StatusSettled || s == StatusDefaulted || s == StatusCanceled
}

// ProjectID is the opaque fixed-size project identifier used by the contract.
type ProjectID [32]byte

func (p ProjectID) Hex() string { return "0x" + hex.EncodeToString(p[:]) }

func ProjectIDFromHex(s string) (ProjectID, bool) {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 32 {
		return ProjectID{}, false
	}
	var p ProjectID
	copy(p[:], b)
	return p, true
}

// Order is the typed view of a contract order record. Amounts are raw
// fixed-point integers: Amount carries 18 fractional digits, UnitPrice 6.
type Order struct {
	ID               int64
	Maker            common.Address
	Buyer            common.Address
	Seller           common.Address
	Project          ProjectID
	Amount           *big.Int
	UnitPrice        *big.Int
	BuyerFunds       *big.Int
	SellerCollateral *big.Int
	IsSell           bool
	AllowedTaker     *common.Address // nil means the order is public
	Status           OrderStatus
}

// Project is the typed view of a contract project record.
type Project struct {
	ID          ProjectID
	Name        string
	Token       common.Address
	IsPoints    bool
	MetadataURI string
	Active      bool
	AddedAt     time.Time
}

// SettlementState carries the per-project TGE latch and settlement terms.
// ConversionRatio is fixed-point with 18 fractional digits.
type SettlementState struct {
	Project         ProjectID
	TGEActivated    bool
	Deadline        time.Time
	Asset           common.Address
	ConversionRatio *big.Int
}

// Proof is the submitted delivery evidence of a points-path order.
type Proof struct {
	OrderID     int64
	Reference   string
	SubmittedAt time.Time
	Accepted    bool
	AcceptedAt  time.Time
}

// Params mirrors the global contract parameters.
type Params struct {
	Paused             bool
	PointsAsset        common.Address
	SettlementFeeBps   int64
	CancellationFeeBps int64
	MinOrderValue      *big.Int
}

// Snapshot is one refresh cycle's view of the ledger. Reads that failed within
// the cycle leave their item absent (nil map entry, missing order) and are
// listed in Missing so callers can render an explicit "could not load" marker
// instead of a zero value.
type Snapshot struct {
	TakenAt  time.Time
	Params   *Params
	Projects map[ProjectID]Project
	States   map[ProjectID]*SettlementState
	Orders   []Order
	Proofs   map[int64]Proof
	Missing  []string
}

// ProjectOrders returns the snapshot's orders belonging to one project.
func (s *Snapshot) ProjectOrders(id ProjectID) []Order {
	out := make([]Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if o.Project == id {
			out = append(out, o)
		}
	}
	return out
}

// Order returns the snapshot's order with the given id, if present.
func (s *Snapshot) Order(id int64) (Order, bool) {
	for _, o := range s.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func decodeOrder(raw gobind.IEscrowOrder) Order {
	o := Order{
		ID:               raw.Id.Int64(),
		Maker:            raw.Maker,
		Buyer:            raw.Buyer,
		Seller:           raw.Seller,
		Project:          raw.ProjectId,
		Amount:           raw.Amount,
		UnitPrice:        raw.UnitPrice,
		BuyerFunds:       raw.BuyerFunds,
		SellerCollateral: raw.SellerCollateral,
		IsSell:           raw.IsSell,
		Status:           OrderStatus(raw.Status),
	}
	if raw.AllowedTaker != (common.Address{}) {
		taker := raw.AllowedTaker
		o.AllowedTaker = &taker
	}
	return o
}

func decodeProject(raw gobind.IEscrowProject) Project {
	return Project{
		ID:          raw.ProjectId,
		Name:        raw.Name,
		Token:       raw.Token,
		IsPoints:    raw.IsPoints,
		MetadataURI: raw.MetadataURI,
		Active:      raw.Active,
		AddedAt:     time.Unix(raw.AddedAt.Int64(), 0).UTC(),
	}
}
