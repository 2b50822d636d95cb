package data

// MirrorOrder is the persisted copy of one mirrored order record. Big amounts
// are stored as decimal strings, same as the raw contract values.
type MirrorOrder struct {
	OrderID          int64  `structs:"order_id" db:"order_id"`
	Project          string `structs:"project" db:"project"`
	Maker            string `structs:"maker" db:"maker"`
	Buyer            string `structs:"buyer" db:"buyer"`
	Seller           string `structs:"seller" db:"seller"`
	Amount           string `structs:"amount" db:"amount"`
	UnitPrice        string `structs:"unit_price" db:"unit_price"`
	BuyerFunds       string `structs:"buyer_funds" db:"buyer_funds"`
	SellerCollateral string `structs:"seller_collateral" db:"seller_collateral"`
	IsSell           bool   `structs:"is_sell" db:"is_sell"`
	Status           uint8  `structs:"status" db:"status"`
}

type Orders interface {
	Upsert(MirrorOrder) error
}
