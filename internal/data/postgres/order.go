package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/fatih/structs"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const ordersTable = "mirrored_orders"

type orders struct {
	db *pgdb.DB
}

func NewOrders(db *pgdb.DB) data.Orders {
	return orders{db: db}
}

func (q orders) Upsert(order data.MirrorOrder) error {
	stmt := squirrel.Insert(ordersTable).SetMap(structs.Map(order)).
		Suffix(`ON CONFLICT (order_id) DO UPDATE SET
			buyer = EXCLUDED.buyer,
			buyer_funds = EXCLUDED.buyer_funds,
			seller_collateral = EXCLUDED.seller_collateral,
			status = EXCLUDED.status`)
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to upsert mirrored order")
}
