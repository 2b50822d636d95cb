package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/fatih/structs"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const reviewTable = "review_journal"

type journal struct {
	db *pgdb.DB
}

func NewReviewJournal(db *pgdb.DB) data.ReviewJournal {
	return journal{db: db}
}

func (q journal) Insert(entry data.ReviewEntry) error {
	stmt := squirrel.Insert(reviewTable).SetMap(structs.Map(entry))
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert review journal entry")
}
