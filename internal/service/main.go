package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/premarket-labs/otc-coordinator-svc/internal/config"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data"
	"github.com/premarket-labs/otc-coordinator-svc/internal/data/postgres"
	"github.com/premarket-labs/otc-coordinator-svc/internal/ledger"
	"github.com/premarket-labs/otc-coordinator-svc/internal/metadata"
	"github.com/premarket-labs/otc-coordinator-svc/internal/proof"
	"github.com/premarket-labs/otc-coordinator-svc/internal/settlement"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"gitlab.com/distributed_lab/running"
)

type service struct {
	log     *logan.Entry
	network config.Network

	mirror      *ledger.Mirror
	validator   *proof.Validator
	coordinator *settlement.Coordinator
	meta        *metadata.Client
	orders      data.Orders
	sessions    *sessionRegistry

	verdictsMu sync.RWMutex
	verdicts   map[int64]proof.Verdict
}

func newService(cfg config.Config) *service {
	log := cfg.Log()
	network := cfg.Network()
	meta := cfg.Metadata()

	mirror := ledger.NewMirror(log, network.Escrow, network.RequestTimeout, network.CycleTimeout, network.Workers)
	reader := proof.NewEthTxReader(network.EthClient, network.RequestTimeout)
	mutator := settlement.NewEscrowMutator(network.Escrow, network.Signer)
	journal := postgres.NewReviewJournal(cfg.DB())

	return &service{
		log:         log,
		network:     network,
		mirror:      mirror,
		validator:   proof.NewValidator(log, reader),
		coordinator: settlement.NewCoordinator(log, mutator, journal),
		meta:        metadata.NewClient(log, meta.Client, meta.Gateway),
		orders:      postgres.NewOrders(cfg.DB()),
		sessions:    newSessionRegistry(network.DefaultExplorer),
		verdicts:    make(map[int64]proof.Verdict),
	}
}

func (s *service) run(cfg config.Config) error {
	s.log.Info("service started")
	ctx := context.Background()

	go running.WithBackOff(ctx, s.log, "mirror-refresh",
		s.refreshOnce, s.network.RefreshPeriod, s.network.RefreshPeriod, s.network.RefreshPeriod*4)
	go running.WithBackOff(ctx, s.log, "acceptance-poll",
		s.pollOnce, s.network.PollPeriod, s.network.PollPeriod, s.network.PollPeriod*4)

	err := http.Serve(cfg.Listener(), s.router())
	return errors.Wrap(err, "api server stopped")
}

func Run(cfg config.Config) {
	if err := newService(cfg).run(cfg); err != nil {
		panic(err)
	}
}
