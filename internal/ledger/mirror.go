package ledger

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
	"golang.org/x/sync/errgroup"
)

// Mirror keeps an eventually-consistent typed snapshot of the escrow contract.
// A refresh fans out one read per order and per project, bounded by a worker
// limit and raced against the cycle timeout; reads that fail or time out are
// recorded in Snapshot.Missing and omitted, the rest of the cycle proceeds.
type Mirror struct {
	log            *logan.Entry
	escrow         *gobind.Escrow
	requestTimeout time.Duration
	cycleTimeout   time.Duration
	workers        int

	mu      sync.RWMutex
	current *Snapshot

	refreshMu  sync.Mutex
	cancelPrev context.CancelFunc
}

func NewMirror(log *logan.Entry, escrow *gobind.Escrow, requestTimeout, cycleTimeout time.Duration, workers int) *Mirror {
	if workers <= 0 {
		workers = 16
	}
	return &Mirror{
		log:            log.WithField("who", "ledger-mirror"),
		escrow:         escrow,
		requestTimeout: requestTimeout,
		cycleTimeout:   cycleTimeout,
		workers:        workers,
	}
}

// Current returns the last published snapshot, nil before the first refresh.
func (m *Mirror) Current() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Refresh performs one full mirror cycle and publishes the resulting snapshot.
// Starting a new refresh cancels the one still in flight; an abandoned refresh
// never publishes. A cycle that merely ran out of time still publishes its
// partial snapshot.
func (m *Mirror) Refresh(ctx context.Context) (*Snapshot, error) {
	m.refreshMu.Lock()
	if m.cancelPrev != nil {
		m.cancelPrev()
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancelPrev = cancel
	m.refreshMu.Unlock()

	cctx, cancelCycle := context.WithTimeout(runCtx, m.cycleTimeout)
	defer cancelCycle()

	snap := &Snapshot{
		TakenAt:  time.Now().UTC(),
		Projects: make(map[ProjectID]Project),
		States:   make(map[ProjectID]*SettlementState),
		Proofs:   make(map[int64]Proof),
	}
	var snapMu sync.Mutex
	miss := func(item string, err error) {
		m.log.WithError(err).WithField("item", item).Warn("read failed, omitting item from snapshot")
		snapMu.Lock()
		snap.Missing = append(snap.Missing, item)
		snapMu.Unlock()
	}

	m.readParams(cctx, snap, miss)

	ids, err := m.projectIDs(cctx)
	if err != nil {
		miss("project_ids", err)
	}
	count, err := m.orderCount(cctx)
	if err != nil {
		// the whole order set is missing this cycle, not silently empty
		miss("orders", err)
		count = 0
	}

	g, gctx := errgroup.WithContext(cctx)
	g.SetLimit(m.workers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			m.readProject(gctx, id, snap, &snapMu, miss)
			return nil
		})
	}
	for i := int64(0); i < count; i++ {
		i := i
		g.Go(func() error {
			m.readOrder(gctx, i, snap, &snapMu, miss)
			return nil
		})
	}
	_ = g.Wait() // workers record failures instead of returning them

	if !m.publishLatest(runCtx, snap) {
		return nil, errors.Wrap(runCtx.Err(), "refresh abandoned")
	}
	return snap, nil
}

// PollAcceptance re-reads the acceptance flag of every pending proof and
// merges confirmed acceptances into the current snapshot. Much cheaper than a
// full refresh, so it can run on a short period.
func (m *Mirror) PollAcceptance(ctx context.Context) error {
	snap := m.Current()
	if snap == nil {
		return nil
	}

	pending := make([]int64, 0, len(snap.Proofs))
	for id, p := range snap.Proofs {
		if !p.Accepted {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	accepted := make(map[int64]Proof, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, id := range pending {
		id := id
		g.Go(func() error {
			opts, done := m.callOpts(gctx)
			defer done()
			ok, err := m.escrow.ProofAccepted(opts, big.NewInt(id))
			if err != nil {
				m.log.WithError(err).WithField("order_id", id).Warn("failed to poll proof acceptance")
				return nil
			}
			if !ok {
				return nil
			}
			acceptedAt, err := m.escrow.ProofAcceptedAt(opts, big.NewInt(id))
			if err != nil {
				m.log.WithError(err).WithField("order_id", id).Warn("failed to get proof acceptance time")
				return nil
			}
			p := snap.Proofs[id]
			p.Accepted = true
			p.AcceptedAt = time.Unix(acceptedAt.Int64(), 0).UTC()
			mu.Lock()
			accepted[id] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "poll abandoned")
	}
	if len(accepted) > 0 {
		m.mergeProofs(accepted)
	}
	return nil
}

// publishLatest installs the snapshot unless the refresh was cancelled.
// Cancellation by a successor happens under refreshMu, so checking the run
// context under the same lock closes the race between the check and the swap.
func (m *Mirror) publishLatest(runCtx context.Context, snap *Snapshot) bool {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	if runCtx.Err() != nil {
		return false
	}
	m.mu.Lock()
	m.current = snap
	m.mu.Unlock()
	return true
}

// mergeProofs folds freshly accepted proofs into whatever snapshot is current
// at merge time. A full refresh publishing mid-poll keeps its orders, projects
// and states; the poll contributes only the acceptance flags it confirmed.
func (m *Mirror) mergeProofs(accepted map[int64]Proof) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.current
	if cur == nil {
		return
	}
	next := *cur
	next.Proofs = make(map[int64]Proof, len(cur.Proofs))
	for id, p := range cur.Proofs {
		next.Proofs[id] = p
	}
	for id, p := range accepted {
		if _, ok := next.Proofs[id]; ok {
			next.Proofs[id] = p
		}
	}
	m.current = &next
}

func (m *Mirror) callOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	child, cancel := context.WithTimeout(ctx, m.requestTimeout)
	return &bind.CallOpts{Context: child}, cancel
}

func (m *Mirror) readParams(ctx context.Context, snap *Snapshot, miss func(string, error)) {
	opts, done := m.callOpts(ctx)
	defer done()

	paused, err := m.escrow.Paused(opts)
	if err != nil {
		miss("params", err)
		return
	}
	points, err := m.escrow.PointsAsset(opts)
	if err != nil {
		miss("params", err)
		return
	}
	settleFee, err := m.escrow.SettlementFeeBps(opts)
	if err != nil {
		miss("params", err)
		return
	}
	cancelFee, err := m.escrow.CancellationFeeBps(opts)
	if err != nil {
		miss("params", err)
		return
	}
	minValue, err := m.escrow.MinOrderValue(opts)
	if err != nil {
		miss("params", err)
		return
	}
	snap.Params = &Params{
		Paused:             paused,
		PointsAsset:        points,
		SettlementFeeBps:   settleFee.Int64(),
		CancellationFeeBps: cancelFee.Int64(),
		MinOrderValue:      minValue,
	}
}

func (m *Mirror) projectIDs(ctx context.Context) ([]ProjectID, error) {
	opts, done := m.callOpts(ctx)
	defer done()

	raw, err := m.escrow.ProjectIds(opts)
	if err != nil {
		return nil, err
	}
	ids := make([]ProjectID, len(raw))
	for i, id := range raw {
		ids[i] = id
	}
	return ids, nil
}

func (m *Mirror) orderCount(ctx context.Context) (int64, error) {
	opts, done := m.callOpts(ctx)
	defer done()

	n, err := m.escrow.OrderCount(opts)
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func (m *Mirror) readProject(ctx context.Context, id ProjectID, snap *Snapshot, snapMu *sync.Mutex, miss func(string, error)) {
	opts, done := m.callOpts(ctx)
	defer done()

	raw, err := m.escrow.Projects(opts, id)
	if err != nil {
		miss("project "+id.Hex(), err)
		return
	}
	project := decodeProject(raw)

	activated, err := m.escrow.TgeActivated(opts, id)
	if err != nil {
		miss("settlement state "+id.Hex(), err)
		activated = false // fail safe toward "not yet settleable"
	}

	var state *SettlementState
	if activated {
		state, err = m.readSettlementState(ctx, id)
		if err != nil {
			miss("settlement state "+id.Hex(), err)
			state = nil
		}
	}

	snapMu.Lock()
	snap.Projects[id] = project
	if state != nil {
		snap.States[id] = state
	}
	snapMu.Unlock()
}

func (m *Mirror) readSettlementState(ctx context.Context, id ProjectID) (*SettlementState, error) {
	opts, done := m.callOpts(ctx)
	defer done()

	deadline, err := m.escrow.SettlementDeadline(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get settlement deadline")
	}
	asset, err := m.escrow.SettlementAsset(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get settlement asset")
	}
	ratio, err := m.escrow.ConversionRatio(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get conversion ratio")
	}

	return &SettlementState{
		Project:         id,
		TGEActivated:    true,
		Deadline:        time.Unix(deadline.Int64(), 0).UTC(),
		Asset:           asset,
		ConversionRatio: ratio,
	}, nil
}

func (m *Mirror) readOrder(ctx context.Context, id int64, snap *Snapshot, snapMu *sync.Mutex, miss func(string, error)) {
	opts, done := m.callOpts(ctx)
	defer done()

	raw, err := m.escrow.Orders(opts, big.NewInt(id))
	if err != nil {
		miss("order "+big.NewInt(id).String(), err)
		return
	}
	order := decodeOrder(raw)

	var proof *Proof
	if order.Status == StatusFunded {
		proof, err = m.readProof(ctx, id)
		if err != nil {
			miss("proof "+big.NewInt(id).String(), err)
			proof = nil
		}
	}

	snapMu.Lock()
	snap.Orders = append(snap.Orders, order)
	if proof != nil {
		snap.Proofs[id] = *proof
	}
	snapMu.Unlock()
}

func (m *Mirror) readProof(ctx context.Context, orderID int64) (*Proof, error) {
	opts, done := m.callOpts(ctx)
	defer done()

	id := big.NewInt(orderID)
	ref, err := m.escrow.ProofOf(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proof reference")
	}
	if ref == "" {
		return nil, nil // nothing submitted yet
	}
	submittedAt, err := m.escrow.ProofSubmittedAt(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proof submission time")
	}
	accepted, err := m.escrow.ProofAccepted(opts, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proof acceptance flag")
	}

	p := &Proof{
		OrderID:     orderID,
		Reference:   ref,
		SubmittedAt: time.Unix(submittedAt.Int64(), 0).UTC(),
		Accepted:    accepted,
	}
	if accepted {
		acceptedAt, err := m.escrow.ProofAcceptedAt(opts, id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get proof acceptance time")
		}
		p.AcceptedAt = time.Unix(acceptedAt.Int64(), 0).UTC()
	}
	return p, nil
}
