package ledger

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var (
	testProject  = ProjectID{0xAA}
	testAsset    = common.HexToAddress("0x4444444444444444444444444444444444444444")
	testDeadline = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	testRef      = "https://scan.example.org/tx/0xabc"
)

type callHandler func(ctx context.Context, args []interface{}) ([]interface{}, error)

// fakeBackend answers contract calls by dispatching on the decoded method
// name, so tests can prime per-method behavior without a node.
type fakeBackend struct {
	abi abi.ABI

	mu       sync.Mutex
	handlers map[string]callHandler
}

func newFakeBackend(t *testing.T) *fakeBackend {
	parsed, err := abi.JSON(strings.NewReader(gobind.EscrowMetaData.ABI))
	require.NoError(t, err)
	return &fakeBackend{abi: parsed, handlers: make(map[string]callHandler)}
}

func (b *fakeBackend) handle(name string, fn callHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = fn
}

func ret(values ...interface{}) callHandler {
	return func(context.Context, []interface{}) ([]interface{}, error) {
		return values, nil
	}
}

func (b *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := b.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	fn, ok := b.handlers[method.Name]
	b.mu.Unlock()
	if !ok {
		return nil, errors.New("unexpected call to " + method.Name)
	}
	out, err := fn(ctx, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}
func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{}, nil
}
func (b *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{1}, nil
}
func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 0, nil
}
func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}
func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}
func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}
func (b *fakeBackend) SendTransaction(context.Context, *types.Transaction) error {
	return nil
}
func (b *fakeBackend) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}
func (b *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("not supported")
}

func orderStub(id *big.Int, status OrderStatus) gobind.IEscrowOrder {
	o := gobind.IEscrowOrder{
		Id:               id,
		Maker:            common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Seller:           common.HexToAddress("0x1111111111111111111111111111111111111111"),
		ProjectId:        testProject,
		Amount:           big.NewInt(1000),
		UnitPrice:        big.NewInt(2_000_000),
		BuyerFunds:       big.NewInt(0),
		SellerCollateral: big.NewInt(0),
		IsSell:           true,
		Status:           uint8(status),
	}
	if status >= StatusFunded {
		o.Buyer = common.HexToAddress("0x2222222222222222222222222222222222222222")
		o.BuyerFunds = big.NewInt(2000)
		o.SellerCollateral = big.NewInt(2000)
	}
	return o
}

// primeLedger makes every read succeed: one activated points project and two
// orders, the second funded with a pending proof.
func primeLedger(b *fakeBackend) {
	ratio, _ := new(big.Int).SetString("1500000000000000000", 10)
	b.handle("paused", ret(false))
	b.handle("pointsAsset", ret(common.HexToAddress("0x9999999999999999999999999999999999999999")))
	b.handle("settlementFeeBps", ret(big.NewInt(100)))
	b.handle("cancellationFeeBps", ret(big.NewInt(50)))
	b.handle("minOrderValue", ret(big.NewInt(10)))
	b.handle("projectIds", ret([][32]byte{testProject}))
	b.handle("projects", ret(gobind.IEscrowProject{
		ProjectId: testProject,
		Name:      "aurora points",
		IsPoints:  true,
		Active:    true,
		AddedAt:   big.NewInt(1700000000),
	}))
	b.handle("tgeActivated", ret(true))
	b.handle("settlementDeadline", ret(big.NewInt(testDeadline.Unix())))
	b.handle("settlementAsset", ret(testAsset))
	b.handle("conversionRatio", ret(ratio))
	b.handle("orderCount", ret(big.NewInt(2)))
	b.handle("orders", func(_ context.Context, args []interface{}) ([]interface{}, error) {
		id := args[0].(*big.Int)
		status := StatusOpen
		if id.Int64() == 1 {
			status = StatusFunded
		}
		return []interface{}{orderStub(id, status)}, nil
	})
	b.handle("proofOf", ret(testRef))
	b.handle("proofSubmittedAt", ret(big.NewInt(testDeadline.Add(-time.Hour).Unix())))
	b.handle("proofAccepted", ret(false))
}

func newTestMirror(t *testing.T, b *fakeBackend) *Mirror {
	escrow, err := gobind.NewEscrow(common.HexToAddress("0x01"), b)
	require.NoError(t, err)
	return NewMirror(logan.New(), escrow, time.Minute, time.Minute, 4)
}

func TestRefresh_CollectsSnapshot(t *testing.T) {
	b := newFakeBackend(t)
	primeLedger(b)
	m := newTestMirror(t, b)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Missing)

	require.NotNil(t, snap.Params)
	assert.Equal(t, int64(100), snap.Params.SettlementFeeBps)
	assert.Equal(t, "aurora points", snap.Projects[testProject].Name)

	state := snap.States[testProject]
	require.NotNil(t, state)
	assert.True(t, state.TGEActivated)
	assert.True(t, state.Deadline.Equal(testDeadline))
	assert.Equal(t, testAsset, state.Asset)

	assert.Len(t, snap.Orders, 2)
	assert.Equal(t, testRef, snap.Proofs[1].Reference)
	assert.False(t, snap.Proofs[1].Accepted)

	assert.Same(t, snap, m.Current())
}

func TestRefresh_ReadFailureYieldsPartial(t *testing.T) {
	b := newFakeBackend(t)
	primeLedger(b)
	b.handle("orders", func(_ context.Context, args []interface{}) ([]interface{}, error) {
		id := args[0].(*big.Int)
		if id.Int64() == 0 {
			return nil, errors.New("rpc timeout")
		}
		return []interface{}{orderStub(id, StatusFunded)}, nil
	})
	m := newTestMirror(t, b)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)

	assert.Contains(t, snap.Missing, "order 0")
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, int64(1), snap.Orders[0].ID)
	assert.Contains(t, snap.Projects, testProject)
}

func TestRefresh_OrderCountFailureIsRecorded(t *testing.T) {
	b := newFakeBackend(t)
	primeLedger(b)
	b.handle("orderCount", func(context.Context, []interface{}) ([]interface{}, error) {
		return nil, errors.New("rpc down")
	})
	m := newTestMirror(t, b)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)

	// an unreadable order set is reported missing, never shown as empty
	assert.Contains(t, snap.Missing, "orders")
	assert.Empty(t, snap.Orders)
	assert.Contains(t, snap.Projects, testProject)
	assert.Same(t, snap, m.Current())
}

func TestRefresh_SupersededNeverPublishes(t *testing.T) {
	b := newFakeBackend(t)
	primeLedger(b)
	m := newTestMirror(t, b)

	var blocking atomic.Bool
	started := make(chan struct{})
	var once sync.Once
	b.handle("orders", func(ctx context.Context, args []interface{}) ([]interface{}, error) {
		if blocking.Load() {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []interface{}{orderStub(args[0].(*big.Int), StatusOpen)}, nil
	})

	blocking.Store(true)
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Refresh(context.Background())
		errCh <- err
	}()
	<-started

	blocking.Store(false)
	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)

	require.Error(t, <-errCh, "the superseded refresh reports abandonment")
	assert.Same(t, snap, m.Current(), "only the newest refresh publishes")
}

func TestPollAcceptance_MergesIntoCurrent(t *testing.T) {
	b := newFakeBackend(t)
	primeLedger(b)
	m := newTestMirror(t, b)

	stale := &Snapshot{
		TakenAt:  testDeadline,
		Projects: map[ProjectID]Project{testProject: {ID: testProject}},
		States:   map[ProjectID]*SettlementState{},
		Orders:   []Order{{ID: 1, Project: testProject, Status: StatusFunded}},
		Proofs:   map[int64]Proof{1: {OrderID: 1, Reference: testRef}},
	}
	m.mu.Lock()
	m.current = stale
	m.mu.Unlock()

	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	b.handle("proofAccepted", func(context.Context, []interface{}) ([]interface{}, error) {
		once.Do(func() { close(started) })
		<-unblock
		return []interface{}{true}, nil
	})
	acceptedAt := testDeadline.Add(time.Second)
	b.handle("proofAcceptedAt", ret(big.NewInt(acceptedAt.Unix())))

	errCh := make(chan error, 1)
	go func() { errCh <- m.PollAcceptance(context.Background()) }()
	<-started

	// a full refresh publishes while the poll is still in flight
	fresh := &Snapshot{
		TakenAt: testDeadline.Add(time.Second),
		Orders: []Order{
			{ID: 1, Project: testProject, Status: StatusFunded},
			{ID: 2, Project: testProject, Status: StatusOpen},
		},
		Proofs: map[int64]Proof{1: {OrderID: 1, Reference: testRef}},
	}
	m.mu.Lock()
	m.current = fresh
	m.mu.Unlock()

	close(unblock)
	require.NoError(t, <-errCh)

	cur := m.Current()
	assert.Len(t, cur.Orders, 2, "the poll keeps the newer refresh's order set")
	assert.True(t, cur.Proofs[1].Accepted)
	assert.True(t, cur.Proofs[1].AcceptedAt.Equal(acceptedAt))
	assert.False(t, fresh.Proofs[1].Accepted, "merge copies, never mutates a published snapshot")
	assert.False(t, stale.Proofs[1].Accepted)
}
