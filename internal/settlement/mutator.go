package settlement

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// EscrowMutator signs and submits review mutations through the escrow binding.
type EscrowMutator struct {
	escrow *gobind.Escrow
	signer *bind.TransactOpts
}

func NewEscrowMutator(escrow *gobind.Escrow, signer *bind.TransactOpts) *EscrowMutator {
	return &EscrowMutator{escrow: escrow, signer: signer}
}

func (m *EscrowMutator) opts(ctx context.Context) *bind.TransactOpts {
	opts := *m.signer
	opts.Context = ctx
	return &opts
}

func (m *EscrowMutator) AcceptProof(ctx context.Context, id *big.Int) (common.Hash, error) {
	tx, err := m.escrow.AcceptProof(m.opts(ctx), id)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to submit acceptProof")
	}
	return tx.Hash(), nil
}

func (m *EscrowMutator) AcceptProofBatch(ctx context.Context, ids []*big.Int) (common.Hash, error) {
	tx, err := m.escrow.AcceptProofBatch(m.opts(ctx), ids)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to submit acceptProofBatch")
	}
	return tx.Hash(), nil
}

func (m *EscrowMutator) RejectProof(ctx context.Context, id *big.Int, reason string) (common.Hash, error) {
	tx, err := m.escrow.RejectProof(m.opts(ctx), id, reason)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to submit rejectProof")
	}
	return tx.Hash(), nil
}
