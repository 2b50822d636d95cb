package proof

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// ErrNoTransfer is returned unwrapped when the referenced transaction exists
// but carries no ERC-20 transfer to match against.
var ErrNoTransfer = errors.New("no token transfer found in transaction")

// keccak256("Transfer(address,address,uint256)")
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// EthTxReader resolves proof references against the ledger's read interface:
// it loads the transaction receipt and decodes the first ERC-20 Transfer log.
type EthTxReader struct {
	client  *ethclient.Client
	timeout time.Duration
}

func NewEthTxReader(client *ethclient.Client, timeout time.Duration) *EthTxReader {
	return &EthTxReader{client: client, timeout: timeout}
}

func (r *EthTxReader) TransactionTransfer(ctx context.Context, hash common.Hash) (*TxDetails, error) {
	child, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	receipt, err := r.client.TransactionReceipt(child, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction receipt")
	}

	for _, lg := range receipt.Logs {
		if len(lg.Topics) != 3 || lg.Topics[0] != transferTopic || len(lg.Data) != 32 {
			continue
		}
		return &TxDetails{
			Hash:   hash,
			From:   common.BytesToAddress(lg.Topics[1].Bytes()),
			To:     common.BytesToAddress(lg.Topics[2].Bytes()),
			Asset:  lg.Address,
			Amount: new(big.Int).SetBytes(lg.Data),
		}, nil
	}

	return nil, ErrNoTransfer
}
