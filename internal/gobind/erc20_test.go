package gobind

import (
	"context"
	"math/big"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

// fakeERC20Node answers the two view calls the binding issues and verifies the
// arguments arrive ABI-encoded as sent.
type fakeERC20Node struct {
	t   *testing.T
	abi abi.ABI

	owner, spender     common.Address
	allowance, balance *big.Int
}

func (f *fakeERC20Node) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func (f *fakeERC20Node) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := f.abi.MethodById(msg.Data[:4])
	require.NoError(f.t, err)
	args, err := method.Inputs.Unpack(msg.Data[4:])
	require.NoError(f.t, err)

	switch method.Name {
	case "allowance":
		require.Equal(f.t, f.owner, args[0].(common.Address))
		require.Equal(f.t, f.spender, args[1].(common.Address))
		return method.Outputs.Pack(f.allowance)
	case "balanceOf":
		require.Equal(f.t, f.owner, args[0].(common.Address))
		return method.Outputs.Pack(f.balance)
	}
	return nil, errors.New("unexpected call to " + method.Name)
}

func TestERC20Caller_Reads(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(ERC20MetaData.ABI))
	require.NoError(t, err)

	node := &fakeERC20Node{
		t:         t,
		abi:       parsed,
		owner:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		spender:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
		allowance: big.NewInt(777),
		balance:   big.NewInt(42),
	}
	erc20, err := NewERC20Caller(common.HexToAddress("0x05"), node)
	require.NoError(t, err)

	opts := &bind.CallOpts{Context: context.Background()}
	allowance, err := erc20.Allowance(opts, node.owner, node.spender)
	require.NoError(t, err)
	assert.Equal(t, int64(777), allowance.Int64())

	balance, err := erc20.BalanceOf(opts, node.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
}
