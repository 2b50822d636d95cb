package proof

import (
	"context"
	"math/big"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var (
	seller = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyer  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	asset  = common.HexToAddress("0x4444444444444444444444444444444444444444")

	txHash = "0xabcd567890123456789012345678901234567890123456789012345678901234"
)

type stubReader struct {
	tx    *TxDetails
	err   error
	calls int
}

func (s *stubReader) TransactionTransfer(_ context.Context, hash common.Hash) (*TxDetails, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	tx := *s.tx
	tx.Hash = hash
	return &tx, nil
}

func explorer(t *testing.T) *url.URL {
	u, err := url.Parse("https://scan.example.org")
	require.NoError(t, err)
	return u
}

func validTx() *TxDetails {
	return &TxDetails{From: seller, To: buyer, Asset: asset, Amount: big.NewInt(120)}
}

func expected() Expected {
	return Expected{Seller: seller, Buyer: buyer, Asset: asset, Amount: big.NewInt(120)}
}

func newValidator(r TxReader) *Validator {
	return NewValidator(logan.New(), r)
}

func TestValidate_Approved(t *testing.T) {
	reader := &stubReader{tx: validTx()}
	v := newValidator(reader)

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusApproved, verdict.Status)
	assert.Empty(t, verdict.Errors)
	assert.True(t, verdict.HostMatch)
	require.NotNil(t, verdict.Resolved)
	assert.True(t, *verdict.Resolved)
	require.NotNil(t, verdict.Tx)
	assert.Equal(t, common.HexToHash(txHash), verdict.Tx.Hash)
}

func TestValidate_UnparseableReference(t *testing.T) {
	reader := &stubReader{tx: validTx()}
	v := newValidator(reader)

	for _, ref := range []string{"", "not a url", "ftp://scan.example.org/tx/" + txHash} {
		verdict := v.Validate(context.Background(), 7, ref, explorer(t), expected())
		assert.Equal(t, StatusManualReview, verdict.Status, "ref=%q", ref)
		assert.NotEmpty(t, verdict.Errors)
	}
	assert.Zero(t, reader.calls, "structural failures never attempt resolution")
}

func TestValidate_WrongHost(t *testing.T) {
	reader := &stubReader{tx: validTx()}
	v := newValidator(reader)

	verdict := v.Validate(context.Background(), 7, "https://evil.example.com/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusNotApproved, verdict.Status)
	assert.False(t, verdict.HostMatch)
	assert.Nil(t, verdict.Resolved, "resolution is not attempted for a wrong host")
	require.Len(t, verdict.Errors, 1)
	assert.Contains(t, verdict.Errors[0], "scan.example.org")
	assert.Contains(t, verdict.Errors[0], "evil.example.com")
	assert.Zero(t, reader.calls)
}

func TestValidate_MissingHash(t *testing.T) {
	v := newValidator(&stubReader{tx: validTx()})

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/address/0xdeadbeef", explorer(t), expected())
	assert.Equal(t, StatusManualReview, verdict.Status)
}

func TestValidate_ResolutionFailure(t *testing.T) {
	v := newValidator(&stubReader{err: errors.New("not found")})

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusManualReview, verdict.Status)
	assert.Contains(t, verdict.Errors, "could not resolve reference")
	require.NotNil(t, verdict.Resolved)
	assert.False(t, *verdict.Resolved)
	assert.Nil(t, verdict.Tx)
}

func TestValidate_FromMismatch(t *testing.T) {
	tx := validTx()
	tx.From = common.HexToAddress("0x9999999999999999999999999999999999999999")
	v := newValidator(&stubReader{tx: tx})

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusNotApproved, verdict.Status)
	require.Len(t, verdict.Errors, 1)
	assert.Contains(t, verdict.Errors[0], "from:")
	assert.Contains(t, verdict.Errors[0], seller.Hex())
}

func TestValidate_MismatchesAreItemized(t *testing.T) {
	tx := &TxDetails{
		From:   common.HexToAddress("0x9999999999999999999999999999999999999999"),
		To:     common.HexToAddress("0x8888888888888888888888888888888888888888"),
		Asset:  common.HexToAddress("0x7777777777777777777777777777777777777777"),
		Amount: big.NewInt(119),
	}
	v := newValidator(&stubReader{tx: tx})

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusNotApproved, verdict.Status)
	require.Len(t, verdict.Errors, 4)
	assert.Contains(t, verdict.Errors[0], "from:")
	assert.Contains(t, verdict.Errors[1], "to:")
	assert.Contains(t, verdict.Errors[2], "asset:")
	assert.Contains(t, verdict.Errors[3], "amount:")
}

func TestValidate_NoTransferInTransaction(t *testing.T) {
	v := newValidator(&stubReader{err: ErrNoTransfer})

	verdict := v.Validate(context.Background(), 7, "https://scan.example.org/tx/"+txHash, explorer(t), expected())

	assert.Equal(t, StatusNotApproved, verdict.Status)
	require.Len(t, verdict.Errors, 1)
	assert.Contains(t, verdict.Errors[0], "asset:")
}

func TestValidate_Rerunnable(t *testing.T) {
	reader := &stubReader{tx: validTx()}
	v := newValidator(reader)

	ref := "https://scan.example.org/tx/" + txHash
	first := v.Validate(context.Background(), 7, ref, explorer(t), expected())
	second := v.Validate(context.Background(), 7, ref, explorer(t), expected())

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Errors, second.Errors)
	assert.Equal(t, 2, reader.calls, "each run issues exactly one read")
}
