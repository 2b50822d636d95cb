// Package gobind contains a hand-maintained binding for the PreMarket escrow
// contract. Keep the ABI below in sync with the deployed contract; the typed
// wrappers follow the abigen layout so a regenerated binding can drop in.
package gobind

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// IEscrowOrder is an auto generated low-level Go binding around an user-defined struct.
type IEscrowOrder struct {
	Id               *big.Int
	Maker            common.Address
	Buyer            common.Address
	Seller           common.Address
	ProjectId        [32]byte
	Amount           *big.Int
	UnitPrice        *big.Int
	BuyerFunds       *big.Int
	SellerCollateral *big.Int
	IsSell           bool
	AllowedTaker     common.Address
	Status           uint8
}

// IEscrowProject is an auto generated low-level Go binding around an user-defined struct.
type IEscrowProject struct {
	ProjectId   [32]byte
	Name        string
	Token       common.Address
	IsPoints    bool
	MetadataURI string
	Active      bool
	AddedAt     *big.Int
}

// EscrowMetaData contains all meta data concerning the Escrow contract.
var EscrowMetaData = &bind.MetaData{
	ABI: `[
{"type":"function","stateMutability":"view","name":"orderCount","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"orders","inputs":[{"name":"id","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"maker","type":"address"},{"name":"buyer","type":"address"},{"name":"seller","type":"address"},{"name":"projectId","type":"bytes32"},{"name":"amount","type":"uint256"},{"name":"unitPrice","type":"uint256"},{"name":"buyerFunds","type":"uint256"},{"name":"sellerCollateral","type":"uint256"},{"name":"isSell","type":"bool"},{"name":"allowedTaker","type":"address"},{"name":"status","type":"uint8"}]}]},
{"type":"function","stateMutability":"view","name":"projectIds","inputs":[],"outputs":[{"name":"","type":"bytes32[]"}]},
{"type":"function","stateMutability":"view","name":"projects","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"projectId","type":"bytes32"},{"name":"name","type":"string"},{"name":"token","type":"address"},{"name":"isPoints","type":"bool"},{"name":"metadataURI","type":"string"},{"name":"active","type":"bool"},{"name":"addedAt","type":"uint256"}]}]},
{"type":"function","stateMutability":"view","name":"projectBySlug","inputs":[{"name":"slug","type":"string"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"projectId","type":"bytes32"},{"name":"name","type":"string"},{"name":"token","type":"address"},{"name":"isPoints","type":"bool"},{"name":"metadataURI","type":"string"},{"name":"active","type":"bool"},{"name":"addedAt","type":"uint256"}]}]},
{"type":"function","stateMutability":"view","name":"tgeActivated","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","stateMutability":"view","name":"settlementDeadline","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"settlementAsset","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","stateMutability":"view","name":"conversionRatio","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"proofOf","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
{"type":"function","stateMutability":"view","name":"proofSubmittedAt","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"proofAccepted","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","stateMutability":"view","name":"proofAcceptedAt","inputs":[{"name":"orderId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"pointsAsset","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","stateMutability":"view","name":"paused","inputs":[],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","stateMutability":"view","name":"settlementFeeBps","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"cancellationFeeBps","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"view","name":"minOrderValue","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","stateMutability":"nonpayable","name":"createOrder","inputs":[{"name":"projectId","type":"bytes32"},{"name":"amount","type":"uint256"},{"name":"unitPrice","type":"uint256"},{"name":"isSell","type":"bool"},{"name":"allowedTaker","type":"address"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"lockOrder","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"cancelOrder","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"activateSettlement","inputs":[{"name":"projectId","type":"bytes32"},{"name":"asset","type":"address"},{"name":"window","type":"uint256"},{"name":"ratio","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"submitProof","inputs":[{"name":"id","type":"uint256"},{"name":"proof","type":"string"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"acceptProof","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"acceptProofBatch","inputs":[{"name":"ids","type":"uint256[]"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"rejectProof","inputs":[{"name":"id","type":"uint256"},{"name":"reason","type":"string"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"settleOrder","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"settleOrderManually","inputs":[{"name":"id","type":"uint256"}],"outputs":[]},
{"type":"function","stateMutability":"nonpayable","name":"claimDefault","inputs":[{"name":"id","type":"uint256"}],"outputs":[]}
]`,
}

// Escrow is an auto generated Go binding around an Ethereum contract.
type Escrow struct {
	EscrowCaller     // Read-only binding to the contract
	EscrowTransactor // Write-only binding to the contract
}

// EscrowCaller is an auto generated read-only Go binding around an Ethereum contract.
type EscrowCaller struct {
	contract *bind.BoundContract
}

// EscrowTransactor is an auto generated write-only Go binding around an Ethereum contract.
type EscrowTransactor struct {
	contract *bind.BoundContract
}

// NewEscrow creates a new instance of Escrow, bound to a specific deployed contract.
func NewEscrow(address common.Address, backend bind.ContractBackend) (*Escrow, error) {
	contract, err := bindEscrow(address, backend, backend)
	if err != nil {
		return nil, err
	}
	return &Escrow{EscrowCaller: EscrowCaller{contract: contract}, EscrowTransactor: EscrowTransactor{contract: contract}}, nil
}

func bindEscrow(address common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor) (*bind.BoundContract, error) {
	parsed, err := abi.JSON(strings.NewReader(EscrowMetaData.ABI))
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, parsed, caller, transactor, nil), nil
}

func (_Escrow *EscrowCaller) OrderCount(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "orderCount")
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) Orders(opts *bind.CallOpts, id *big.Int) (IEscrowOrder, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "orders", id)
	if err != nil {
		return IEscrowOrder{}, err
	}
	return *abi.ConvertType(out[0], new(IEscrowOrder)).(*IEscrowOrder), nil
}

func (_Escrow *EscrowCaller) ProjectIds(opts *bind.CallOpts) ([][32]byte, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "projectIds")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([][32]byte)).(*[][32]byte), nil
}

func (_Escrow *EscrowCaller) Projects(opts *bind.CallOpts, id [32]byte) (IEscrowProject, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "projects", id)
	if err != nil {
		return IEscrowProject{}, err
	}
	return *abi.ConvertType(out[0], new(IEscrowProject)).(*IEscrowProject), nil
}

func (_Escrow *EscrowCaller) ProjectBySlug(opts *bind.CallOpts, slug string) (IEscrowProject, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "projectBySlug", slug)
	if err != nil {
		return IEscrowProject{}, err
	}
	return *abi.ConvertType(out[0], new(IEscrowProject)).(*IEscrowProject), nil
}

func (_Escrow *EscrowCaller) TgeActivated(opts *bind.CallOpts, id [32]byte) (bool, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "tgeActivated", id)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (_Escrow *EscrowCaller) SettlementDeadline(opts *bind.CallOpts, id [32]byte) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "settlementDeadline", id)
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) SettlementAsset(opts *bind.CallOpts, id [32]byte) (common.Address, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "settlementAsset", id)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (_Escrow *EscrowCaller) ConversionRatio(opts *bind.CallOpts, id [32]byte) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "conversionRatio", id)
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) ProofOf(opts *bind.CallOpts, orderId *big.Int) (string, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "proofOf", orderId)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (_Escrow *EscrowCaller) ProofSubmittedAt(opts *bind.CallOpts, orderId *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "proofSubmittedAt", orderId)
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) ProofAccepted(opts *bind.CallOpts, orderId *big.Int) (bool, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "proofAccepted", orderId)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (_Escrow *EscrowCaller) ProofAcceptedAt(opts *bind.CallOpts, orderId *big.Int) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "proofAcceptedAt", orderId)
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// PointsAsset returns the reserved sentinel address identifying points (off-chain) assets.
func (_Escrow *EscrowCaller) PointsAsset(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "pointsAsset")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (_Escrow *EscrowCaller) Paused(opts *bind.CallOpts) (bool, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "paused")
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (_Escrow *EscrowCaller) SettlementFeeBps(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "settlementFeeBps")
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) CancellationFeeBps(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "cancellationFeeBps")
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowCaller) MinOrderValue(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	err := _Escrow.contract.Call(opts, &out, "minOrderValue")
	if err != nil {
		return new(big.Int), err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (_Escrow *EscrowTransactor) CreateOrder(opts *bind.TransactOpts, projectId [32]byte, amount, unitPrice *big.Int, isSell bool, allowedTaker common.Address) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "createOrder", projectId, amount, unitPrice, isSell, allowedTaker)
}

func (_Escrow *EscrowTransactor) LockOrder(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "lockOrder", id)
}

func (_Escrow *EscrowTransactor) CancelOrder(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "cancelOrder", id)
}

func (_Escrow *EscrowTransactor) ActivateSettlement(opts *bind.TransactOpts, projectId [32]byte, asset common.Address, window, ratio *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "activateSettlement", projectId, asset, window, ratio)
}

func (_Escrow *EscrowTransactor) SubmitProof(opts *bind.TransactOpts, id *big.Int, proof string) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "submitProof", id, proof)
}

func (_Escrow *EscrowTransactor) AcceptProof(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "acceptProof", id)
}

func (_Escrow *EscrowTransactor) AcceptProofBatch(opts *bind.TransactOpts, ids []*big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "acceptProofBatch", ids)
}

func (_Escrow *EscrowTransactor) RejectProof(opts *bind.TransactOpts, id *big.Int, reason string) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "rejectProof", id, reason)
}

func (_Escrow *EscrowTransactor) SettleOrder(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "settleOrder", id)
}

// SettleOrderManually settles a points-path order; permissionless once its proof is accepted.
func (_Escrow *EscrowTransactor) SettleOrderManually(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "settleOrderManually", id)
}

func (_Escrow *EscrowTransactor) ClaimDefault(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
	return _Escrow.contract.Transact(opts, "claimDefault", id)
}
