package config

import (
	"math"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/premarket-labs/otc-coordinator-svc/internal/gobind"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Network struct {
	*gobind.Escrow
	EthClient       *ethclient.Client
	ContractAddress common.Address
	ChainID         *big.Int
	Signer          *bind.TransactOpts

	RequestTimeout time.Duration
	CycleTimeout   time.Duration
	RefreshPeriod  time.Duration
	PollPeriod     time.Duration
	Workers        int

	// DefaultExplorer seeds a review session's evidence source until the admin
	// picks one at TGE activation.
	DefaultExplorer *url.URL
}

const defaultRequestTimeout = 10 * time.Second
const defaultCycleTimeout = 30 * time.Second
const defaultRefreshPeriod = 30 * time.Second
const defaultPollPeriod = 5 * time.Second
const defaultWorkers = 8
const maxChainID int64 = math.MaxUint64/2 - 36

func (c *config) Network() Network {
	return c.networkOnce.Do(func() interface{} {
		var cfg struct {
			RPC            string         `fig:"rpc,required"`
			Contract       common.Address `fig:"contract,required"`
			ChainID        int64          `fig:"chain_id,required"`
			AdminKey       string         `fig:"admin_key,required"`
			Explorer       *url.URL       `fig:"explorer,required"`
			RequestTimeout time.Duration  `fig:"request_timeout"`
			CycleTimeout   time.Duration  `fig:"cycle_timeout"`
			RefreshPeriod  time.Duration  `fig:"refresh_period"`
			PollPeriod     time.Duration  `fig:"poll_period"`
			Workers        int            `fig:"workers"`
		}

		err := figure.Out(&cfg).
			With(figure.BaseHooks, figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "network")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out network"))
		}

		if cfg.ChainID > maxChainID || cfg.ChainID <= 0 {
			panic("chain_id value out of range due to EIP 2294")
		}
		cli, err := ethclient.Dial(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to RPC provider"))
		}
		escrow, err := gobind.NewEscrow(cfg.Contract, cli)
		if err != nil {
			panic(errors.Wrap(err, "failed to create escrow contract binding"))
		}

		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.AdminKey, "0x"))
		if err != nil {
			panic(errors.Wrap(err, "failed to parse admin key"))
		}
		chainID := big.NewInt(cfg.ChainID)
		signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			panic(errors.Wrap(err, "failed to create transactor"))
		}

		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}
		if cfg.CycleTimeout == 0 {
			cfg.CycleTimeout = defaultCycleTimeout
		}
		if cfg.RefreshPeriod == 0 {
			cfg.RefreshPeriod = defaultRefreshPeriod
		}
		if cfg.PollPeriod == 0 {
			cfg.PollPeriod = defaultPollPeriod
		}
		if cfg.Workers <= 0 {
			cfg.Workers = defaultWorkers
		}

		return Network{
			Escrow:          escrow,
			EthClient:       cli,
			ContractAddress: cfg.Contract,
			ChainID:         chainID,
			Signer:          signer,
			RequestTimeout:  cfg.RequestTimeout,
			CycleTimeout:    cfg.CycleTimeout,
			RefreshPeriod:   cfg.RefreshPeriod,
			PollPeriod:      cfg.PollPeriod,
			Workers:         cfg.Workers,
			DefaultExplorer: cfg.Explorer,
		}
	}).(Network)
}
