package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// EthClient is the subset of an Ethereum RPC client the daemon depends on.
// *ethclient.Client satisfies it.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

// Wallet is the signing account shared by the nonce reconciler and the
// submission loops. Implementations must be safe for concurrent use as both
// submission loops broadcast through the same wallet.
type Wallet interface {
	// Address returns the account address transactions are signed with.
	Address() common.Address

	// PendingNonce returns the account's transaction count including
	// transactions still waiting in the mempool.
	PendingNonce(ctx context.Context) (uint64, error)

	// LatestNonce returns the account's transaction count as of the latest
	// mined block.
	LatestNonce(ctx context.Context) (uint64, error)

	// SelfTransfer builds and signs a zero-value transfer to the wallet's own
	// address at the given nonce. The transaction is not broadcast.
	SelfTransfer(ctx context.Context, nonce uint64) (*ethtypes.Transaction, error)

	// CalldataTx builds and signs a transaction carrying the given payload to
	// the given contract at the given nonce. The transaction is not broadcast.
	CalldataTx(ctx context.Context, nonce uint64, to common.Address, data []byte) (*ethtypes.Transaction, error)

	// SignTx signs the given transaction with the wallet key.
	SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error)

	// SendTransaction broadcasts a signed transaction. Rebroadcasting a
	// transaction the mempool already knows is not an error.
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// ConfirmationWaiter blocks until a submitted transaction reaches the
// required confirmation depth. Whenever the resubmission timeout elapses
// without confirmation it broadcasts a replacement at the same nonce with a
// bumped fee and keeps waiting, so only unrecoverable broadcast or provider
// errors surface to the caller. At most one transaction per nonce is ever
// current; a confirmed prior attempt satisfies the wait as well.
type ConfirmationWaiter interface {
	AwaitWithResubmission(
		ctx context.Context,
		tx *ethtypes.Transaction,
		prior []*ethtypes.Transaction,
		numConfirmations uint64,
		resubmissionTimeout time.Duration,
	) (*ethtypes.Receipt, error)
}
