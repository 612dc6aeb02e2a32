package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"
)

var (
	RtyAttNum = uint(5)
	RtyAtt    = retry.Attempts(RtyAttNum)
	RtyDel    = retry.Delay(time.Millisecond * 400)
	RtyErr    = retry.LastErrorOnly(true)
)

// IsAlreadyKnown reports whether a broadcast error only indicates the mempool
// has seen the exact transaction before. Rebroadcasts hit this on every
// resubmission race and are safe to ignore.
func IsAlreadyKnown(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already known")
}

// IsNonceTooLow reports whether a broadcast was rejected because the nonce is
// already used up. During a resubmission this means a prior attempt at the
// same nonce has been mined.
func IsNonceTooLow(err error) bool {
	return err != nil && strings.Contains(err.Error(), "nonce too low")
}

var _ Wallet = (*EthWallet)(nil)

// EthWallet signs with a plain ECDSA key and broadcasts through an Ethereum
// RPC client.
type EthWallet struct {
	client  EthClient
	key     *ecdsa.PrivateKey
	address common.Address
	signer  ethtypes.Signer
	logger  *zap.Logger
}

func NewEthWallet(ctx context.Context, client EthClient, hexKey string, logger *zap.Logger) (*EthWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid submitter private key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query the chain id: %w", err)
	}

	return &EthWallet{
		client:  client,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		signer:  ethtypes.LatestSignerForChainID(chainID),
		logger:  logger,
	}, nil
}

func (w *EthWallet) Address() common.Address {
	return w.address
}

func (w *EthWallet) PendingNonce(ctx context.Context) (uint64, error) {
	var nonce uint64
	if err := retry.Do(func() error {
		var err error
		nonce, err = w.client.PendingNonceAt(ctx, w.address)

		return err
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		w.logger.Debug(
			"failed to query the pending nonce",
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return 0, fmt.Errorf("failed to query the pending nonce: %w", err)
	}

	return nonce, nil
}

func (w *EthWallet) LatestNonce(ctx context.Context) (uint64, error) {
	var nonce uint64
	if err := retry.Do(func() error {
		var err error
		nonce, err = w.client.NonceAt(ctx, w.address, nil)

		return err
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		w.logger.Debug(
			"failed to query the latest nonce",
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return 0, fmt.Errorf("failed to query the latest nonce: %w", err)
	}

	return nonce, nil
}

func (w *EthWallet) SelfTransfer(ctx context.Context, nonce uint64) (*ethtypes.Transaction, error) {
	gasPrice, err := w.suggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &w.address,
		Value:    new(big.Int),
		Gas:      params.TxGas,
		GasPrice: gasPrice,
	})

	return w.SignTx(tx)
}

func (w *EthWallet) CalldataTx(ctx context.Context, nonce uint64, to common.Address, data []byte) (*ethtypes.Transaction, error) {
	gasPrice, err := w.suggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gas, err := w.client.EstimateGas(ctx, ethereum.CallMsg{
		From: w.address,
		To:   &to,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas for the batch transaction: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	return w.SignTx(tx)
}

func (w *EthWallet) SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	signed, err := ethtypes.SignTx(tx, w.signer, w.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction at nonce %d: %w", tx.Nonce(), err)
	}

	return signed, nil
}

func (w *EthWallet) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if err := retry.Do(func() error {
		err := w.client.SendTransaction(ctx, tx)
		if IsAlreadyKnown(err) {
			// the mempool already holds this exact transaction
			return nil
		}

		return err
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr, retry.OnRetry(func(n uint, err error) {
		w.logger.Debug(
			"failed to broadcast the transaction",
			zap.String("tx_hash", tx.Hash().Hex()),
			zap.Uint("attempt", n+1),
			zap.Uint("max_attempts", RtyAttNum),
			zap.Error(err),
		)
	})); err != nil {
		return fmt.Errorf("failed to broadcast transaction %s: %w", tx.Hash().Hex(), err)
	}

	return nil
}

func (w *EthWallet) suggestGasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice *big.Int
	if err := retry.Do(func() error {
		var err error
		gasPrice, err = w.client.SuggestGasPrice(ctx)

		return err
	}, retry.Context(ctx), RtyAtt, RtyDel, RtyErr); err != nil {
		return nil, fmt.Errorf("failed to query the suggested gas price: %w", err)
	}

	return gasPrice, nil
}
