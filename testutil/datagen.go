package testutil

import (
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	newBytes := make([]byte, length)
	r.Read(newBytes)

	return newBytes
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	randBytes := GenRandomByteArray(r, length)

	return hex.EncodeToString(randBytes)
}

func GenRandomAddress(r *rand.Rand) common.Address {
	return common.BytesToAddress(GenRandomByteArray(r, common.AddressLength))
}

func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Seed based on the current time
	r := rand.New(rand.NewSource(time.Now().Unix()))
	var idx uint
	for idx = 0; idx < num; idx++ {
		f.Add(r.Int63())
	}
}

// GenSelfTransferTx builds an unsigned zero-value self-transfer at the
// given nonce, matching what the wallet produces for nonce clearing.
func GenSelfTransferTx(addr common.Address, nonce uint64, gasPrice int64) *ethtypes.Transaction {
	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &addr,
		Value:    new(big.Int),
		Gas:      params.TxGas,
		GasPrice: big.NewInt(gasPrice),
	})
}

// GenReceipt builds a successful receipt for the given transaction mined
// at the given block number.
func GenReceipt(tx *ethtypes.Transaction, blockNumber uint64) *ethtypes.Receipt {
	return &ethtypes.Receipt{
		Status:      ethtypes.ReceiptStatusSuccessful,
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(blockNumber),
		GasUsed:     tx.Gas(),
	}
}
