package submitter_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/orbitrollup/batch-submitter/submitter"
	"github.com/orbitrollup/batch-submitter/testutil"
	"github.com/orbitrollup/batch-submitter/testutil/mocks"
	"github.com/orbitrollup/batch-submitter/types"
)

const (
	testNumConfirmations    = uint64(6)
	testResubmissionTimeout = time.Minute
)

func TestSubmitNextBatchNoWork(t *testing.T) {
	ctl := gomock.NewController(t)

	r := rand.New(rand.NewSource(40))
	contract := testutil.GenRandomAddress(r)

	mockSource := mocks.NewMockWorkSource(ctl)
	// no expectations on the wallet or the waiter, nothing may be sent
	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	mockSource.EXPECT().NextBatch(gomock.Any()).Return(nil, nil)

	bs := submitter.NewBatchSubmitter(
		types.RoleTxBatch, contract, mockSource, mockWallet, mockWaiter,
		testNumConfirmations, testResubmissionTimeout, testutil.GetTestLogger(t),
	)

	receipt, err := bs.SubmitNextBatch(context.Background())
	require.NoError(t, err)
	require.Nil(t, receipt)
}

func TestSubmitNextBatch(t *testing.T) {
	ctl := gomock.NewController(t)

	r := rand.New(rand.NewSource(41))
	contract := testutil.GenRandomAddress(r)
	payload := testutil.GenRandomByteArray(r, 128)
	tx := testutil.GenSelfTransferTx(contract, 9, 1000)
	receipt := testutil.GenReceipt(tx, 100)

	mockSource := mocks.NewMockWorkSource(ctl)
	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	gomock.InOrder(
		mockSource.EXPECT().NextBatch(gomock.Any()).Return(payload, nil),
		mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(9), nil),
		mockWallet.EXPECT().CalldataTx(gomock.Any(), uint64(9), contract, payload).Return(tx, nil),
		mockWallet.EXPECT().SendTransaction(gomock.Any(), tx).Return(nil),
		mockWaiter.EXPECT().
			AwaitWithResubmission(gomock.Any(), tx, nil, testNumConfirmations, testResubmissionTimeout).
			Return(receipt, nil),
	)

	bs := submitter.NewBatchSubmitter(
		types.RoleStateBatch, contract, mockSource, mockWallet, mockWaiter,
		testNumConfirmations, testResubmissionTimeout, testutil.GetTestLogger(t),
	)

	got, err := bs.SubmitNextBatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, receipt, got)
}

func TestSubmitNextBatchSourceError(t *testing.T) {
	ctl := gomock.NewController(t)

	r := rand.New(rand.NewSource(42))
	contract := testutil.GenRandomAddress(r)

	mockSource := mocks.NewMockWorkSource(ctl)
	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	sourceErr := errors.New("rollup node unreachable")
	mockSource.EXPECT().NextBatch(gomock.Any()).Return(nil, sourceErr)

	bs := submitter.NewBatchSubmitter(
		types.RoleTxBatch, contract, mockSource, mockWallet, mockWaiter,
		testNumConfirmations, testResubmissionTimeout, testutil.GetTestLogger(t),
	)

	_, err := bs.SubmitNextBatch(context.Background())
	require.ErrorIs(t, err, sourceErr)
}

func TestNewRPCWorkSourceUnknownRole(t *testing.T) {
	_, err := submitter.NewRPCWorkSource(nil, types.Role("checkpoint"))
	require.ErrorContains(t, err, "unknown submitter role")
}
