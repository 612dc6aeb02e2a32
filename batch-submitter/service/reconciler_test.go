package service_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/orbitrollup/batch-submitter/batch-submitter/service"
	"github.com/orbitrollup/batch-submitter/chain"
	"github.com/orbitrollup/batch-submitter/metrics"
	"github.com/orbitrollup/batch-submitter/testutil"
	"github.com/orbitrollup/batch-submitter/testutil/mocks"
)

const testNumConfirmations = uint64(3)

// reconciliation uses a fixed 60s resubmission timeout, not the
// configured batch timeout
const clearTimeout = 60 * time.Second

func newReconciler(wallet chain.Wallet, waiter chain.ConfirmationWaiter, t *testing.T) *service.NonceReconciler {
	return service.NewNonceReconciler(
		wallet, waiter, testNumConfirmations, metrics.NewSubmitterMetrics(), testutil.GetTestLogger(t),
	)
}

// FuzzReconcileClearsNonceGap checks that every nonce in the
// [latest, pending) window is cleared in ascending order with a
// zero-value self-transfer that is awaited before the next one.
func FuzzReconcileClearsNonceGap(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))
		ctl := gomock.NewController(t)

		latest := r.Uint64() % 1000
		gap := r.Uint64() % 6
		pending := latest + gap

		addr := testutil.GenRandomAddress(r)
		mockWallet := mocks.NewMockWallet(ctl)
		mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

		mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(latest, nil)
		mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(pending, nil)

		calls := make([]any, 0, gap*3)
		for nonce := latest; nonce < pending; nonce++ {
			tx := testutil.GenSelfTransferTx(addr, nonce, 1000)
			calls = append(calls,
				mockWallet.EXPECT().SelfTransfer(gomock.Any(), nonce).Return(tx, nil),
				mockWallet.EXPECT().SendTransaction(gomock.Any(), tx).Return(nil),
				mockWaiter.EXPECT().
					AwaitWithResubmission(gomock.Any(), tx, nil, testNumConfirmations, clearTimeout).
					Return(testutil.GenReceipt(tx, 100), nil),
			)
		}
		gomock.InOrder(calls...)

		reconciler := newReconciler(mockWallet, mockWaiter, t)
		require.NoError(t, reconciler.Reconcile(context.Background()))
	})
}

func TestReconcileNoGapIsNoOp(t *testing.T) {
	ctl := gomock.NewController(t)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(42), nil)
	mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(42), nil)

	reconciler := newReconciler(mockWallet, mockWaiter, t)
	require.NoError(t, reconciler.Reconcile(context.Background()))
}

func TestReconcileInvertedWindow(t *testing.T) {
	ctl := gomock.NewController(t)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(10), nil)
	mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(8), nil)

	reconciler := newReconciler(mockWallet, mockWaiter, t)
	require.ErrorIs(t, reconciler.Reconcile(context.Background()), service.ErrNonceWindowInverted)
}

// TestReconcileAbortsOnFailure checks that a clearing failure surfaces
// to the caller without any later nonce being touched.
func TestReconcileAbortsOnFailure(t *testing.T) {
	ctl := gomock.NewController(t)

	r := rand.New(rand.NewSource(10))
	addr := testutil.GenRandomAddress(r)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(5), nil)
	mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(8), nil)

	tx5 := testutil.GenSelfTransferTx(addr, 5, 1000)
	tx6 := testutil.GenSelfTransferTx(addr, 6, 1000)
	awaitErr := errors.New("rpc provider unreachable")

	gomock.InOrder(
		mockWallet.EXPECT().SelfTransfer(gomock.Any(), uint64(5)).Return(tx5, nil),
		mockWallet.EXPECT().SendTransaction(gomock.Any(), tx5).Return(nil),
		mockWaiter.EXPECT().
			AwaitWithResubmission(gomock.Any(), tx5, nil, testNumConfirmations, clearTimeout).
			Return(testutil.GenReceipt(tx5, 100), nil),
		mockWallet.EXPECT().SelfTransfer(gomock.Any(), uint64(6)).Return(tx6, nil),
		mockWallet.EXPECT().SendTransaction(gomock.Any(), tx6).Return(nil),
		mockWaiter.EXPECT().
			AwaitWithResubmission(gomock.Any(), tx6, nil, testNumConfirmations, clearTimeout).
			Return(nil, awaitErr),
	)

	reconciler := newReconciler(mockWallet, mockWaiter, t)
	err := reconciler.Reconcile(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, awaitErr)
	require.ErrorContains(t, err, "failed to clear nonce 6")
}
