package service_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/mock/gomock"

	"github.com/orbitrollup/batch-submitter/batch-submitter/config"
	"github.com/orbitrollup/batch-submitter/batch-submitter/service"
	"github.com/orbitrollup/batch-submitter/metrics"
	"github.com/orbitrollup/batch-submitter/testutil"
	"github.com/orbitrollup/batch-submitter/testutil/mocks"
	"github.com/orbitrollup/batch-submitter/types"
)

func testConfig(clearPendingTxs bool) *config.Config {
	cfg := config.DefaultConfig()
	cfg.PollInterval = testPollInterval
	cfg.ClearPendingTxs = clearPendingTxs
	cfg.Metrics.UpdateInterval = time.Minute

	return &cfg
}

// TestAppFatalReconciliation checks that a reconciliation failure aborts
// startup before any submission loop runs.
func TestAppFatalReconciliation(t *testing.T) {
	ctl := gomock.NewController(t)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)
	nonceErr := errors.New("rpc provider unreachable")
	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(0), nonceErr)

	// no expectations, the loops must never be scheduled
	txSubmitter := mocks.NewMockSubmitter(ctl)
	stateSubmitter := mocks.NewMockSubmitter(ctl)

	app := service.NewBatchSubmitterApp(
		testConfig(true),
		mockWallet,
		mockWaiter,
		[]types.SubmitterBinding{
			{Role: types.RoleTxBatch, Submitter: txSubmitter, Enabled: true},
			{Role: types.RoleStateBatch, Submitter: stateSubmitter, Enabled: true},
		},
		metrics.NewSubmitterMetrics(),
		testutil.GetTestLogger(t),
	)

	err := app.Start(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, nonceErr)
}

// TestAppSkipsReconciliationWhenDisabled checks that the submission
// loops start without any nonce clearing when clearing is turned off.
func TestAppSkipsReconciliationWhenDisabled(t *testing.T) {
	ctl := gomock.NewController(t)

	r := rand.New(rand.NewSource(30))
	tx := testutil.GenSelfTransferTx(testutil.GenRandomAddress(r), 1, 1000)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)

	// the metrics update loop may observe nonces at any time
	mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(1), nil).AnyTimes()
	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(1), nil).AnyTimes()

	txCalls := atomic.NewInt64(0)
	txSubmitter := mocks.NewMockSubmitter(ctl)
	txSubmitter.EXPECT().SubmitNextBatch(gomock.Any()).
		DoAndReturn(func(_ context.Context) (*ethtypes.Receipt, error) {
			txCalls.Inc()

			return testutil.GenReceipt(tx, 100), nil
		}).AnyTimes()

	app := service.NewBatchSubmitterApp(
		testConfig(false),
		mockWallet,
		mockWaiter,
		[]types.SubmitterBinding{
			{Role: types.RoleTxBatch, Submitter: txSubmitter, Enabled: true},
			{Role: types.RoleStateBatch, Enabled: false},
		},
		metrics.NewSubmitterMetrics(),
		testutil.GetTestLogger(t),
	)

	require.NoError(t, app.Start(context.Background()))
	defer app.Stop()

	waitForCount(t, txCalls, 2)
}

// TestAppStartStopIdempotent checks that repeated Start and Stop calls
// are safe.
func TestAppStartStopIdempotent(t *testing.T) {
	ctl := gomock.NewController(t)

	mockWallet := mocks.NewMockWallet(ctl)
	mockWaiter := mocks.NewMockConfirmationWaiter(ctl)
	mockWallet.EXPECT().PendingNonce(gomock.Any()).Return(uint64(0), nil).AnyTimes()
	mockWallet.EXPECT().LatestNonce(gomock.Any()).Return(uint64(0), nil).AnyTimes()

	app := service.NewBatchSubmitterApp(
		testConfig(false),
		mockWallet,
		mockWaiter,
		nil,
		metrics.NewSubmitterMetrics(),
		testutil.GetTestLogger(t),
	)

	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Start(context.Background()))
	app.Stop()
	app.Stop()
}
