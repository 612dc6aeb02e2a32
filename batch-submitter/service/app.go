package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/orbitrollup/batch-submitter/batch-submitter/config"
	"github.com/orbitrollup/batch-submitter/chain"
	"github.com/orbitrollup/batch-submitter/metrics"
	"github.com/orbitrollup/batch-submitter/submitter"
	"github.com/orbitrollup/batch-submitter/types"
)

// BatchSubmitterApp owns the lifecycle of the batch submission daemon:
// the one-shot nonce reconciliation at startup followed by the long
// running submission loops.
type BatchSubmitterApp struct {
	startOnce sync.Once
	stopOnce  sync.Once

	wg   sync.WaitGroup
	quit chan struct{}

	cfg        *config.Config
	wallet     chain.Wallet
	reconciler *NonceReconciler
	supervisor *LoopSupervisor

	metrics *metrics.SubmitterMetrics
	logger  *zap.Logger
}

// NewBatchSubmitterAppFromConfig dials the chain and rollup nodes and
// assembles the daemon from the given config.
func NewBatchSubmitterAppFromConfig(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
) (*BatchSubmitterApp, error) {
	l1Client, err := ethclient.DialContext(ctx, cfg.L1RPCAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to dial l1 rpc %s: %w", cfg.L1RPCAddress, err)
	}

	rollupClient, err := rpc.DialContext(ctx, cfg.RollupRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rollup rpc %s: %w", cfg.RollupRPCAddress, err)
	}

	wallet, err := chain.NewEthWallet(ctx, l1Client, cfg.PrivateKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	m := metrics.NewSubmitterMetrics()
	waiter := chain.NewTxWaiter(
		l1Client, wallet, cfg.ReceiptQueryInterval, cfg.FeeBumpPercent, m, logger,
	)

	bindings := make([]types.SubmitterBinding, 0, 2)
	roleContracts := []struct {
		role     types.Role
		contract string
		enabled  bool
	}{
		{types.RoleTxBatch, cfg.TxBatchContractAddress, cfg.RunTxBatchSubmitter},
		{types.RoleStateBatch, cfg.StateBatchContractAddress, cfg.RunStateBatchSubmitter},
	}

	for _, rc := range roleContracts {
		if !rc.enabled {
			bindings = append(bindings, types.SubmitterBinding{Role: rc.role})

			continue
		}

		source, err := submitter.NewRPCWorkSource(rollupClient, rc.role)
		if err != nil {
			return nil, err
		}

		bindings = append(bindings, types.SubmitterBinding{
			Role: rc.role,
			Submitter: submitter.NewBatchSubmitter(
				rc.role,
				common.HexToAddress(rc.contract),
				source,
				wallet,
				waiter,
				cfg.NumConfirmations,
				cfg.ResubmissionTimeout,
				logger,
			),
			Enabled: true,
		})
	}

	return NewBatchSubmitterApp(cfg, wallet, waiter, bindings, m, logger), nil
}

// NewBatchSubmitterApp assembles the daemon from pre-built components.
func NewBatchSubmitterApp(
	cfg *config.Config,
	wallet chain.Wallet,
	waiter chain.ConfirmationWaiter,
	bindings []types.SubmitterBinding,
	m *metrics.SubmitterMetrics,
	logger *zap.Logger,
) *BatchSubmitterApp {
	return &BatchSubmitterApp{
		quit:       make(chan struct{}),
		cfg:        cfg,
		wallet:     wallet,
		reconciler: NewNonceReconciler(wallet, waiter, cfg.NumConfirmations, m, logger),
		supervisor: NewLoopSupervisor(bindings, cfg.PollInterval, m, logger),
		metrics:    m,
		logger:     logger,
	}
}

// Start runs nonce reconciliation and then launches the submission
// loops. A reconciliation failure is returned so the caller can abort
// the process; once the loops are running the app only stops via Stop.
func (app *BatchSubmitterApp) Start(ctx context.Context) error {
	var startErr error
	app.startOnce.Do(func() {
		app.logger.Info("starting batch submitter app")

		if app.cfg.ClearPendingTxs {
			if err := app.reconciler.Reconcile(ctx); err != nil {
				startErr = fmt.Errorf("nonce reconciliation failed: %w", err)

				return
			}
		} else {
			app.logger.Info("pending transaction clearing disabled, skipping")
		}

		if err := app.supervisor.Start(); err != nil {
			startErr = err

			return
		}

		app.wg.Add(1)
		go app.metricsUpdateLoop(ctx)

		app.logger.Info("batch submitter app started")
	})

	return startErr
}

// Stop shuts down the submission loops and waits for them to return.
func (app *BatchSubmitterApp) Stop() {
	app.stopOnce.Do(func() {
		app.logger.Info("stopping batch submitter app")

		app.supervisor.Stop()
		close(app.quit)
		app.wg.Wait()

		app.logger.Info("batch submitter app stopped")
	})
}

func (app *BatchSubmitterApp) Metrics() *metrics.SubmitterMetrics {
	return app.metrics
}

func (app *BatchSubmitterApp) metricsUpdateLoop(ctx context.Context) {
	defer app.wg.Done()

	interval := app.cfg.Metrics.UpdateInterval
	app.logger.Info("starting metrics update loop", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.updateNonceMetrics(ctx)
		case <-app.quit:
			app.logger.Info("exiting metrics update loop")

			return
		}
	}
}

func (app *BatchSubmitterApp) updateNonceMetrics(ctx context.Context) {
	pending, err := app.wallet.PendingNonce(ctx)
	if err != nil {
		app.logger.Debug("failed to query pending nonce for metrics", zap.Error(err))

		return
	}

	latest, err := app.wallet.LatestNonce(ctx)
	if err != nil {
		app.logger.Debug("failed to query latest nonce for metrics", zap.Error(err))

		return
	}

	app.metrics.RecordNonceCounts(pending, latest)
}
