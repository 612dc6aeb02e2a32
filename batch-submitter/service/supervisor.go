package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/orbitrollup/batch-submitter/metrics"
	"github.com/orbitrollup/batch-submitter/types"
)

// LoopSupervisor runs one independent submission loop per enabled role.
// Each loop polls its submitter at a fixed interval forever. A failing
// submitter is logged and retried on the next tick; it never stops its
// own loop, the other loops, or the process.
type LoopSupervisor struct {
	isStarted *atomic.Bool
	wg        sync.WaitGroup
	quit      chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	bindings     []types.SubmitterBinding
	pollInterval time.Duration

	metrics *metrics.SubmitterMetrics
	logger  *zap.Logger
}

func NewLoopSupervisor(
	bindings []types.SubmitterBinding,
	pollInterval time.Duration,
	m *metrics.SubmitterMetrics,
	logger *zap.Logger,
) *LoopSupervisor {
	ctx, cancel := context.WithCancel(context.Background())

	return &LoopSupervisor{
		isStarted:    atomic.NewBool(false),
		quit:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
		bindings:     bindings,
		pollInterval: pollInterval,
		metrics:      m,
		logger:       logger,
	}
}

// Start launches one goroutine per enabled binding. Disabled bindings
// are never scheduled.
func (ls *LoopSupervisor) Start() error {
	if ls.isStarted.Swap(true) {
		return ErrSupervisorStarted
	}

	for _, binding := range ls.bindings {
		if !binding.Enabled {
			ls.logger.Info("submitter disabled, skipping", zap.String("role", binding.Role.String()))

			continue
		}

		ls.wg.Add(1)
		go ls.submissionLoop(binding)
	}

	return nil
}

// Stop cancels in-flight submissions and waits for all loops to return.
func (ls *LoopSupervisor) Stop() {
	if !ls.isStarted.Swap(false) {
		return
	}

	ls.cancel()
	close(ls.quit)
	ls.wg.Wait()
}

func (ls *LoopSupervisor) submissionLoop(binding types.SubmitterBinding) {
	defer ls.wg.Done()

	logger := ls.logger.With(zap.String("role", binding.Role.String()))
	logger.Info("starting submission loop", zap.Duration("poll_interval", ls.pollInterval))

	ticker := time.NewTicker(ls.pollInterval)
	defer ticker.Stop()

	ls.submitOnce(binding, logger)

	for {
		select {
		case <-ticker.C:
			ls.submitOnce(binding, logger)
		case <-ls.quit:
			logger.Info("exiting submission loop")

			return
		}
	}
}

func (ls *LoopSupervisor) submitOnce(binding types.SubmitterBinding, logger *zap.Logger) {
	receipt, err := binding.Submitter.SubmitNextBatch(ls.ctx)
	if err != nil {
		ls.metrics.IncrementBatchSubmissionFailures(binding.Role.String())
		logger.Error("failed to submit batch, will retry on next tick", zap.Error(err))

		return
	}

	if receipt == nil {
		logger.Debug("no batch pending")

		return
	}

	ls.metrics.RecordBatchSubmitted(binding.Role.String())
	logger.Info(
		"batch confirmed",
		zap.String("tx_hash", receipt.TxHash.Hex()),
		zap.Uint64("block_number", receipt.BlockNumber.Uint64()),
	)
}
