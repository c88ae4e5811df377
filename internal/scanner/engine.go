package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poagov/internal/ballot"
	"poagov/internal/metrics"
	"poagov/internal/model"
)

// ChainClient supplies the chain tip and ballot logs.
type ChainClient interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, address common.Address, topic0 common.Hash) ([]model.LogEntry, error)
}

// Dispatcher delivers one finished notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n model.Notification) error
}

// RecordWriter receives raw logs that could not be decoded.
type RecordWriter interface {
	Append(records ...interface{}) error
}

// Contract is one monitored governance contract.
type Contract struct {
	Type    model.ContractType
	Address common.Address
}

// Config holds runtime settings for the scan engine.
type Config struct {
	Network        model.Network
	Version        model.ContractVersion
	Endpoint       string
	Contracts      []Contract
	Start          model.StartMode
	PollInterval   time.Duration
	Limit          uint64
	MaxRange       uint64
	StartupRetries int
	RetryBackoff   time.Duration
}

type watch struct {
	contract Contract
	decoder  *ballot.Decoder
}

type tickResult int

const (
	tickIdle tickResult = iota
	tickAborted
	tickCommitted
)

func (r tickResult) String() string {
	switch r {
	case tickAborted:
		return "aborted"
	case tickCommitted:
		return "committed"
	default:
		return "idle"
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the clock used to stamp notifications.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMetrics attaches scan metrics.
func WithMetrics(m *metrics.ScanMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithDeadLetter stores undecodable logs so they can be replayed with the decode command.
func WithDeadLetter(w RecordWriter) Option {
	return func(e *Engine) {
		e.deadLetter = w
	}
}

// Engine polls the chain for ballot logs and hands notifications to a Dispatcher.
type Engine struct {
	cfg        Config
	chain      ChainClient
	dispatcher Dispatcher
	logger     *zap.Logger
	metrics    *metrics.ScanMetrics
	deadLetter RecordWriter
	now        func() time.Time
	watches    []watch
	cursor     *Cursor
	sent       uint64
}

// NewEngine builds an Engine, resolving one decoder per monitored contract.
// Contracts are scanned in model.ContractTypes order.
func NewEngine(cfg Config, chainClient ChainClient, registry *ballot.Registry, dispatcher Dispatcher, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if chainClient == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("decoder registry is nil")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is nil")
	}
	if len(cfg.Contracts) == 0 {
		return nil, fmt.Errorf("at least one contract is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be greater than zero")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watches := make([]watch, 0, len(cfg.Contracts))
	seen := make(map[model.ContractType]struct{}, len(cfg.Contracts))
	for _, c := range cfg.Contracts {
		if _, ok := seen[c.Type]; ok {
			return nil, fmt.Errorf("contract %s listed twice", c.Type)
		}
		seen[c.Type] = struct{}{}
		if c.Address == (common.Address{}) {
			return nil, fmt.Errorf("no %s contract address for %s %s", c.Type, cfg.Network, cfg.Version)
		}
		decoder, err := registry.Decoder(c.Type, cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("%s contract: %w", c.Type, err)
		}
		watches = append(watches, watch{contract: c, decoder: decoder})
	}
	sort.SliceStable(watches, func(i, j int) bool {
		return watches[i].contract.Type < watches[j].contract.Type
	})

	e := &Engine{
		cfg:        cfg,
		chain:      chainClient,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		watches:    watches,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run scans until ctx is cancelled or the notification limit is reached.
// Both end the run cleanly with a nil error. Cancellation is observed
// between ticks only; a started tick always finishes its commit and dispatch.
func (e *Engine) Run(ctx context.Context) error {
	var tip uint64
	policy := retryPolicy{
		retries: e.cfg.StartupRetries,
		backoff: e.cfg.RetryBackoff,
		onRetry: func(attempt int, delay time.Duration, err error) {
			e.logger.Warn("get latest block failed", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("retry_in", delay))
		},
	}
	err := policy.do(ctx, func(ctx context.Context) error {
		var err error
		tip, err = e.chain.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Info("shutdown requested")
			return nil
		}
		return fmt.Errorf("get latest block: %w", err)
	}

	first, err := InitialBlock(e.cfg.Start, tip)
	if err != nil {
		return err
	}
	e.cursor = NewCursor(first, e.cfg.MaxRange)
	e.metrics.SetSourceBlock(tip)

	e.logger.Info("scanner start",
		zap.Stringer("network", e.cfg.Network),
		zap.Stringer("version", e.cfg.Version),
		zap.String("endpoint", e.cfg.Endpoint),
		zap.Stringer("start_mode", e.cfg.Start),
		zap.Uint64("tip", tip),
		zap.Uint64("from", first),
		zap.Int("contracts", len(e.watches)),
	)

	// Tick work never sees cancellation; the signal is checked between ticks.
	tickCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			e.logger.Info("shutdown requested", zap.Uint64("next_block", e.cursor.NextBlock()))
			return nil
		}

		more, done := e.tick(tickCtx)
		if done {
			return nil
		}
		if more {
			continue
		}
		if !sleep(ctx, e.cfg.PollInterval) {
			e.logger.Info("shutdown requested", zap.Uint64("next_block", e.cursor.NextBlock()))
			return nil
		}
	}
}

// tick runs one scan step. more reports that blocks beyond the committed
// range are already mined; done reports that the notification limit was reached.
func (e *Engine) tick(ctx context.Context) (more, done bool) {
	started := time.Now()
	result := tickIdle
	defer func() {
		e.metrics.ObserveTick(result.String(), time.Since(started).Seconds())
	}()

	tip, err := e.chain.LatestBlockNumber(ctx)
	if err != nil {
		result = tickAborted
		e.logger.Warn("tick aborted", zap.String("stage", "latest block"), zap.Error(err))
		return false, false
	}
	e.metrics.SetSourceBlock(tip)

	blockRange, ok := e.cursor.Next(tip)
	if !ok {
		e.logger.Debug("no new blocks", zap.Uint64("tip", tip), zap.Uint64("next_block", e.cursor.NextBlock()))
		return false, false
	}

	events, err := e.collect(ctx, blockRange)
	if err != nil {
		result = tickAborted
		e.logger.Warn("tick aborted",
			zap.String("stage", "fetch logs"),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Error(err),
		)
		return false, false
	}

	generatedAt := e.now()
	notifications := make([]model.Notification, 0, len(events))
	for _, event := range events {
		notifications = append(notifications, model.NewNotification(event, e.cfg.Network, e.cfg.Endpoint, generatedAt))
	}

	if err := e.cursor.Commit(blockRange); err != nil {
		result = tickAborted
		e.logger.Error("tick aborted", zap.String("stage", "commit"), zap.Error(err))
		return false, false
	}
	result = tickCommitted
	e.metrics.SetScannedBlock(blockRange.To)
	e.logger.Info("finished checking blocks",
		zap.Uint64("from", blockRange.From),
		zap.Uint64("to", blockRange.To),
		zap.Int("notifications", len(notifications)),
	)

	if e.dispatch(ctx, notifications) {
		return false, true
	}
	return blockRange.To < tip, false
}

// collect fetches and decodes every monitored contract's logs for r.
// Any fetch error fails the whole range; undecodable logs are skipped.
func (e *Engine) collect(ctx context.Context, r BlockRange) ([]model.BallotEvent, error) {
	var events []model.BallotEvent
	for _, w := range e.watches {
		e.logger.Debug("fetch logs",
			zap.Stringer("contract", w.contract.Type),
			zap.Uint64("from", r.From),
			zap.Uint64("to", r.To),
		)

		logs, err := e.chain.FilterLogs(ctx, r.From, r.To, w.contract.Address, w.decoder.Signature())
		if err != nil {
			return nil, fmt.Errorf("%s logs: %w", w.contract.Type, err)
		}
		e.metrics.AddFetchedLogs(w.contract.Type.String(), len(logs))

		for _, entry := range logs {
			event, err := w.decoder.Decode(entry)
			if err != nil {
				reason := "malformed"
				if errors.Is(err, ballot.ErrSignatureMismatch) {
					reason = "signature"
				}
				e.metrics.IncDecodeErrors(w.contract.Type.String(), reason)
				e.logger.Error("skip malformed log",
					zap.Stringer("contract", w.contract.Type),
					zap.Uint64("block_number", entry.BlockNumber),
					zap.Uint64("log_index", entry.LogIndex),
					zap.String("tx_hash", entry.TxHash.Hex()),
					zap.Error(err),
				)
				e.storeDeadLetter(entry)
				continue
			}
			events = append(events, event)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Before(events[j])
	})
	return events, nil
}

func (e *Engine) storeDeadLetter(entry model.LogEntry) {
	if e.deadLetter == nil {
		return
	}
	if err := e.deadLetter.Append(model.NewLogRecord(entry)); err != nil {
		e.logger.Warn("dead letter write failed", zap.Uint64("block_number", entry.BlockNumber), zap.Error(err))
	}
}

// dispatch hands notifications over in order and reports whether the limit was reached.
func (e *Engine) dispatch(ctx context.Context, notifications []model.Notification) bool {
	for _, n := range notifications {
		e.logger.Info("governance notification",
			zap.Stringer("contract", n.Event.Contract),
			zap.Uint64("ballot_id", n.Event.BallotID),
			zap.Uint64("block_number", n.BlockNumber),
		)
		if err := e.dispatcher.Dispatch(ctx, n); err != nil {
			e.metrics.IncDispatchErrors()
			e.logger.Error("dispatch failed", zap.String("notification", n.Key()), zap.Error(err))
		} else {
			e.metrics.IncNotifications(n.Event.Contract.String())
		}

		e.sent++
		if e.cfg.Limit > 0 && e.sent >= e.cfg.Limit {
			e.logger.Info("reached notification limit", zap.Uint64("limit", e.cfg.Limit))
			return true
		}
	}
	return false
}
