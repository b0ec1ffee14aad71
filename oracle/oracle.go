// Package oracle bundles the seed manager, value generator, arbitrary-mode registry and storage overlay into a single
// generation context. An Oracle is passed explicitly to whatever needs arbitrary values; there is no global seed.
package oracle

import (
	"github.com/crytic/arbiter/logging"
	"github.com/crytic/arbiter/logging/colors"
	"github.com/crytic/arbiter/oracle/config"
	"github.com/crytic/arbiter/oracle/seed"
	"github.com/crytic/arbiter/oracle/storage"
	"github.com/crytic/arbiter/oracle/valuegeneration"
	"github.com/pkg/errors"
)

// ReseedObserver is notified after an Oracle switches seeds, e.g. to journal the new seed for replay.
type ReseedObserver interface {
	// OnReseed is called with the seed that was replaced and the seed now in effect.
	OnReseed(previous seed.Seed, current seed.Seed) error
}

// Oracle is a generation context. It is not safe for concurrent use: parallel test cases should each own an Oracle
// obtained through Fork.
type Oracle struct {
	// config describes the configuration the oracle was created from.
	config config.OracleConfig

	// seeds owns the active seed and the draw stream.
	seeds *seed.Manager

	// generator produces arbitrary values from seeds.
	generator *valuegeneration.Generator

	// overlay is the storage view of the oracle, which owns the arbitrary-mode registry.
	overlay *storage.Overlay

	// observer is notified of reseeds, if set.
	observer ReseedObserver

	// logger describes the logger used by the oracle.
	logger *logging.Logger
}

// New creates an Oracle from the provided configuration. The active seed is logged so that any failure can be
// replayed. If logger is nil, a sub-logger of logging.GlobalLogger is used.
// Returns an error if the configuration is invalid.
func New(cfg *config.OracleConfig, logger *logging.Logger) (*Oracle, error) {
	if cfg == nil {
		return nil, errors.New("oracle config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := cfg.ParsedSeed()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.GlobalLogger
	}
	o, err := newOracle(*cfg, seed.NewManager(s), storage.NewRegistry(), logger)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Oracle seed: ", colors.Bold, s.String(), colors.Reset, logging.StructuredLogInfo{logging.SEED_FIELD: s.String()})
	return o, nil
}

// newOracle assembles an Oracle around a seed manager and registry, enabling the configured arbitrary addresses.
func newOracle(cfg config.OracleConfig, seeds *seed.Manager, registry *storage.Registry, logger *logging.Logger) (*Oracle, error) {
	excluded, err := cfg.ParsedExcludedAddresses()
	if err != nil {
		return nil, err
	}
	arbitrary, err := cfg.ParsedArbitraryAddresses()
	if err != nil {
		return nil, err
	}

	generator := valuegeneration.NewGenerator(seeds, valuegeneration.GeneratorConfig{
		MaxAddressAttempts: cfg.MaxAddressAttempts,
		MaxBytesLength:     cfg.MaxBytesLength,
		ExcludedAddresses:  excluded,
	})
	overlay := storage.NewOverlay(generator, registry)
	overlay.SetLogger(logger.NewSubLogger("module", logging.STORAGE_SERVICE))
	for _, addr := range arbitrary {
		overlay.EnableArbitrary(addr)
	}

	return &Oracle{
		config:    cfg,
		seeds:     seeds,
		generator: generator,
		overlay:   overlay,
		logger:    logger.NewSubLogger("module", logging.ORACLE_SERVICE),
	}, nil
}

// Config returns the configuration the oracle was created from.
func (o *Oracle) Config() config.OracleConfig {
	return o.config
}

// Seeds returns the seed manager of the oracle.
func (o *Oracle) Seeds() *seed.Manager {
	return o.seeds
}

// Generator returns the value generator of the oracle.
func (o *Oracle) Generator() *valuegeneration.Generator {
	return o.generator
}

// Storage returns the storage overlay of the oracle.
func (o *Oracle) Storage() *storage.Overlay {
	return o.overlay
}

// SetReseedObserver sets the observer notified after each reseed. A nil observer disables notifications.
func (o *Oracle) SetReseedObserver(observer ReseedObserver) {
	o.observer = observer
}

// Reseed switches the oracle to a new seed. Values already memoized in the storage overlay are kept; only later
// generation uses the new seed. Observer failures are logged and do not undo the reseed.
func (o *Oracle) Reseed(s seed.Seed) {
	previous := o.seeds.CurrentSeed()
	o.seeds.Reseed(s)
	o.logger.Info("Reseeded oracle from ", previous.String(), " to ", colors.Bold, s.String(), colors.Reset, logging.StructuredLogInfo{logging.SEED_FIELD: s.String()})

	if o.observer != nil {
		if err := o.observer.OnReseed(previous, s); err != nil {
			o.logger.Error("Failed to record reseed", err)
		}
	}
}

// Fork returns an independent Oracle seeded from this oracle's seed and the label, with a fresh storage overlay whose
// registry holds the addresses currently in arbitrary mode. The same label always yields the same child seed.
func (o *Oracle) Fork(label string) *Oracle {
	registry := storage.NewRegistry()
	for _, addr := range o.overlay.Registry().Addresses() {
		registry.Enable(addr)
	}

	// The configuration has already been validated, so assembly cannot fail
	child, _ := newOracle(o.config, o.seeds.Fork(label), registry, o.logger)
	o.logger.Debug("Forked oracle ", label, " with seed ", child.seeds.CurrentSeed().String())
	return child
}
