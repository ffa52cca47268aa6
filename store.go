package kvfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config is the store's recognized runtime configuration surface (spec
// §3, §6): exactly one option, matching the spec's explicit enumeration.
type Config struct {
	// Fsync, when true, forces data and the containing directory to
	// stable storage after each mutating operation. Default true.
	Fsync bool
}

// DefaultConfig returns the spec's documented default: fsync enabled.
func DefaultConfig() Config {
	return Config{Fsync: true}
}

// Options bundles the store constructor's recognized options (spec §6):
// serializer, read/write handler registries, config, and — carried over
// from the ambient logging stack rather than the spec's own enumeration —
// a logger for the handful of call sites that have no value-returning
// channel to report through.
type Options struct {
	Serializer    Codec
	ReadHandlers  ReadHandlers
	WriteHandlers WriteHandlers
	Config        Config
	Logger        logrus.FieldLogger
}

// DefaultOptions returns the documented defaults: the JSON codec, fsync
// enabled, no handlers, and the standard logrus logger.
func DefaultOptions() Options {
	return Options{
		Serializer: JSONCodec{},
		Config:     DefaultConfig(),
		Logger:     logrus.StandardLogger(),
	}
}

// Store bundles the folder path, codec, handler registries, lock table,
// and config (spec §3, "Store" data model). It is the handle every public
// operation is a method of.
type Store struct {
	folder        string
	codec         Codec
	readHandlers  ReadHandlers
	writeHandlers WriteHandlers
	config        Config
	logger        logrus.FieldLogger
	locks         *lockTable
}

// New constructs a store rooted at folder (spec §4.8): it ensures the
// folder exists, probes it for writability by writing and deleting a
// randomly-named file, and returns a ready store. Apart from rejecting more
// than one Options value, a failure to create or probe the folder is this
// function's only error — the sole case the design treats as fatal rather
// than surfaced later through a Future (spec §7).
func New(folder string, opts ...Options) (*Store, error) {
	o, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	if err := ensureDir(folder); err != nil {
		return nil, &StoreError{Kind: KindNotWritable, Cause: fmt.Errorf("creating store folder: %w", err)}
	}
	if err := probeWritable(folder); err != nil {
		return nil, &StoreError{Kind: KindNotWritable, Cause: fmt.Errorf("probing store folder for writability: %w", err)}
	}

	return &Store{
		folder:        folder,
		codec:         o.Serializer,
		readHandlers:  o.ReadHandlers,
		writeHandlers: o.WriteHandlers,
		config:        o.Config,
		logger:        o.Logger,
		locks:         newLockTable(),
	}, nil
}

func resolveOptions(opts []Options) (Options, error) {
	switch len(opts) {
	case 0:
		return DefaultOptions(), nil
	case 1:
		o := opts[0]
		if o.Serializer == nil {
			o.Serializer = JSONCodec{}
		}
		if o.Logger == nil {
			o.Logger = logrus.StandardLogger()
		}
		return o, nil
	default:
		return Options{}, fmt.Errorf("kvfile: at most one Options value is accepted, got %d", len(opts))
	}
}

func probeWritable(folder string) error {
	f, err := os.CreateTemp(folder, ".kvfile-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Remove(name)
}

// Delete implements delete-store (spec §4.8): it unlinks every regular
// file in folder, unlinks folder itself, and best-effort fsyncs the parent
// directory. A failure of that last, best-effort step is logged rather
// than returned, since delete-store's own completion never depended on it.
func Delete(folder string, opts ...Options) error {
	o, err := resolveOptions(opts)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(folder, e.Name())); err != nil {
			return err
		}
	}
	if err := os.Remove(folder); err != nil {
		return err
	}

	if err := syncDir(filepath.Dir(folder)); err != nil {
		o.Logger.WithError(err).WithField("folder", folder).
			Warn("kvfile: best-effort parent directory fsync failed after delete-store")
	}
	return nil
}
