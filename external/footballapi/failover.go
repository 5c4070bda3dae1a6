package footballapi

import (
	"context"
	"sync/atomic"

	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
)

type Credential string

const (
	CredentialPrimary Credential = "primary"
	CredentialBackup  Credential = "backup"
)

type State string

const (
	StatePrimaryActive State = "PRIMARY_ACTIVE"
	StateBackupActive  State = "BACKUP_ACTIVE"
)

// FailoverFlag holds the one-way primary to backup switch. Only Reset
// moves it back.
type FailoverFlag interface {
	BackupActive(ctx context.Context) (bool, error)
	// ActivateBackup reports whether this call performed the switch.
	ActivateBackup(ctx context.Context) (bool, error)
	Reset(ctx context.Context) error
}

// LocalFailover keeps the flag in process memory.
type LocalFailover struct {
	backup atomic.Bool
}

func NewLocalFailover() *LocalFailover {
	return &LocalFailover{}
}

func (f *LocalFailover) BackupActive(context.Context) (bool, error) {
	return f.backup.Load(), nil
}

func (f *LocalFailover) ActivateBackup(context.Context) (bool, error) {
	return f.backup.CompareAndSwap(false, true), nil
}

func (f *LocalFailover) Reset(context.Context) error {
	f.backup.Store(false)
	return nil
}

const (
	sharedFailoverKey = "football_api:active_credential"
	flagPrimary       = "primary"
	flagBackup        = "backup"
)

// SharedFailover keeps the flag in a kv.Store so every process switches together.
type SharedFailover struct {
	store kv.Store
	key   string
}

func NewSharedFailover(store kv.Store) *SharedFailover {
	return &SharedFailover{store: store, key: sharedFailoverKey}
}

func (f *SharedFailover) BackupActive(ctx context.Context) (bool, error) {
	value, _, err := f.store.Get(ctx, f.key)
	if err != nil {
		return false, err
	}
	return value == flagBackup, nil
}

func (f *SharedFailover) ActivateBackup(ctx context.Context) (bool, error) {
	current, _, err := f.store.Get(ctx, f.key)
	if err != nil {
		return false, err
	}
	if current == flagBackup {
		return false, nil
	}
	return f.store.CompareAndSwap(ctx, f.key, current, flagBackup)
}

func (f *SharedFailover) Reset(ctx context.Context) error {
	return f.store.Set(ctx, f.key, flagPrimary)
}
