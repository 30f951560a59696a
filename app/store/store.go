// Package store provides durable storage for visitor preferences.
package store

import "errors"

// ErrNotFound is returned when a preference is not stored.
var ErrNotFound = errors.New("preference not found")

// DBType identifies the database engine behind a Store.
type DBType int

// supported database engines
const (
	DBTypeSQLite DBType = iota
	DBTypePostgres
)

// RWLocker is the subset of sync.RWMutex used by Store.
// sqlite gets a real mutex (single writer), postgres a no-op.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type noopLocker struct{}

func (noopLocker) Lock()    {}
func (noopLocker) Unlock()  {}
func (noopLocker) RLock()   {}
func (noopLocker) RUnlock() {}
