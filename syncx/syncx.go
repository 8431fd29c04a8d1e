// Package syncx holds small helpers for scoping critical sections to a function.
package syncx

import "sync"

// LockFunc runs fn while holding mux.
// The lock is released even if fn panics.
func LockFunc(mux sync.Locker, fn func()) {
	mux.Lock()
	defer mux.Unlock()
	fn()
}

// LockFuncT is like [LockFunc], but returns the result of fn.
func LockFuncT[T any](mux sync.Locker, fn func() T) T {
	mux.Lock()
	defer mux.Unlock()
	return fn()
}

type RLocker interface {
	RLock()
	RUnlock()
}

func RLockFunc(mux RLocker, fn func()) {
	mux.RLock()
	defer mux.RUnlock()
	fn()
}

func RLockFuncT[T any](mux RLocker, fn func() T) T {
	mux.RLock()
	defer mux.RUnlock()
	return fn()
}
