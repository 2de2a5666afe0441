//go:build unix

// Package flock provides cross-platform file locking utilities.
package flock

import "syscall"

// Exclusive takes an exclusive lock on the file descriptor without
// blocking. When another open file description already holds the lock the
// call fails immediately instead of waiting for the holder to finish.
func Exclusive(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB)
}

// Unlock releases an exclusive lock taken on the file descriptor.
func Unlock(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN)
}
