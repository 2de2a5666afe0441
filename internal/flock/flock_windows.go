//go:build windows

// Package flock provides cross-platform file locking utilities.
package flock

import "golang.org/x/sys/windows"

// LockFileEx/UnlockFileEx parameters. Locking a single byte is enough to
// serialize whole-file access between processes.
// See: https://learn.microsoft.com/en-us/windows/win32/api/fileapi/nf-fileapi-lockfileex
const (
	lockReserved  = 0 // reserved, must be zero
	lockBytesLow  = 1 // low 32 bits of the locked byte range
	lockBytesHigh = 0 // high 32 bits of the locked byte range
)

// Exclusive takes an exclusive lock on the file descriptor without
// blocking. When another handle already holds the lock the call fails
// immediately instead of waiting for the holder to finish.
func Exclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}

// Unlock releases an exclusive lock taken on the file descriptor.
func Unlock(fd uintptr) error {
	return windows.UnlockFileEx(
		windows.Handle(fd),
		lockReserved,
		lockBytesLow,
		lockBytesHigh,
		&windows.Overlapped{},
	)
}
