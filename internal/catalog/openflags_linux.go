//go:build linux

package catalog

import "golang.org/x/sys/unix"

// Access modes and I/O flags carried in request records, as open(2) expects
// them.
const (
	ORdOnly = unix.O_RDONLY
	OWrOnly = unix.O_WRONLY
	ORdWr   = unix.O_RDWR
	OSync   = unix.O_SYNC
	ODirect = unix.O_DIRECT
)
