//go:build !linux

package catalog

import "os"

// Access modes and I/O flags carried in request records. O_DIRECT has no
// portable equivalent; the Linux value is used so records stay comparable.
const (
	ORdOnly = os.O_RDONLY
	OWrOnly = os.O_WRONLY
	ORdWr   = os.O_RDWR
	OSync   = os.O_SYNC
	ODirect = 0o40000
)
