package catalog

// FlagRaw marks open flags that bypass the page cache and therefore require
// the raw alignment unit.
const FlagRaw uint32 = 1

// OpenFlags is the table of I/O flags a request may be opened with.
var OpenFlags = mustTable(
	Entry[int]{"buffered", 0, 0},
	Entry[int]{"sync", OSync, 0},
	Entry[int]{"direct", ODirect, FlagRaw},
)

// DefaultOpenFlags are used when no flags are configured.
var DefaultOpenFlags = []string{"buffered", "sync"}
