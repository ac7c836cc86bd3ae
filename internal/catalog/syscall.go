package catalog

// Syscall identifies the operation a request asks the executor to perform.
type Syscall uint8

const (
	Read Syscall = iota + 1
	Write
	ReadA
	WriteA
	PRead
	PWrite
	ARead
	AWrite
	ReadV
	WriteV
	MMapRead
	MMapWrite
	LSRead
	LSWrite
	LSReadA
	LSWriteA
	LERead
	LEWrite
	Resvsp
	Unresvsp
	Fsync2
	Fdatasync
)

// Syscall flag bits.
const (
	SyWrite  uint32 = 1 << iota // writes data
	SyAsync                     // completion observed through an aio strategy
	SyListio                    // may be split into several strides
	SyNent                      // strides are separate list entries, not one strided entry
)

// Syscalls is the table of known syscall names. "reserve" and "unreserve"
// alias resvsp and unresvsp.
var Syscalls = mustTable(
	Entry[Syscall]{"read", Read, 0},
	Entry[Syscall]{"write", Write, SyWrite},
	Entry[Syscall]{"reada", ReadA, SyAsync},
	Entry[Syscall]{"writea", WriteA, SyWrite | SyAsync},
	Entry[Syscall]{"pread", PRead, 0},
	Entry[Syscall]{"pwrite", PWrite, SyWrite},
	Entry[Syscall]{"aread", ARead, SyAsync},
	Entry[Syscall]{"awrite", AWrite, SyWrite | SyAsync},
	Entry[Syscall]{"readv", ReadV, 0},
	Entry[Syscall]{"writev", WriteV, SyWrite},
	Entry[Syscall]{"mmread", MMapRead, 0},
	Entry[Syscall]{"mmwrite", MMapWrite, SyWrite},
	Entry[Syscall]{"lsread", LSRead, SyListio},
	Entry[Syscall]{"lswrite", LSWrite, SyWrite | SyListio},
	Entry[Syscall]{"lsreada", LSReadA, SyListio | SyAsync},
	Entry[Syscall]{"lswritea", LSWriteA, SyWrite | SyListio | SyAsync},
	Entry[Syscall]{"leread", LERead, SyListio | SyNent},
	Entry[Syscall]{"lewrite", LEWrite, SyWrite | SyListio | SyNent},
	Entry[Syscall]{"resvsp", Resvsp, SyWrite},
	Entry[Syscall]{"unresvsp", Unresvsp, SyWrite},
	Entry[Syscall]{"reserve", Resvsp, SyWrite},
	Entry[Syscall]{"unreserve", Unresvsp, SyWrite},
	Entry[Syscall]{"fsync2", Fsync2, SyWrite},
	Entry[Syscall]{"fdatasync", Fdatasync, SyWrite},
)

// DefaultSyscalls are used when no syscalls are configured.
var DefaultSyscalls = []string{
	"read", "write", "pread", "pwrite", "readv", "writev", "mmread", "mmwrite",
}

func (s Syscall) String() string { return Syscalls.NameOf(s) }
