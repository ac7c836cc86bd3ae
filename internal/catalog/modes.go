package catalog

// OffsetMode selects how successive requests move through a file.
type OffsetMode uint8

const (
	Random OffsetMode = iota + 1
	Sequential
	Reverse
)

// OffsetModes is the table of offset policy names.
var OffsetModes = mustTable(
	Entry[OffsetMode]{"random", Random, 0},
	Entry[OffsetMode]{"sequential", Sequential, 0},
	Entry[OffsetMode]{"reverse", Reverse, 0},
)

func (m OffsetMode) String() string { return OffsetModes.NameOf(m) }

// AioStrategy is how the executor observes async completion.
type AioStrategy uint8

const (
	AioNone AioStrategy = iota
	AioPoll
	AioSignal
	AioSuspend
	AioCallback
)

// AioStrategies is the table of async completion strategies.
var AioStrategies = mustTable(
	Entry[AioStrategy]{"none", AioNone, 0},
	Entry[AioStrategy]{"poll", AioPoll, 0},
	Entry[AioStrategy]{"signal", AioSignal, 0},
	Entry[AioStrategy]{"suspend", AioSuspend, 0},
	Entry[AioStrategy]{"callback", AioCallback, 0},
)

func (a AioStrategy) String() string { return AioStrategies.NameOf(a) }

// FileType classifies a target file.
type FileType uint8

const (
	Regular FileType = iota + 1
	BlockSpecial
	CharSpecial
)

// FileTypes maps file types to the names shown in startup output.
var FileTypes = mustTable(
	Entry[FileType]{"regular", Regular, 0},
	Entry[FileType]{"blk-spec", BlockSpecial, 0},
	Entry[FileType]{"chr-spec", CharSpecial, 0},
)

func (t FileType) String() string { return FileTypes.NameOf(t) }
