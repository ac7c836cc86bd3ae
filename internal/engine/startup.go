package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/iogen/iogen/internal/catalog"
	"github.com/iogen/iogen/internal/units"
)

// StartupInfo writes the human-readable run banner: where records go, the
// budget, the seed, the synthesis parameters and the target file table.
func StartupInfo(w io.Writer, cfg Config) error {
	sc := cfg.Synth
	var b strings.Builder

	fmt.Fprintf(&b, "\niogen%s starting up with the following:\n\n", cfg.Tag)
	fmt.Fprintf(&b, "Out-pipe:              %s\n", cfg.OutputName)
	fmt.Fprintf(&b, "Format:                %s", cfg.Format)
	if cfg.Compress {
		b.WriteString(" (zstd)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Iterations:            %s\n", cfg.Budget)
	fmt.Fprintf(&b, "Seed:                  %d\n", cfg.Seed)
	fmt.Fprintf(&b, "Offset-Mode:           %s\n", sc.Mode)
	fmt.Fprintf(&b, "Overlap Flag:          %s\n", onOff(sc.Overlap))
	fmt.Fprintf(&b, "Mintrans:              %-11d (%d blocks)\n", sc.MinTransfer, blocks(sc.MinTransfer))
	fmt.Fprintf(&b, "Maxtrans:              %-11d (%d blocks)\n", sc.MaxTransfer, blocks(sc.MaxTransfer))
	if cfg.RawUnit == 0 {
		b.WriteString("O_DIRECT Multiple:     (Determined by device)\n")
	} else {
		fmt.Fprintf(&b, "O_DIRECT Multiple:     %-11d (%d blocks)\n", cfg.RawUnit, blocks(cfg.RawUnit))
	}
	if sc.MaxStrides > 0 {
		fmt.Fprintf(&b, "Strides:               %d-%d\n", max(sc.MinStrides, 1), sc.MaxStrides)
	}
	fmt.Fprintf(&b, "Syscalls:              %s\n", names(sc.Syscalls))
	fmt.Fprintf(&b, "Aio completion types:  %s\n", names(sc.AioStrategies))
	fmt.Fprintf(&b, "Flags:                 %s\n", names(sc.Flags))
	if cfg.Rate > 0 {
		fmt.Fprintf(&b, "Rate:                  %g records/s\n", cfg.Rate)
	}

	b.WriteString("\nTest Files:\n\n")
	b.WriteString("Path                                          Length    iou   raw iou file\n")
	b.WriteString("                                              (bytes) (bytes) (bytes) type\n")
	b.WriteString("-----------------------------------------------------------------------------\n")
	for _, f := range sc.Files {
		fmt.Fprintf(&b, "%-40s %12d %7d %7d %s\n", f.Path, f.Length, f.IOUnit, f.RawUnit, f.Type)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func names[V comparable](entries []catalog.Entry[V]) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return strings.Join(out, " ")
}

func blocks(n int64) int64 {
	return (n + units.SectorSize - 1) / units.SectorSize
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
