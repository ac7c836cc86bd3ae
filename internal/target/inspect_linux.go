//go:build linux

package target

import (
	"io"
	"os"

	"github.com/ncw/directio"
	"golang.org/x/sys/unix"

	"github.com/iogen/iogen/internal/catalog"
)

func inspect(path string, rawUnit int64) (*File, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, err
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		f := &File{
			Path:    path,
			Length:  st.Size,
			IOUnit:  1,
			RawUnit: rawUnit,
			Type:    catalog.Regular,
		}
		if f.RawUnit == 0 {
			f.RawUnit = directAlignment(path)
		}
		return f, nil
	case unix.S_IFBLK:
		return inspectBlockDevice(path)
	case unix.S_IFCHR:
		return &File{
			Path:    path,
			Length:  DefaultUnit,
			IOUnit:  DefaultUnit,
			RawUnit: DefaultUnit,
			Type:    catalog.CharSpecial,
		}, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// directAlignment returns the offset alignment O_DIRECT needs on the
// filesystem holding path.
func directAlignment(path string) int64 {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_DIOALIGN, &stx)
	if err == nil && stx.Mask&unix.STATX_DIOALIGN != 0 && stx.Dio_offset_align > 0 {
		return int64(stx.Dio_offset_align)
	}

	fd, err := directio.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return DefaultUnit
	}
	//nolint:errcheck // read-only handle
	fd.Close()
	return directio.BlockSize
}

func inspectBlockDevice(path string) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	size, err := fd.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}

	unit := int64(DefaultUnit)
	//nolint:gosec // G115: fd values are small non-negative integers
	if ssz, err := unix.IoctlGetInt(int(fd.Fd()), unix.BLKSSZGET); err == nil && ssz > 0 {
		unit = int64(ssz)
	}

	return &File{
		Path:    path,
		Length:  size,
		IOUnit:  unit,
		RawUnit: unit,
		Type:    catalog.BlockSpecial,
	}, nil
}
