//go:build !linux

package target

import (
	"os"

	"github.com/ncw/directio"

	"github.com/iogen/iogen/internal/catalog"
)

func inspect(path string, rawUnit int64) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	mode := info.Mode()
	switch {
	case mode.IsRegular():
		if rawUnit == 0 {
			rawUnit = directio.BlockSize
		}
		return &File{
			Path:    path,
			Length:  info.Size(),
			IOUnit:  1,
			RawUnit: rawUnit,
			Type:    catalog.Regular,
		}, nil
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0:
		return &File{
			Path:    path,
			Length:  info.Size(),
			IOUnit:  DefaultUnit,
			RawUnit: DefaultUnit,
			Type:    catalog.BlockSpecial,
		}, nil
	case mode&os.ModeCharDevice != 0:
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
