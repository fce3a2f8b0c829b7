//go:build windows

package recyclebin

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modShell32             = windows.NewLazySystemDLL("shell32.dll")
	procSHQueryRecycleBinW = modShell32.NewProc("SHQueryRecycleBinW")
	procSHEmptyRecycleBinW = modShell32.NewProc("SHEmptyRecycleBinW")
)

// SHEmptyRecycleBin flags.
const (
	sherbNoConfirmation = 0x00000001
	sherbNoProgressUI   = 0x00000002
	sherbNoSound        = 0x00000004
)

// eUnexpected is what SHEmptyRecycleBinW reports for an already empty bin.
const eUnexpected = 0x8000FFFF

// shQueryRBInfo mirrors SHQUERYRBINFO.
type shQueryRBInfo struct {
	cbSize      uint32
	i64Size     int64
	i64NumItems int64
}

// Shell is the Windows Recycle Bin across all drives.
type Shell struct{}

// Default returns the bin for this platform. The path argument is not
// used on Windows.
func Default(string) (Bin, error) {
	if err := procSHQueryRecycleBinW.Find(); err != nil {
		return nil, fmt.Errorf("loading shell32: %w", err)
	}
	return Shell{}, nil
}

// Size queries the aggregate size of all recycle bins.
func (Shell) Size(context.Context) (uint64, error) {
	info := shQueryRBInfo{}
	info.cbSize = uint32(unsafe.Sizeof(info))

	hr, _, _ := procSHQueryRecycleBinW.Call(0, uintptr(unsafe.Pointer(&info)))
	if hr != 0 {
		return 0, fmt.Errorf("SHQueryRecycleBinW: %w", windows.Errno(hr))
	}
	if info.i64Size < 0 {
		return 0, nil
	}
	return uint64(info.i64Size), nil
}

// Empty empties all recycle bins without confirmation, progress UI or
// sound.
func (Shell) Empty(context.Context) error {
	hr, _, _ := procSHEmptyRecycleBinW.Call(0, 0,
		sherbNoConfirmation|sherbNoProgressUI|sherbNoSound)
	switch uint32(hr) {
	case 0:
		return nil
	case eUnexpected:
		logger.Debug("recycle bin already empty")
		return nil
	default:
		return fmt.Errorf("SHEmptyRecycleBinW: %w", windows.Errno(hr))
	}
}

// Open opens the Recycle Bin folder in Explorer.
func (Shell) Open(context.Context) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	target, err := windows.UTF16PtrFromString("shell:RecycleBinFolder")
	if err != nil {
		return err
	}
	if err := windows.ShellExecute(0, verb, target, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("ShellExecute: %w", err)
	}
	return nil
}

// Put is not supported on Windows.
func (Shell) Put(string) error {
	return ErrUnsupported
}
