//go:build windows
// +build windows

package utils

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// PatchWindowsArgs replaces os.Args with the Win32 shell's own tokenization
// of the process command line. Go's runtime does its own (looser) argv
// splitting on Windows, which mangles ruleset/includes/excludes paths that
// contain spaces (e.g. "C:\Program Files\winapp2.ini"); re-parsing through
// CommandLineToArgvW gives pflag the same tokens cmd.exe/PowerShell used.
//
// Must be called before pflag.Parse() in cmd/winapp2trim's main.
func PatchWindowsArgs() {
	cmdLine := windows.GetCommandLine()
	if cmdLine == nil {
		return
	}

	var argc int32
	argv, err := windows.CommandLineToArgv(cmdLine, &argc)
	if err != nil || argv == nil || argc < 1 {
		return
	}
	defer windows.LocalFree(windows.Handle(uintptr(unsafe.Pointer(argv))))

	os.Args = argvToStrings((**uint16)(unsafe.Pointer(argv)), argc)
}

// argvToStrings converts a CommandLineToArgvW result (a C-style array of
// UTF-16 string pointers) into Go strings.
func argvToStrings(argv **uint16, argc int32) []string {
	ptrs := unsafe.Slice(argv, argc)
	args := make([]string, 0, argc)
	for _, p := range ptrs {
		if p == nil {
			continue
		}
		args = append(args, windows.UTF16PtrToString(p))
	}
	return args
}
