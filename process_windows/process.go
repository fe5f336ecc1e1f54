//go:build windows

// Package process_windows implements process.Target for a live Windows
// process located by the exact title of one of its top-level windows.
package process_windows

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"memprobe/process"
	"memprobe/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

var (
	moduser32                  = windows.NewLazySystemDLL("user32.dll")
	modkernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procFindWindowW            = moduser32.NewProc("FindWindowW")
	procGetWindowThreadProcess = moduser32.NewProc("GetWindowThreadProcessId")
	procGetNativeSystemInfo    = modkernel32.NewProc("GetNativeSystemInfo")
)

const (
	processorArchitectureAMD64 = 9
	processorArchitectureARM64 = 12
	processorArchitectureIA64  = 6
)

// systemInfo mirrors SYSTEM_INFO; only the architecture word is used.
type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// WindowsProcess implements the process.Target interface. It is the sole
// owner of the process handle; Close releases it exactly once.
type WindowsProcess struct {
	name       string
	pid        uint32
	handle     windows.Handle
	is64       bool
	moduleBase process.MemoryAddress
	roRegions  []memory_map.Region
	log        *logger.Logger
	mu         sync.Mutex
}

// AttachWindow finds the top-level window whose title exactly matches
// windowName, opens the owning process read-only, and captures the session
// state: process name, bitness, main-module base, and the read-only
// committed regions.
func AttachWindow(windowName string) (*WindowsProcess, error) {
	hwnd, err := findWindow(windowName)
	if err != nil {
		return nil, err
	}

	var pid uint32
	procGetWindowThreadProcess.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return nil, fmt.Errorf("%w: window has no owning process", process.ErrProcessNotFound)
	}

	handle, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", process.ErrOpenFailed, err)
	}

	p := &WindowsProcess{
		pid:    pid,
		handle: handle,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
	}

	// Any failure past this point must release the handle.
	if err := p.initSession(); err != nil {
		p.Close()
		return nil, err
	}

	p.log.Infoln("Attached to", p.name, "pid", p.pid)
	return p, nil
}

func findWindow(title string) (windows.HWND, error) {
	title16, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", process.ErrProcessNotFound, err)
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title16)))
	if hwnd == 0 {
		return 0, process.ErrProcessNotFound
	}
	return windows.HWND(hwnd), nil
}

func (p *WindowsProcess) initSession() error {
	name, err := moduleBaseName(p.handle, 0)
	if err != nil {
		return fmt.Errorf("%w: reading process name: %v", process.ErrOpenFailed, err)
	}
	p.name = name

	is64, err := targetIs64Bit(p.handle)
	if err != nil {
		return fmt.Errorf("%w: determining bitness: %v", process.ErrOpenFailed, err)
	}
	p.is64 = is64

	base, err := findModuleBase(p.handle, p.name)
	if err != nil {
		return err
	}
	p.moduleBase = base

	ro, err := p.Regions(memory_map.ProtectReadOnly)
	if err != nil {
		return err
	}
	p.roRegions = ro

	return nil
}

func moduleBaseName(handle windows.Handle, module windows.Handle) (string, error) {
	var buf [260]uint16
	if err := windows.GetModuleBaseName(handle, module, &buf[0], uint32(len(buf))); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:]), nil
}

// targetIs64Bit reports the image bitness: a process under WOW64 emulation
// is 32-bit; otherwise it matches the native architecture.
func targetIs64Bit(handle windows.Handle) (bool, error) {
	var isWow64 bool
	if err := windows.IsWow64Process(handle, &isWow64); err != nil {
		return false, err
	}
	if isWow64 {
		return false, nil
	}

	var si systemInfo
	procGetNativeSystemInfo.Call(uintptr(unsafe.Pointer(&si)))
	switch si.ProcessorArchitecture {
	case processorArchitectureAMD64, processorArchitectureARM64, processorArchitectureIA64:
		return true, nil
	}
	return false, nil
}

// findModuleBase walks the loaded modules and returns the load address of
// the one whose base name matches processName.
func findModuleBase(handle windows.Handle, processName string) (process.MemoryAddress, error) {
	var modules [1024]windows.Handle
	var needed uint32
	if err := windows.EnumProcessModules(handle, &modules[0], uint32(unsafe.Sizeof(modules[0]))*uint32(len(modules)), &needed); err != nil {
		return 0, fmt.Errorf("%w: %v", process.ErrBaseAddressNotFound, err)
	}

	count := int(needed / uint32(unsafe.Sizeof(modules[0])))
	if count > len(modules) {
		count = len(modules)
	}

	for i := 0; i < count; i++ {
		name, err := moduleBaseName(handle, modules[i])
		if err != nil {
			continue
		}
		if !strings.EqualFold(name, processName) {
			continue
		}
		var mi windows.ModuleInfo
		if err := windows.GetModuleInformation(handle, modules[i], &mi, uint32(unsafe.Sizeof(mi))); err != nil {
			return 0, fmt.Errorf("%w: %v", process.ErrBaseAddressNotFound, err)
		}
		return process.MemoryAddress(mi.BaseOfDll), nil
	}

	return 0, process.ErrBaseAddressNotFound
}

func (p *WindowsProcess) Name() string {
	return p.name
}

func (p *WindowsProcess) PID() uint32 {
	return p.pid
}

func (p *WindowsProcess) Is64Bit() bool {
	return p.is64
}

func (p *WindowsProcess) PointerSize() int {
	if p.is64 {
		return 8
	}
	return 4
}

func (p *WindowsProcess) ModuleBase() process.MemoryAddress {
	return p.moduleBase
}

func (p *WindowsProcess) ReadOnlyRegions() []memory_map.Region {
	result := make([]memory_map.Region, len(p.roRegions))
	copy(result, p.roRegions)
	return result
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
		p.log.Infoln("Process closed")
	}
	return nil
}
