//go:build windows

package platform

import (
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"github.com/shirou/gopsutil/process"
	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	psapi    = windows.NewLazySystemDLL("psapi.dll")

	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetLastInputInfo         = user32.NewProc("GetLastInputInfo")
	procGetTickCount             = kernel32.NewProc("GetTickCount")
	procOpenProcess              = kernel32.NewProc("OpenProcess")
	procCloseHandle              = kernel32.NewProc("CloseHandle")
	procGetModuleFileNameExW     = psapi.NewProc("GetModuleFileNameExW")
)

// WindowsProbe implements Probe on the Win32 API.
type WindowsProbe struct {
	icons *iconCache
}

var _ Probe = (*WindowsProbe)(nil)

// NewProbe creates the Windows desktop probe.
func NewProbe() Probe {
	return &WindowsProbe{icons: newIconCache()}
}

// ActiveWindow returns the focused window with its owning process name.
func (p *WindowsProbe) ActiveWindow() (*WindowInfo, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil, false
	}

	var processID uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&processID)))
	if processID == 0 {
		return nil, false
	}

	exePath := processExePath(processID)
	if exePath == "" {
		return nil, false
	}
	filename := filepath.Base(exePath)
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	return &WindowInfo{
		AppName: name,
		Title:   windowText(hwnd),
		ExePath: exePath,
	}, true
}

// IdleSeconds derives idle time from the last input tick.
func (p *WindowsProbe) IdleSeconds() float64 {
	var lii struct {
		cbSize uint32
		dwTime uint32
	}
	lii.cbSize = uint32(unsafe.Sizeof(lii))

	ret, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&lii)))
	if ret == 0 {
		return 0
	}
	tick, _, _ := procGetTickCount.Call()

	// Tick counts wrap at 32 bits; uint32 subtraction handles that.
	elapsed := uint32(tick) - lii.dwTime
	return float64(elapsed) / 1000.0
}

// BackgroundMediaTitle labels background playback with a window title
// owned by the audio app itself. Only windows belonging to that process's
// PIDs are considered, and the focused window's title is never reused, so
// a media page open in the foreground browser cannot be attributed to the
// audio app.
func (p *WindowsProbe) BackgroundMediaTitle(audioApp, activeTitle string) (string, bool) {
	pids := processIDsByName(audioApp)
	if len(pids) == 0 {
		return "", false
	}

	picker := &mediaTitlePicker{activeTitle: activeTitle}
	callback := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		var windowPid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&windowPid)))
		if !pids[windowPid] {
			return 1
		}
		if !picker.consider(windowText(hwnd)) {
			return 0
		}
		return 1
	})

	procEnumWindows.Call(callback, 0)
	return picker.found, picker.found != ""
}

// processIDsByName collects the PIDs of every process with the given
// base name (extension ignored, case-insensitive).
func processIDsByName(name string) map[uint32]bool {
	pids := make(map[uint32]bool)
	if name == "" {
		return pids
	}
	procs, err := process.Processes()
	if err != nil {
		return pids
	}
	for _, proc := range procs {
		pname, err := proc.Name()
		if err != nil {
			continue
		}
		pname = strings.TrimSuffix(pname, filepath.Ext(pname))
		if strings.EqualFold(pname, name) {
			pids[uint32(proc.Pid)] = true
		}
	}
	return pids
}

// AppIcon returns the cached PNG data URL for an executable's icon.
func (p *WindowsProbe) AppIcon(exePath string) string {
	return p.icons.get(exePath)
}

func windowText(hwnd uintptr) string {
	var buf [512]uint16
	length, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if length == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:length])
}

// processExePath resolves a PID to its executable path.
func processExePath(processID uint32) string {
	const access = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ
	hProcess, _, _ := procOpenProcess.Call(access, 0, uintptr(processID))
	if hProcess == 0 {
		return ""
	}
	defer procCloseHandle.Call(hProcess)

	var buffer [windows.MAX_PATH]uint16
	ret, _, _ := procGetModuleFileNameExW.Call(hProcess, 0, uintptr(unsafe.Pointer(&buffer[0])), windows.MAX_PATH)
	if ret == 0 {
		return ""
	}
	return windows.UTF16ToString(buffer[:])
}
