//go:build windows

package platform

import (
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/shirou/gopsutil/process"
)

// Core Audio identifiers.
var (
	clsidMMDeviceEnumerator   = ole.NewGUID("{BCDE0395-E52F-467C-8E3D-C4579291692E}")
	iidIMMDeviceEnumerator    = ole.NewGUID("{A95664D2-9614-4F35-A746-DE8DB63617E6}")
	iidIAudioMeterInformation = ole.NewGUID("{C02216F6-8C67-4B5B-9D00-D008E73E0064}")
	iidIAudioSessionManager2  = ole.NewGUID("{77AA99A0-1BD6-484F-8BC7-2C654C9A9B6F}")
	iidIAudioSessionControl2  = ole.NewGUID("{BFB7FF88-7239-4FC9-8FA2-07C950BE9C6D}")
)

const (
	dataFlowRender = 0
	roleMultimedia = 1

	audioSessionStateActive = 1

	// Peak levels below this are treated as silence.
	peakThreshold = 0.005
)

// InitCOM prepares COM for the calling goroutine. The sampling loop locks
// its OS thread and calls this once before probing audio.
func InitCOM() error {
	return ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED)
}

// ReleaseCOM undoes InitCOM.
func ReleaseCOM() {
	ole.CoUninitialize()
}

// AudioPeaking reads the default render device's meter.
func (p *WindowsProbe) AudioPeaking() bool {
	enum, err := newDeviceEnumerator()
	if err != nil {
		return false
	}
	defer enum.release()

	device, err := enum.defaultRenderDevice()
	if err != nil {
		return false
	}
	defer device.release()

	meter, err := device.audioMeter()
	if err != nil {
		return false
	}
	defer meter.release()

	peak, err := meter.peakValue()
	return err == nil && peak > peakThreshold
}

// AudioSessionApp walks the device's audio sessions and returns the process
// name of the first active one.
func (p *WindowsProbe) AudioSessionApp() (string, bool) {
	enum, err := newDeviceEnumerator()
	if err != nil {
		return "", false
	}
	defer enum.release()

	device, err := enum.defaultRenderDevice()
	if err != nil {
		return "", false
	}
	defer device.release()

	manager, err := device.sessionManager()
	if err != nil {
		return "", false
	}
	defer manager.release()

	sessions, err := manager.sessionEnumerator()
	if err != nil {
		return "", false
	}
	defer sessions.release()

	count, err := sessions.count()
	if err != nil {
		return "", false
	}

	for i := 0; i < count; i++ {
		control, err := sessions.session(i)
		if err != nil {
			continue
		}
		name, ok := activeSessionProcessName(control)
		control.release()
		if ok {
			return name, true
		}
	}
	return "", false
}

// activeSessionProcessName resolves an active, non-system session to its
// owning process name with the extension trimmed.
func activeSessionProcessName(control *audioSessionControl) (string, bool) {
	control2, err := control.queryControl2()
	if err != nil {
		return "", false
	}
	defer control2.release()

	state, err := control2.state()
	if err != nil || state != audioSessionStateActive {
		return "", false
	}
	if control2.isSystemSounds() {
		return "", false
	}
	pid, err := control2.processID()
	if err != nil || pid == 0 {
		return "", false
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", false
	}
	name, err := proc.Name()
	if err != nil || name == "" {
		return "", false
	}
	return strings.TrimSuffix(name, filepath.Ext(name)), true
}

// Hand-rolled vtables for the Core Audio interfaces go-ole does not wrap.

type comVtblBase struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
}

type deviceEnumerator struct {
	vtbl *deviceEnumeratorVtbl
}

type deviceEnumeratorVtbl struct {
	comVtblBase
	enumAudioEndpoints                     uintptr
	getDefaultAudioEndpoint                uintptr
	getDevice                              uintptr
	registerEndpointNotificationCallback   uintptr
	unregisterEndpointNotificationCallback uintptr
}

type mmDevice struct {
	vtbl *mmDeviceVtbl
}

type mmDeviceVtbl struct {
	comVtblBase
	activate          uintptr
	openPropertyStore uintptr
	getID             uintptr
	getState          uintptr
}

type audioMeter struct {
	vtbl *audioMeterVtbl
}

type audioMeterVtbl struct {
	comVtblBase
	getPeakValue            uintptr
	getMeteringChannelCount uintptr
	getChannelsPeakValues   uintptr
	queryHardwareSupport    uintptr
}

type audioSessionManager struct {
	vtbl *audioSessionManagerVtbl
}

type audioSessionManagerVtbl struct {
	comVtblBase
	getAudioSessionControl        uintptr
	getSimpleAudioVolume          uintptr
	getSessionEnumerator          uintptr
	registerSessionNotification   uintptr
	unregisterSessionNotification uintptr
	registerDuckNotification      uintptr
	unregisterDuckNotification    uintptr
}

type audioSessionEnumerator struct {
	vtbl *audioSessionEnumeratorVtbl
}

type audioSessionEnumeratorVtbl struct {
	comVtblBase
	getCount   uintptr
	getSession uintptr
}

type audioSessionControl struct {
	vtbl *audioSessionControlVtbl
}

type audioSessionControlVtbl struct {
	comVtblBase
	getState                           uintptr
	getDisplayName                     uintptr
	setDisplayName                     uintptr
	getIconPath                        uintptr
	setIconPath                        uintptr
	getGroupingParam                   uintptr
	setGroupingParam                   uintptr
	registerAudioSessionNotification   uintptr
	unregisterAudioSessionNotification uintptr
}

type audioSessionControl2 struct {
	vtbl *audioSessionControl2Vtbl
}

type audioSessionControl2Vtbl struct {
	audioSessionControlVtbl
	getSessionIdentifier         uintptr
	getSessionInstanceIdentifier uintptr
	getProcessID                 uintptr
	isSystemSoundsSession        uintptr
	setDuckingPreference         uintptr
}

func newDeviceEnumerator() (*deviceEnumerator, error) {
	unknown, err := ole.CreateInstance(clsidMMDeviceEnumerator, iidIMMDeviceEnumerator)
	if err != nil {
		return nil, err
	}
	return (*deviceEnumerator)(unsafe.Pointer(unknown)), nil
}

func hresult(hr uintptr) error {
	if int32(hr) < 0 {
		return ole.NewError(hr)
	}
	return nil
}

func comRelease(obj, releaseAddr uintptr) {
	syscall.SyscallN(releaseAddr, obj)
}

func (e *deviceEnumerator) release() {
	comRelease(uintptr(unsafe.Pointer(e)), e.vtbl.release)
}

func (e *deviceEnumerator) defaultRenderDevice() (*mmDevice, error) {
	var device *mmDevice
	hr, _, _ := syscall.SyscallN(e.vtbl.getDefaultAudioEndpoint,
		uintptr(unsafe.Pointer(e)),
		dataFlowRender,
		roleMultimedia,
		uintptr(unsafe.Pointer(&device)))
	if err := hresult(hr); err != nil {
		return nil, err
	}
	return device, nil
}

func (d *mmDevice) release() {
	comRelease(uintptr(unsafe.Pointer(d)), d.vtbl.release)
}

func (d *mmDevice) activateInterface(iid *ole.GUID) (uintptr, error) {
	var ptr uintptr
	hr, _, _ := syscall.SyscallN(d.vtbl.activate,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(ole.CLSCTX_ALL),
		0,
		uintptr(unsafe.Pointer(&ptr)))
	if err := hresult(hr); err != nil {
		return 0, err
	}
	return ptr, nil
}

func (d *mmDevice) audioMeter() (*audioMeter, error) {
	ptr, err := d.activateInterface(iidIAudioMeterInformation)
	if err != nil {
		return nil, err
	}
	return (*audioMeter)(unsafe.Pointer(ptr)), nil
}

func (d *mmDevice) sessionManager() (*audioSessionManager, error) {
	ptr, err := d.activateInterface(iidIAudioSessionManager2)
	if err != nil {
		return nil, err
	}
	return (*audioSessionManager)(unsafe.Pointer(ptr)), nil
}

func (m *audioMeter) release() {
	comRelease(uintptr(unsafe.Pointer(m)), m.vtbl.release)
}

func (m *audioMeter) peakValue() (float32, error) {
	var peak float32
	hr, _, _ := syscall.SyscallN(m.vtbl.getPeakValue,
		uintptr(unsafe.Pointer(m)),
		uintptr(unsafe.Pointer(&peak)))
	if err := hresult(hr); err != nil {
		return 0, err
	}
	return peak, nil
}

func (m *audioSessionManager) release() {
	comRelease(uintptr(unsafe.Pointer(m)), m.vtbl.release)
}

func (m *audioSessionManager) sessionEnumerator() (*audioSessionEnumerator, error) {
	var enum *audioSessionEnumerator
	hr, _, _ := syscall.SyscallN(m.vtbl.getSessionEnumerator,
		uintptr(unsafe.Pointer(m)),
		uintptr(unsafe.Pointer(&enum)))
	if err := hresult(hr); err != nil {
		return nil, err
	}
	return enum, nil
}

func (e *audioSessionEnumerator) release() {
	comRelease(uintptr(unsafe.Pointer(e)), e.vtbl.release)
}

func (e *audioSessionEnumerator) count() (int, error) {
	var count int32
	hr, _, _ := syscall.SyscallN(e.vtbl.getCount,
		uintptr(unsafe.Pointer(e)),
		uintptr(unsafe.Pointer(&count)))
	if err := hresult(hr); err != nil {
		return 0, err
	}
	return int(count), nil
}

func (e *audioSessionEnumerator) session(index int) (*audioSessionControl, error) {
	var control *audioSessionControl
	hr, _, _ := syscall.SyscallN(e.vtbl.getSession,
		uintptr(unsafe.Pointer(e)),
		uintptr(int32(index)),
		uintptr(unsafe.Pointer(&control)))
	if err := hresult(hr); err != nil {
		return nil, err
	}
	return control, nil
}

func (c *audioSessionControl) release() {
	comRelease(uintptr(unsafe.Pointer(c)), c.vtbl.release)
}

func (c *audioSessionControl) queryControl2() (*audioSessionControl2, error) {
	var control2 *audioSessionControl2
	hr, _, _ := syscall.SyscallN(c.vtbl.queryInterface,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(iidIAudioSessionControl2)),
		uintptr(unsafe.Pointer(&control2)))
	if err := hresult(hr); err != nil {
		return nil, err
	}
	return control2, nil
}

func (c *audioSessionControl2) release() {
	comRelease(uintptr(unsafe.Pointer(c)), c.vtbl.release)
}

func (c *audioSessionControl2) state() (int32, error) {
	var state int32
	hr, _, _ := syscall.SyscallN(c.vtbl.getState,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(&state)))
	if err := hresult(hr); err != nil {
		return 0, err
	}
	return state, nil
}

func (c *audioSessionControl2) processID() (uint32, error) {
	var pid uint32
	hr, _, _ := syscall.SyscallN(c.vtbl.getProcessID,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(&pid)))
	if err := hresult(hr); err != nil {
		return 0, err
	}
	return pid, nil
}

func (c *audioSessionControl2) isSystemSounds() bool {
	hr, _, _ := syscall.SyscallN(c.vtbl.isSystemSoundsSession,
		uintptr(unsafe.Pointer(c)))
	// S_OK means this session plays system sounds; S_FALSE means it
	// does not.
	return hr == 0
}
