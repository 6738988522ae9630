//go:build windows

package platform

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	gdi32   = windows.NewLazySystemDLL("gdi32.dll")

	procExtractIconExW     = shell32.NewProc("ExtractIconExW")
	procDestroyIcon        = user32.NewProc("DestroyIcon")
	procGetIconInfo        = user32.NewProc("GetIconInfo")
	procGetDIBits          = gdi32.NewProc("GetDIBits")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
)

type iconInfo struct {
	fIcon    uint32
	xHotspot uint32
	yHotspot uint32
	hbmMask  syscall.Handle
	hbmColor syscall.Handle
}

type bitmapInfoHeader struct {
	biSize          uint32
	biWidth         int32
	biHeight        int32
	biPlanes        uint16
	biBitCount      uint16
	biCompression   uint32
	biSizeImage     uint32
	biXPelsPerMeter int32
	biYPelsPerMeter int32
	biClrUsed       uint32
	biClrImportant  uint32
}

// iconCache memoizes extracted icons per executable path. Failed
// extractions are cached too so a broken exe is probed only once.
type iconCache struct {
	mu    sync.Mutex
	icons map[string]string
}

func newIconCache() *iconCache {
	return &iconCache{icons: make(map[string]string)}
}

func (c *iconCache) get(exePath string) string {
	if exePath == "" {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if dataURL, ok := c.icons[exePath]; ok {
		return dataURL
	}
	dataURL := extractIconDataURL(exePath)
	c.icons[exePath] = dataURL
	return dataURL
}

// extractIconDataURL pulls the executable's large icon and encodes it as a
// PNG data URL.
func extractIconDataURL(exePath string) string {
	pathPtr, err := syscall.UTF16PtrFromString(exePath)
	if err != nil {
		return ""
	}

	var hIcon uintptr
	ret, _, _ := procExtractIconExW.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		0,
		uintptr(unsafe.Pointer(&hIcon)),
		0,
		1,
	)
	if ret == 0 || hIcon == 0 {
		return ""
	}
	defer procDestroyIcon.Call(hIcon)

	var info iconInfo
	ret, _, _ = procGetIconInfo.Call(hIcon, uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return ""
	}
	defer procDeleteObject.Call(uintptr(info.hbmColor))
	defer procDeleteObject.Call(uintptr(info.hbmMask))

	return bitmapToDataURL(info.hbmColor)
}

// bitmapToDataURL reads the bitmap's pixels via GetDIBits and encodes them
// as PNG.
func bitmapToDataURL(hBitmap syscall.Handle) string {
	hdc, _, _ := procCreateCompatibleDC.Call(0)
	if hdc == 0 {
		return ""
	}
	defer procDeleteDC.Call(hdc)

	var bmi bitmapInfoHeader
	bmi.biSize = uint32(unsafe.Sizeof(bmi))

	// First call fills in the dimensions only.
	ret, _, _ := procGetDIBits.Call(
		hdc,
		uintptr(hBitmap),
		0, 0,
		0,
		uintptr(unsafe.Pointer(&bmi)),
		0,
	)
	if ret == 0 {
		return ""
	}

	width := int(bmi.biWidth)
	height := int(bmi.biHeight)
	if height < 0 {
		height = -height
	}
	if width <= 0 || height <= 0 {
		return ""
	}

	bmi.biBitCount = 32
	bmi.biCompression = 0 // BI_RGB
	bmi.biSizeImage = uint32(width * height * 4)

	buffer := make([]byte, bmi.biSizeImage)
	ret, _, _ = procGetDIBits.Call(
		hdc,
		uintptr(hBitmap),
		0,
		uintptr(height),
		uintptr(unsafe.Pointer(&buffer[0])),
		uintptr(unsafe.Pointer(&bmi)),
		0,
	)
	if ret == 0 {
		return ""
	}

	img := imageFromBGRA(buffer, width, height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// imageFromBGRA converts bottom-up BGRA pixel data into an RGBA image.
func imageFromBGRA(data []byte, width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		srcY := height - 1 - y
		for x := 0; x < width; x++ {
			srcOffset := (srcY*width + x) * 4
			dstOffset := (y*width + x) * 4
			if srcOffset+3 >= len(data) || dstOffset+3 >= len(img.Pix) {
				continue
			}
			img.Pix[dstOffset+0] = data[srcOffset+2]
			img.Pix[dstOffset+1] = data[srcOffset+1]
			img.Pix[dstOffset+2] = data[srcOffset+0]
			img.Pix[dstOffset+3] = data[srcOffset+3]
		}
	}
	return img
}
