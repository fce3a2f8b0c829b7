//go:build !windows

package trayicon

// encodeNative returns PNG data unchanged; macOS and the StatusNotifierItem
// hosts render PNG directly.
func encodeNative(pngData []byte) ([]byte, error) {
	return pngData, nil
}
