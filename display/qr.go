package display

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// ShareQRCode encodes a location share string (see LocationShare) as a PNG QR
// code of size x size pixels.
func ShareQRCode(share string, size int) ([]byte, error) {
	if share == "" {
		return nil, fmt.Errorf("empty location share")
	}
	png, err := qrcode.Encode(share, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode QR code: %w", err)
	}
	return png, nil
}
