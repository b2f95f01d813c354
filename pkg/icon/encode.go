// ABOUTME: Icon encoders for tray handoff
// ABOUTME: PNG for most platforms, PNG-in-ICO for Windows
package icon

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
)

// EncodePNG encodes img as PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("icon: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeICO wraps the PNG encoding of img in a single-image ICO container
func EncodeICO(img image.Image) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > 256 || b.Dy() > 256 {
		return nil, fmt.Errorf("icon: %dx%d exceeds ico limit of 256x256", b.Dx(), b.Dy())
	}

	payload, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}

	const headerSize = 6
	const entrySize = 16

	var buf bytes.Buffer
	buf.Grow(headerSize + entrySize + len(payload))

	// ICONDIR: reserved, type (1 = icon), count
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})

	// ICONDIRENTRY: 0 encodes 256
	buf.WriteByte(byte(b.Dx() % 256))
	buf.WriteByte(byte(b.Dy() % 256))
	buf.WriteByte(0) // palette size
	buf.WriteByte(0) // reserved
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))  // colour planes
	_ = binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerSize+entrySize))

	buf.Write(payload)
	return buf.Bytes(), nil
}

// EncodeForOS picks the format the tray implementation of goos accepts
func EncodeForOS(img image.Image, goos string) ([]byte, error) {
	if goos == "windows" {
		return EncodeICO(img)
	}
	return EncodePNG(img)
}
