package driver

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeSource strips a leading byte order mark so the first line classifies
// like any other. UTF-16 input (detected by its BOM) is decoded to UTF-8.
// hadBOM is true only for a UTF-8 BOM, which encodeSource puts back.
func decodeSource(data []byte) (text string, hadBOM bool, err error) {
	hadBOM = bytes.HasPrefix(data, utf8BOM)
	if !hadBOM && !hasUTF16BOM(data) {
		return string(data), false, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", false, err
	}
	return string(out), hadBOM, nil
}

func encodeSource(text string, hadBOM bool) []byte {
	if !hadBOM {
		return []byte(text)
	}
	out := make([]byte, 0, len(utf8BOM)+len(text))
	out = append(out, utf8BOM...)
	return append(out, text...)
}

func hasUTF16BOM(data []byte) bool {
	return len(data) >= 2 && ((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE))
}
