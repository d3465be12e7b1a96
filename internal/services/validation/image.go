package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

const MaxImageBytes = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks declared type, sniffed type, size and that the
// bytes actually decode as an image.
func ValidateImage(contentType string, data []byte) string {
	if len(data) == 0 {
		return "Vui lòng chọn ảnh"
	}
	if len(data) > MaxImageBytes {
		return fmt.Sprintf("Ảnh không được vượt quá %d MB", MaxImageBytes>>20)
	}
	if !allowedImageTypes[contentType] || !allowedImageTypes[http.DetectContentType(data)] {
		return "Chỉ chấp nhận ảnh JPG, PNG, GIF hoặc WEBP"
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "Tệp ảnh bị hỏng hoặc không đọc được"
	}
	return ""
}
