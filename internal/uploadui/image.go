package uploadui

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MaxImageBytes is the largest file accepted for recognition.
const MaxImageBytes = 5 << 20

const (
	AlertNotImage  = "请上传图片文件 (JPG, PNG)"
	AlertTooLarge  = "文件大小不能超过5MB"
	AlertRecognize = "识别过程中发生错误，请重试"
)

var (
	ErrNotImage = errors.New(AlertNotImage)
	ErrTooLarge = errors.New(AlertTooLarge)
)

// File is a user-picked file as the intake surface sees it.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// SniffMIME returns the declared type, or one detected from the bytes when
// nothing was declared.
func SniffMIME(f File) string {
	if mt := strings.TrimSpace(f.MIMEType); mt != "" {
		return strings.ToLower(mt)
	}
	if len(f.Data) >= 2 && f.Data[0] == 0xFF && f.Data[1] == 0xD8 {
		return "image/jpeg"
	}
	return http.DetectContentType(f.Data)
}

// Validate rejects non-image files and files over MaxImageBytes, in that order.
func Validate(f File) error {
	if !strings.HasPrefix(SniffMIME(f), "image/") {
		return ErrNotImage
	}
	if len(f.Data) > MaxImageBytes {
		return ErrTooLarge
	}
	return nil
}

// EncodeDataURL renders b as a base64 data URL.
func EncodeDataURL(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURL returns the payload of a data URL (or of bare base64) and the
// MIME type named in its prefix.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var mime string
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, "", errors.New("malformed data url")
		}
		meta := s[len("data:"):idx]
		if semi := strings.IndexByte(meta, ';'); semi >= 0 {
			mime = meta[:semi]
		} else {
			mime = meta
		}
		s = s[idx+1:]
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		if b2, err2 := base64.URLEncoding.DecodeString(s); err2 == nil {
			return b2, mime, nil
		}
		return nil, "", err
	}
	return b, mime, nil
}
