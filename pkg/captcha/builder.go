package captcha

import (
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
)

var ErrCaptchaImageNotProvided = errors.New("captcha image is not provided")

type InvalidBase64Error struct {
	Source string
	Err    error
}

func (e *InvalidBase64Error) Error() string {
	return fmt.Sprintf("invalid base64 captcha image data: %v", e.Err)
}

func (e *InvalidBase64Error) Unwrap() error {
	return e.Err
}

type captchaDataKind int

const (
	uploadFile captchaDataKind = 1 + iota
	imageBase64
)

type captchaData struct {
	kind  captchaDataKind
	value string
}

// Captcha is a finished payload, ready to be passed to Solve.
type Captcha struct {
	data          captchaData
	caseSensitive bool
}

func (c *Captcha) CaseSensitive() bool {
	return c.caseSensitive
}

func (c *Captcha) String() string {
	switch c.data.kind {
	case uploadFile:
		return fmt.Sprintf("file:%s", c.data.value)
	case imageBase64:
		return fmt.Sprintf("base64:%d bytes", len(c.data.value))
	}
	return "none"
}

type CaptchaBuilder struct {
	data          *captchaData
	caseSensitive bool
	err           error
}

func NewCaptchaBuilder() *CaptchaBuilder {
	return &CaptchaBuilder{}
}

// SetUploadFile makes the payload a file upload. The file is opened when
// the submit request is built, not here.
func (b *CaptchaBuilder) SetUploadFile(path string) *CaptchaBuilder {
	b.data = &captchaData{kind: uploadFile, value: path}
	return b
}

func (b *CaptchaBuilder) SetImageDataBase64(s string) *CaptchaBuilder {
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		if b.err == nil {
			b.err = &InvalidBase64Error{Source: s, Err: err}
		}
		return b
	}
	b.data = &captchaData{kind: imageBase64, value: s}
	return b
}

func (b *CaptchaBuilder) SetImageDataEncodeAsBase64(data []byte) *CaptchaBuilder {
	b.data = &captchaData{kind: imageBase64, value: base64.StdEncoding.EncodeToString(data)}
	return b
}

func (b *CaptchaBuilder) SetCaseSensitive(caseSensitive bool) *CaptchaBuilder {
	b.caseSensitive = caseSensitive
	return b
}

// Finish returns the first encoding error recorded by a setter, or
// ErrCaptchaImageNotProvided when no payload source was set.
func (b *CaptchaBuilder) Finish() (*Captcha, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.data == nil {
		return nil, ErrCaptchaImageNotProvided
	}
	return &Captcha{data: *b.data, caseSensitive: b.caseSensitive}, nil
}
