package captcha

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

func regsense(caseSensitive bool) string {
	if caseSensitive {
		return "1"
	}
	return "0"
}

// prepareSubmit builds the in.php request. For file uploads the file is
// opened here and streamed into the body by a goroutine which closes it once
// the body is fully written or the reader side is closed.
func (a *Api) prepareSubmit(ctx context.Context, c *Captcha) (*http.Request, error) {
	switch c.data.kind {
	case uploadFile:
		return a.prepareUploadFile(ctx, c)
	case imageBase64:
		return a.prepareBase64(ctx, c)
	}
	return nil, ErrCaptchaImageNotProvided
}

func (a *Api) prepareUploadFile(ctx context.Context, c *Captcha) (*http.Request, error) {
	path := c.data.value

	file, err := os.Open(path)
	if err != nil {
		return nil, &CaptchaImageFileOpenError{Path: path, Err: err}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.params.APIRequestURL, pr)
	if err != nil {
		file.Close()
		pr.Close()
		return nil, errors.Wrap(err, "build submit request")
	}
	req.Header.Set("content-type", mw.FormDataContentType())

	fields := [][2]string{
		{"method", "post"},
		{"key", a.token},
		{"json", "1"},
		{"regsense", regsense(c.caseSensitive)},
	}

	go func() {
		defer file.Close()

		err := func() error {
			for _, f := range fields {
				if err := mw.WriteField(f[0], f[1]); err != nil {
					return err
				}
			}
			part, err := mw.CreateFormFile("file", filepath.Base(path))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file); err != nil {
				return errors.Wrapf(err, "read captcha image file %s", path)
			}
			return mw.Close()
		}()

		pw.CloseWithError(err)
	}()

	return req, nil
}

func (a *Api) prepareBase64(ctx context.Context, c *Captcha) (*http.Request, error) {
	form := url.Values{}
	form.Set("method", "base64")
	form.Set("key", a.token)
	form.Set("json", "1")
	form.Set("regsense", regsense(c.caseSensitive))
	form.Set("body", c.data.value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.params.APIRequestURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build submit request")
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	return req, nil
}

func (a *Api) preparePoll(ctx context.Context, id string) (*http.Request, error) {
	u, err := url.Parse(a.params.APIResultURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse result url")
	}

	query := u.Query()
	query.Set("key", a.token)
	query.Set("action", "get")
	query.Set("id", id)
	query.Set("json", "1")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build poll request")
	}

	return req, nil
}
