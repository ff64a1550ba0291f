package captcha

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Envelope is the {status, request} shape returned by both in.php and
// res.php when json=1 is sent.
type Envelope struct {
	Status    int64
	Request   string
	ErrorText string
}

func (e Envelope) String() string {
	if e.ErrorText != "" {
		return fmt.Sprintf("{status:%d request:%q error_text:%q}", e.Status, e.Request, e.ErrorText)
	}
	return fmt.Sprintf("{status:%d request:%q}", e.Status, e.Request)
}

func decodeEnvelope(stage Stage, body []byte) (Envelope, error) {
	var envelope Envelope

	fail := func(err error) (Envelope, error) {
		return Envelope{}, &DecodeError{Stage: stage, Body: string(body), Err: err}
	}

	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return fail(err)
	}

	status := v.Get("status")
	if status == nil {
		return fail(errors.New(`missing "status" field`))
	}
	if envelope.Status, err = status.Int64(); err != nil {
		return fail(errors.Wrap(err, `"status" field`))
	}

	request := v.Get("request")
	if request == nil {
		return fail(errors.New(`missing "request" field`))
	}
	requestBytes, err := request.StringBytes()
	if err != nil {
		return fail(errors.Wrap(err, `"request" field`))
	}
	envelope.Request = string(requestBytes)

	if errorText := v.Get("error_text"); errorText != nil && errorText.Type() == fastjson.TypeString {
		envelope.ErrorText = string(errorText.GetStringBytes())
	}

	return envelope, nil
}
