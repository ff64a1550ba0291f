package captcha

import (
	"fmt"
)

type Stage int

const (
	StageSubmit Stage = 1 + iota
	StagePoll
)

func (s Stage) String() string {
	switch s {
	case StageSubmit:
		return "submit"
	case StagePoll:
		return "poll"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type CaptchaImageFileOpenError struct {
	Path string
	Err  error
}

func (e *CaptchaImageFileOpenError) Error() string {
	return fmt.Sprintf("open captcha image file %s: %v", e.Path, e.Err)
}

func (e *CaptchaImageFileOpenError) Unwrap() error {
	return e.Err
}

// TransportError covers connection failures, body read failures and non-OK
// statuses. StatusCode is zero when no response was received.
type TransportError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected http status %d", e.Stage, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type DecodeError struct {
	Stage Stage
	Body  string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response %q: %v", e.Stage, e.Body, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnexpectedEnvelopeError carries an envelope whose status/request pair is
// not known for the stage it was received in.
type UnexpectedEnvelopeError struct {
	Stage    Stage
	Envelope Envelope
}

func (e *UnexpectedEnvelopeError) Error() string {
	return fmt.Sprintf("%s: unexpected response %s", e.Stage, e.Envelope)
}

type SubmitCode int

const (
	SubmitWrongUserKey SubmitCode = 1 + iota
	SubmitKeyDoesNotExist
	SubmitZeroBalance
	SubmitPageURL
	SubmitNoSlotAvailable
	SubmitZeroCaptchaFilesize
	SubmitTooBigCaptchaFilesize
	SubmitWrongFileExtension
	SubmitImageTypeNotSupported
	SubmitUpload
	SubmitIPNotAllowed
	SubmitIPBanned
	SubmitBadTokenOrPageURL
	SubmitGoogleKey
	SubmitWrongGoogleKey
	SubmitCaptchaImageBlocked
	SubmitTooManyBadImages
	SubmitMaxUserTurn
	SubmitBadParameters
	SubmitBadProxy
)

var submitCodeText = [...]string{
	SubmitWrongUserKey:          "ERROR_WRONG_USER_KEY",
	SubmitKeyDoesNotExist:       "ERROR_KEY_DOES_NOT_EXIST",
	SubmitZeroBalance:           "ERROR_ZERO_BALANCE",
	SubmitPageURL:               "ERROR_PAGEURL",
	SubmitNoSlotAvailable:       "ERROR_NO_SLOT_AVAILABLE",
	SubmitZeroCaptchaFilesize:   "ERROR_ZERO_CAPTCHA_FILESIZE",
	SubmitTooBigCaptchaFilesize: "ERROR_TOO_BIG_CAPTCHA_FILESIZE",
	SubmitWrongFileExtension:    "ERROR_WRONG_FILE_EXTENSION",
	SubmitImageTypeNotSupported: "ERROR_IMAGE_TYPE_NOT_SUPPORTED",
	SubmitUpload:                "ERROR_UPLOAD",
	SubmitIPNotAllowed:          "ERROR_IP_NOT_ALLOWED",
	SubmitIPBanned:              "IP_BANNED",
	SubmitBadTokenOrPageURL:     "ERROR_BAD_TOKEN_OR_PAGEURL",
	SubmitGoogleKey:             "ERROR_GOOGLEKEY",
	SubmitWrongGoogleKey:        "ERROR_WRONG_GOOGLEKEY",
	SubmitCaptchaImageBlocked:   "ERROR_CAPTCHAIMAGE_BLOCKED",
	SubmitTooManyBadImages:      "TOO_MANY_BAD_IMAGES",
	SubmitMaxUserTurn:           "MAX_USER_TURN",
	SubmitBadParameters:         "ERROR_BAD_PARAMETERS",
	SubmitBadProxy:              "ERROR_BAD_PROXY",
}

func (c SubmitCode) String() string {
	if c > 0 && int(c) < len(submitCodeText) {
		return submitCodeText[c]
	}
	return fmt.Sprintf("SubmitCode(%d)", int(c))
}

type SubmitError struct {
	Code SubmitCode
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit rejected: %s", e.Code)
}

type PollCode int

const (
	PollCaptchaUnsolvable PollCode = 1 + iota
	PollWrongUserKey
	PollKeyDoesNotExist
	PollWrongIDFormat
	PollWrongCaptchaID
	PollBadDuplicates
	PollReportNotRecorded
	PollDuplicateReport
	PollIPAddress
	PollTokenExpired
	PollEmptyAction
	PollProxyConnectionFailed
	// PollRateLimit is reported as "ERROR:<code>"; the code is kept in
	// PollError.RateLimit.
	PollRateLimit
)

var pollCodeText = [...]string{
	PollCaptchaUnsolvable:     "ERROR_CAPTCHA_UNSOLVABLE",
	PollWrongUserKey:          "ERROR_WRONG_USER_KEY",
	PollKeyDoesNotExist:       "ERROR_KEY_DOES_NOT_EXIST",
	PollWrongIDFormat:         "ERROR_WRONG_ID_FORMAT",
	PollWrongCaptchaID:        "ERROR_WRONG_CAPTCHA_ID",
	PollBadDuplicates:         "ERROR_BAD_DUPLICATES",
	PollReportNotRecorded:     "REPORT_NOT_RECORDED",
	PollDuplicateReport:       "ERROR_DUPLICATE_REPORT",
	PollIPAddress:             "ERROR_IP_ADDRES",
	PollTokenExpired:          "ERROR_TOKEN_EXPIRED",
	PollEmptyAction:           "ERROR_EMPTY_ACTION",
	PollProxyConnectionFailed: "ERROR_PROXY_CONNECTION_FAILED",
	PollRateLimit:             "ERROR:",
}

func (c PollCode) String() string {
	if c > 0 && int(c) < len(pollCodeText) {
		return pollCodeText[c]
	}
	return fmt.Sprintf("PollCode(%d)", int(c))
}

type PollError struct {
	Code      PollCode
	RateLimit string
}

func (e *PollError) Error() string {
	if e.Code == PollRateLimit {
		return fmt.Sprintf("poll rejected: rate limit %s", e.RateLimit)
	}
	return fmt.Sprintf("poll rejected: %s", e.Code)
}

var (
	submitCodes = make(map[string]SubmitCode, len(submitCodeText))
	pollCodes   = make(map[string]PollCode, len(pollCodeText))
)

func init() {
	for code, text := range submitCodeText {
		if text != "" {
			submitCodes[text] = SubmitCode(code)
		}
	}
	for code, text := range pollCodeText {
		if text != "" && PollCode(code) != PollRateLimit {
			pollCodes[text] = PollCode(code)
		}
	}
}
