package captcha

import (
	"strings"
)

const (
	statusFailure = 0
	statusSuccess = 1

	captchaNotReady = "CAPCHA_NOT_READY"
	rateLimitPrefix = "ERROR:"
)

type pollOutcome struct {
	ready  bool
	answer string
}

// classifySubmit maps an in.php envelope to a job id. It never fails to
// produce either an id or an error.
func classifySubmit(e Envelope) (string, error) {
	switch e.Status {
	case statusSuccess:
		return e.Request, nil
	case statusFailure:
		if code, ok := submitCodes[e.Request]; ok {
			return "", &SubmitError{Code: code}
		}
	}
	return "", &UnexpectedEnvelopeError{Stage: StageSubmit, Envelope: e}
}

func classifyPoll(e Envelope) (pollOutcome, error) {
	switch e.Status {
	case statusSuccess:
		return pollOutcome{ready: true, answer: e.Request}, nil
	case statusFailure:
		if e.Request == captchaNotReady {
			return pollOutcome{}, nil
		}
		if code, ok := pollCodes[e.Request]; ok {
			return pollOutcome{}, &PollError{Code: code}
		}
		if strings.HasPrefix(e.Request, rateLimitPrefix) {
			return pollOutcome{}, &PollError{
				Code:      PollRateLimit,
				RateLimit: strings.TrimSpace(strings.TrimPrefix(e.Request, rateLimitPrefix)),
			}
		}
	}
	return pollOutcome{}, &UnexpectedEnvelopeError{Stage: StagePoll, Envelope: e}
}
