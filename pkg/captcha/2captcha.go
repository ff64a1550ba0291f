package captcha

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

func (a *Api) do(stage Stage, req *http.Request) ([]byte, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}

	res, err := a.client.Do(req)
	if err != nil {
		return nil, &TransportError{Stage: stage, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &TransportError{Stage: stage, StatusCode: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Stage: stage, StatusCode: res.StatusCode, Err: errors.Wrap(err, "read response body")}
	}

	return body, nil
}

func (a *Api) submit(ctx context.Context, c *Captcha) (string, error) {
	req, err := a.prepareSubmit(ctx, c)
	if err != nil {
		return "", err
	}

	a.log.Debug().Str("url", a.params.APIRequestURL).Stringer("captcha", c).Msg("submitting captcha")

	body, err := a.do(StageSubmit, req)
	if err != nil {
		return "", err
	}

	envelope, err := decodeEnvelope(StageSubmit, body)
	if err != nil {
		return "", err
	}

	id, err := classifySubmit(envelope)
	if err != nil {
		a.log.Debug().Stringer("envelope", envelope).Msg("captcha rejected")
		return "", err
	}

	a.log.Debug().Str("id", id).Msg("captcha submitted")

	return id, nil
}

// poll asks res.php for the answer until it is ready. Each attempt is spaced
// at least PollInterval from the start of the previous one.
func (a *Api) poll(ctx context.Context, id string) (string, error) {
	for attempt := 1; ; attempt++ {
		start := a.now()

		req, err := a.preparePoll(ctx, id)
		if err != nil {
			return "", err
		}

		body, err := a.do(StagePoll, req)
		if err != nil {
			return "", err
		}

		envelope, err := decodeEnvelope(StagePoll, body)
		if err != nil {
			return "", err
		}

		outcome, err := classifyPoll(envelope)
		if err != nil {
			a.log.Debug().Str("id", id).Int("attempt", attempt).Stringer("envelope", envelope).Msg("poll rejected")
			return "", err
		}

		if outcome.ready {
			a.log.Debug().Str("id", id).Int("attempt", attempt).Msg("captcha solved")
			return outcome.answer, nil
		}

		delay := pollDelay(a.params.PollInterval, a.now().Sub(start))

		a.log.Debug().Str("id", id).Int("attempt", attempt).Dur("delay", delay).Msg("captcha not ready")

		if err := a.sleep(ctx, delay); err != nil {
			return "", errors.Wrapf(err, "%s: wait for captcha %s", StagePoll, id)
		}
	}
}

// pollDelay is max(0, interval - elapsed) in whole milliseconds.
func pollDelay(interval, elapsed time.Duration) time.Duration {
	delay := interval.Truncate(time.Millisecond) - elapsed.Truncate(time.Millisecond)
	if delay < 0 {
		return 0
	}
	return delay
}
