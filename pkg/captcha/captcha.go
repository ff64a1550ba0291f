package captcha

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultAPIRequestURL = `http://2captcha.com/in.php`
	DefaultAPIResultURL  = `http://2captcha.com/res.php`
	DefaultPollInterval  = 5000 * time.Millisecond
)

type Solver interface {
	Solve(ctx context.Context, c *Captcha) (*Solved, error)
}

// HTTPClient is the transport used for both submit and poll calls.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Params struct {
	APIRequestURL string
	APIResultURL  string
	PollInterval  time.Duration
}

func DefaultParams() Params {
	return Params{
		APIRequestURL: DefaultAPIRequestURL,
		APIResultURL:  DefaultAPIResultURL,
		PollInterval:  DefaultPollInterval,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.APIRequestURL == "" {
		p.APIRequestURL = d.APIRequestURL
	}
	if p.APIResultURL == "" {
		p.APIResultURL = d.APIResultURL
	}
	if p.PollInterval <= 0 {
		p.PollInterval = d.PollInterval
	}
	return p
}

type Solved struct {
	id     string
	answer string
}

func (s *Solved) Answer() string {
	return s.answer
}

// ID is the job id the answer was polled under.
func (s *Solved) ID() string {
	return s.id
}

func (s *Solved) String() string {
	return s.answer
}

type Api struct {
	token  string
	params Params
	client HTTPClient
	log    zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Api)

func WithHTTPClient(c HTTPClient) Option {
	return func(a *Api) {
		if c != nil {
			a.client = c
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Api) {
		a.log = l
	}
}

func NewApi(token string, params Params, opts ...Option) *Api {
	a := &Api{
		token:  token,
		params: params.withDefaults(),
		client: http.DefaultClient,
		log:    zerolog.Nop(),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Api) Params() Params {
	return a.params
}

// Solve submits the captcha and polls until the remote service returns an
// answer or a terminal error. Every failure is terminal for the call.
func (a *Api) Solve(ctx context.Context, c *Captcha) (*Solved, error) {
	id, err := a.submit(ctx, c)
	if err != nil {
		return nil, err
	}

	answer, err := a.poll(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Solved{id: id, answer: answer}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
