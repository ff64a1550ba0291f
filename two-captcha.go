package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/swizard0/two-captcha/pkg/captcha"
)

var version = "N/A"

type Stats struct {
	Attempts int
	Solved   int
	Cached   int
	Failed   int
}

func newLogger(cfg *Config) zerolog.Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if cfg.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{Filename: cfg.LogFile, MaxSize: 25, Compress: true})
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := newLogger(cfg)
	log.Debug().Str("version", version).Interface("params", cfg.Params).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := run(ctx, cfg, log, os.Stdout)
	if err != nil {
		log.Error().Err(err).Send()
		os.Exit(1)
	}

	log.Info().
		Int("attempts", stats.Attempts).
		Int("solved", stats.Solved).
		Int("cached", stats.Cached).
		Int("failed", stats.Failed).
		Msg("all tasks done")

	if stats.Failed > 0 || ctx.Err() != nil {
		os.Exit(1)
	}
}

// run solves every queued captcha file with cfg.Concurrency tasks and writes
// "<path>\t<answer>" lines to out.
func run(ctx context.Context, cfg *Config, log zerolog.Logger, out io.Writer) (Stats, error) {
	lm := NewListManager()
	lm.AddLines(cfg.CaptchaFiles...)
	if cfg.CaptchaList != "" {
		if err := lm.Read(cfg.CaptchaList); err != nil {
			return Stats{}, err
		}
	}

	pm := NewProxyManager()
	if cfg.ProxyFile != "" {
		if err := pm.Read(cfg.ProxyFile); err != nil {
			return Stats{}, err
		}
	}

	cache, err := newAnswerCache()
	if err != nil {
		return Stats{}, err
	}
	defer cache.Close()

	log.Info().Int("captchas", lm.Count()).Int("proxies", pm.Count()).Int("concurrency", cfg.Concurrency).Msg("solving")

	statsCh := make(chan Stats, 10)
	statsFlushed := make(chan Stats)
	go func() {
		var total Stats
		for stat := range statsCh {
			total.Attempts += stat.Attempts
			total.Solved += stat.Solved
			total.Cached += stat.Cached
			total.Failed += stat.Failed
		}
		statsFlushed <- total
	}()

	output := make(chan string, 10)
	outputFlushed := make(chan bool)
	go func() {
		for line := range output {
			fmt.Fprintln(out, line)
		}
		outputFlushed <- true
	}()

	taskHandler := func(ctx context.Context, task *Task) {
		taskLog := log.With().Str("tid", task.ID()).Logger()

		var client captcha.HTTPClient = http.DefaultClient
		if pm.Count() > 0 {
			p, err := pm.Lease(task.ID())
			if err != nil {
				taskLog.Warn().Err(err).Msg("solving without proxy")
			} else {
				defer pm.Unlease(task.ID())
				client = &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(p.URL())}}
				taskLog = taskLog.With().Str("proxy", p.URL().Host).Logger()
			}
		}

		api := captcha.NewApi(cfg.APIKey, cfg.Params, captcha.WithHTTPClient(client), captcha.WithLogger(taskLog))

		for ctx.Err() == nil {
			item, ok := lm.Next()
			if !ok {
				break
			}

			path := item.Line()
			itemLog := taskLog.With().Str("file", path).Logger()

			statsCh <- Stats{Attempts: 1}

			key, err := fingerprint(path, cfg.CaseSensitive)
			if err != nil {
				itemLog.Debug().Err(err).Msg("not caching answer")
			} else if answer, found := cache.Get(key); found {
				itemLog.Debug().Msg("answer cached")
				statsCh <- Stats{Cached: 1}
				output <- fmt.Sprintf("%s\t%s", path, answer)
				continue
			}

			c, err := captcha.NewCaptchaBuilder().
				SetUploadFile(path).
				SetCaseSensitive(cfg.CaseSensitive).
				Finish()
			if err != nil {
				itemLog.Err(err).Msg("captcha build failed")
				statsCh <- Stats{Failed: 1}
				continue
			}

			solved, err := api.Solve(ctx, c)
			if err != nil {
				itemLog.Err(err).Msg("captcha failed")
				statsCh <- Stats{Failed: 1}
				continue
			}

			itemLog.Info().Str("id", solved.ID()).Msg("captcha solved")
			statsCh <- Stats{Solved: 1}

			if key != "" {
				cache.Set(key, solved.Answer())
			}
			output <- fmt.Sprintf("%s\t%s", path, solved.Answer())
		}

		taskLog.Debug().Msg("done with work")
	}

	tm := NewTaskManager(ctx)
	for i := 0; i < cfg.Concurrency; i++ {
		tm.AddTask(taskHandler)
	}

	tm.StartTasks()
	tm.Wait()

	close(output)
	<-outputFlushed

	close(statsCh)
	return <-statsFlushed, nil
}
