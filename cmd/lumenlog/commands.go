package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	log "github.com/Lineance/Lumenaris-sub000"
)

// verifyError reports a stress run whose output does not match what was produced.
type verifyError struct {
	msg string
}

func (e *verifyError) Error() string { return e.msg }

func createCommands() []*cli.Command {
	return []*cli.Command{
		createRenderCommand(),
		createStressCommand(),
	}
}

func createRenderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "simulate a frame loop with contexts, counters and summaries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "frames", Usage: "frames to simulate", Value: 60},
			&cli.IntFlag{Name: "batches", Usage: "draw batches per frame", Value: 8},
			&cli.DurationFlag{Name: "frame-time", Usage: "sleep between frames", Value: 16 * time.Millisecond},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := log.NewLogger()
			if err := logger.InitializeWithConfig(cfg); err != nil {
				return err
			}
			renderErr := cmdRender(ctx, logger, cmd.Int("frames"), cmd.Int("batches"), cmd.Duration("frame-time"))
			return errors.Join(renderErr, logger.Shutdown(5*time.Second))
		},
	}
}

func createStressCommand() *cli.Command {
	return &cli.Command{
		Name:  "stress",
		Usage: "run concurrent producers and verify the written file",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "producers", Usage: "concurrent producer goroutines", Value: 8},
			&cli.IntFlag{Name: "records", Usage: "records per producer", Value: 10000},
			&cli.BoolFlag{Name: "fresh", Usage: "remove the log file and its generations first", Value: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("fresh") {
				removeGenerations(cfg.Path, int(cfg.MaxGenerations))
			}
			return cmdStress(ctx, cfg, cmd.Int("producers"), cmd.Int("records"))
		},
	}
}

// loadConfig resolves file, flags and --set overrides, in that order.
func loadConfig(cmd *cli.Command) (*log.Config, error) {
	cfg := log.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		loaded, err := log.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := cmd.String("path"); path != "" {
		cfg.Path = path
	}
	if cmd.IsSet("async") {
		cfg.Async = cmd.Bool("async")
	}
	if cmd.IsSet("console") {
		cfg.EnableConsole = cmd.Bool("console")
	}

	if err := log.ApplyOverrides(cfg, cmd.StringSlice("set")...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cmdRender(ctx context.Context, logger *log.Logger, frames, batches int, frameTime time.Duration) error {
	for f := 0; f < frames; f++ {
		if ctx.Err() != nil {
			logger.Warningf("render interrupted at frame %d", f)
			return nil
		}

		start := time.Now()
		popFrame := logger.ScopedContext(log.NewContextFrame(fmt.Sprintf("frame %d", f)))
		logger.Infof("begin frame %d", f)

		for b := 0; b < batches; b++ {
			prims := 256 + rand.IntN(8192)
			calls := 1 + b%4
			popBatch := logger.ScopedContext(log.NewContextFrame("geometry").
				WithBatch(b).
				WithPrimitives(prims).
				WithCalls(calls).
				WithResources("shader_basic", fmt.Sprintf("mesh_%d", b)))

			logger.Debugf("submitting batch %d", b)
			if prims > 8000 {
				logger.Warning("batch exceeds primitive budget")
			}
			logger.IncrementCounter("batches")
			logger.AddCounter("primitives", int64(prims))
			logger.AddCounter("draw_calls", int64(calls))
			popBatch()
		}

		logger.Info("frame presented")
		popFrame()

		logger.SetGaugeValue("frame_ms", float64(time.Since(start).Microseconds())/1000)
		logger.LogSummaryIfDue()

		if frameTime > 0 {
			time.Sleep(frameTime)
		}
	}
	return nil
}

func cmdStress(ctx context.Context, cfg *log.Config, producers, records int) error {
	logger := log.NewLogger()
	if err := logger.InitializeWithConfig(cfg); err != nil {
		return err
	}

	start := time.Now()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < records; i++ {
				if ctx.Err() != nil {
					return
				}
				logger.Infof("producer=%d seq=%d", p, i)
			}
		}(p)
	}
	wg.Wait()
	produced := time.Since(start)

	if err := logger.Shutdown(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	lines, err := collectLines(cfg.Path, int(cfg.MaxGenerations))
	if err != nil {
		return err
	}
	if err := verifyOrder(lines, producers, records); err != nil {
		return err
	}

	fmt.Printf("ok: %d records from %d producers in %v (%d lines read)\n",
		producers*records, producers, produced.Round(time.Millisecond), len(lines))
	return nil
}

// collectLines reads the oldest generation first and the live file last.
func collectLines(path string, generations int) ([]string, error) {
	var lines []string
	for n := generations; n >= 0; n-- {
		p := path
		if n > 0 {
			p = log.RotatedPath(path, n)
		}

		f, err := os.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// verifyOrder checks every producer's records appear exactly once and in submission order.
// Lines without a producer marker are ignored.
func verifyOrder(lines []string, producers, records int) error {
	next := make([]int, producers)

	for i, line := range lines {
		idx := strings.Index(line, "producer=")
		if idx < 0 {
			continue
		}

		var p, seq int
		if _, err := fmt.Sscanf(line[idx:], "producer=%d seq=%d", &p, &seq); err != nil {
			return &verifyError{msg: fmt.Sprintf("line %d: unparsable record %q", i+1, line)}
		}
		if p < 0 || p >= producers {
			return &verifyError{msg: fmt.Sprintf("line %d: unknown producer %d", i+1, p)}
		}
		if seq != next[p] {
			return &verifyError{msg: fmt.Sprintf("line %d: producer %d expected seq %d, got %d", i+1, p, next[p], seq)}
		}
		next[p]++
	}

	for p, n := range next {
		if n != records {
			return &verifyError{msg: fmt.Sprintf("producer %d: %d of %d records written", p, n, records)}
		}
	}
	return nil
}

func removeGenerations(path string, generations int) {
	_ = os.Remove(path)
	for n := 1; n <= generations; n++ {
		_ = os.Remove(log.RotatedPath(path, n))
	}
}
