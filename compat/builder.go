package compat

import (
	"errors"
	"time"

	log "github.com/Lineance/Lumenaris-sub000"
)

// ErrNoLogger is returned when a Builder has no logger source
var ErrNoLogger = errors.New("log/compat: no logger source configured")

// Builder shares one logger between the gnet and fasthttp adapters.
// The logger is either attached, or created on first use from a root
// log.Builder or from Initialize parameters. A created logger belongs to the
// Builder and is released with Shutdown.
type Builder struct {
	logger *log.Logger
	create func() (*log.Logger, error)
	owned  bool

	fatalHandler   func(string)
	gnetSource     *string
	fasthttpSource *string

	err error
}

// NewBuilder creates an adapter builder with no logger source
func NewBuilder() *Builder {
	return &Builder{}
}

// Attach uses an already initialized logger. The Builder never shuts it down.
func (b *Builder) Attach(l *log.Logger) *Builder {
	if l == nil {
		b.err = errors.New("log/compat: attached logger cannot be nil")
		return b
	}
	b.logger, b.create, b.owned = l, nil, false
	return b
}

// FromBuilder creates the logger from a root builder on first use
func (b *Builder) FromBuilder(lb *log.Builder) *Builder {
	if lb == nil {
		b.err = errors.New("log/compat: logger builder cannot be nil")
		return b
	}
	b.create = lb.Build
	return b
}

// FromParams creates the logger with Initialize on first use
func (b *Builder) FromParams(path string, consoleEnabled bool, minLevel int64, async bool, rotation log.RotationConfig) *Builder {
	b.create = func() (*log.Logger, error) {
		l := log.NewLogger()
		if err := l.Initialize(path, consoleEnabled, minLevel, async, rotation); err != nil {
			return nil, err
		}
		return l, nil
	}
	return b
}

// FatalHandler replaces the process exit performed by the gnet adapter's Fatalf
func (b *Builder) FatalHandler(handler func(string)) *Builder {
	b.fatalHandler = handler
	return b
}

// Sources sets the message prefixes of the gnet and fasthttp adapters.
// An empty source writes messages without a prefix.
func (b *Builder) Sources(gnetSource, fasthttpSource string) *Builder {
	b.gnetSource = &gnetSource
	b.fasthttpSource = &fasthttpSource
	return b
}

// Logger returns the shared logger, creating it on the first call
func (b *Builder) Logger() (*log.Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.logger != nil {
		return b.logger, nil
	}
	if b.create == nil {
		return nil, ErrNoLogger
	}

	l, err := b.create()
	if err != nil {
		return nil, err
	}
	b.logger, b.owned = l, true
	return l, nil
}

// Gnet returns a gnet adapter on the shared logger.
// Builder settings apply first; opts override them.
func (b *Builder) Gnet(opts ...GnetOption) (*GnetAdapter, error) {
	l, err := b.Logger()
	if err != nil {
		return nil, err
	}

	var base []GnetOption
	if b.fatalHandler != nil {
		base = append(base, WithFatalHandler(b.fatalHandler))
	}
	if b.gnetSource != nil {
		base = append(base, WithGnetSource(*b.gnetSource))
	}
	return NewGnetAdapter(l, append(base, opts...)...), nil
}

// FastHTTP returns a fasthttp adapter on the shared logger.
// Builder settings apply first; opts override them.
func (b *Builder) FastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	l, err := b.Logger()
	if err != nil {
		return nil, err
	}

	var base []FastHTTPOption
	if b.fasthttpSource != nil {
		base = append(base, WithFastHTTPSource(*b.fasthttpSource))
	}
	return NewFastHTTPAdapter(l, append(base, opts...)...), nil
}

// Shutdown shuts down the logger if this Builder created it.
// An attached logger is left to its owner.
func (b *Builder) Shutdown(timeout ...time.Duration) error {
	if b.logger == nil || !b.owned {
		return nil
	}
	return b.logger.Shutdown(timeout...)
}

// Usage with one logger for both servers:
//
//	adapters := compat.NewBuilder().
//		FromParams("/var/log/app/server.log", false, log.LevelInfo, true, log.RotationConfig{Kind: log.RotateDaily, MaxGenerations: 7}).
//		Sources("net", "http")
//	defer adapters.Shutdown()
//
//	gnetLogger, _ := adapters.Gnet()
//	fasthttpLogger, _ := adapters.FastHTTP()
//
//	go gnet.Run(events, "tcp://:9000", gnet.WithLogger(gnetLogger))
//	server := &fasthttp.Server{Handler: handler, Logger: fasthttpLogger}
