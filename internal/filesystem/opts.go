package filesystem

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures FormatFilesystem, Open and the path-level helpers.
type Option func(*options)

type options struct {
	clock func() time.Time
	log   logrus.FieldLogger
}

func newOptions(opts []Option) options {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	o := options{
		clock: time.Now,
		log:   discard,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the source of every timestamp written to the image.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLogger sets the logger that receives allocation details at debug level.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

func (o options) now() uint64 {
	return uint64(o.clock().Unix())
}
