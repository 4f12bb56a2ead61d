// Package imu provides a batch streamer over the MPU-6886 FIFO: it owns a
// configured device, polls the FIFO fill level, drains whole batches and
// delivers deinterleaved per-axis samples over a sink channel.
package imu

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"imucode-go/drivers/mpu6886"
	"imucode-go/errcode"
	"imucode-go/x/mathx"
	"imucode-go/x/timex"
)

// Batch is one drained FIFO batch. The axis slices are equal-length and
// index-aligned; they are freshly allocated per batch and never reused.
type Batch struct {
	X, Y, Z []int16
	TsMs    int64 // delivery timestamp, Unix ms
}

// Result is what the streamer pushes to its sink: a batch, or a coded error.
type Result struct {
	Batch *Batch
	Code  errcode.Code
	Err   error
}

// Config controls streaming. Zero values select the listed defaults.
type Config struct {
	// SampleRateHz must be one of the device-supported output data rates.
	// Default 100.
	SampleRateHz uint16
	// BatchSamples is the number of samples per delivered batch, clamped to
	// [1, 128] (the FIFO holds 128 records). Default 50.
	BatchSamples int
	// PollInterval between FIFO count reads. Default: a quarter of the time
	// one batch takes to accumulate.
	PollInterval time.Duration
	// QueueSize of the sink channel. Default 4.
	QueueSize int
}

// Streamer drains the device FIFO into batches. Single goroutine, sole owner
// of the device while Run is active.
type Streamer struct {
	dev *mpu6886.Device
	cfg Config

	batch int
	outQ  chan Result

	dropped atomic.Uint32
}

// NewStreamer prepares a streamer over an already Configure()d device. The
// device is not touched until Run.
func NewStreamer(dev *mpu6886.Device, cfg Config) *Streamer {
	if cfg.SampleRateHz == 0 {
		cfg.SampleRateHz = 100
	}
	if cfg.BatchSamples == 0 {
		cfg.BatchSamples = 50
	}
	batch := mathx.Clamp(cfg.BatchSamples, 1, mpu6886.FIFOCapacity/mpu6886.BytesPerSample)
	if cfg.PollInterval <= 0 {
		per := timex.DurationFromHz(uint32(cfg.SampleRateHz))
		cfg.PollInterval = per * time.Duration(batch) / 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 4
	}
	return &Streamer{
		dev:   dev,
		cfg:   cfg,
		batch: batch,
		outQ:  make(chan Result, cfg.QueueSize),
	}
}

// Results is the sink channel. Closed when Run returns.
func (s *Streamer) Results() <-chan Result { return s.outQ }

// Dropped reports how many batches were discarded because the sink was full.
// Safe to call from the consumer goroutine while Run is active.
func (s *Streamer) Dropped() uint32 { return s.dropped.Load() }

// Run configures the output data rate, enables the FIFO and polls until ctx
// is cancelled or a bus operation fails. Failures are surfaced once on the
// sink and returned; there are no retries. Run is single-use: the sink is
// closed when it returns.
func (s *Streamer) Run(ctx context.Context) error {
	defer close(s.outQ)

	if err := s.dev.SetOutputDataRate(s.cfg.SampleRateHz); err != nil {
		return s.fail("set_odr", err)
	}
	if err := s.dev.EnableFIFO(true); err != nil {
		return s.fail("fifo_enable", err)
	}

	chunk := make([]byte, s.batch*mpu6886.BytesPerSample)
	tick := time.NewTicker(s.cfg.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.dev.EnableFIFO(false)
			return ctx.Err()
		case <-tick.C:
			count, err := s.dev.FIFOCount()
			if err != nil {
				return s.fail("fifo_count", err)
			}
			if count < s.batch {
				continue
			}
			if err := s.dev.ReadSamplesInto(chunk); err != nil {
				return s.fail("fifo_read", err)
			}
			b := &Batch{
				X:    make([]int16, s.batch),
				Y:    make([]int16, s.batch),
				Z:    make([]int16, s.batch),
				TsMs: timex.NowMs(),
			}
			if err := mpu6886.DeinterleaveSamples(chunk, b.X, b.Y, b.Z); err != nil {
				return s.fail("deinterleave", err)
			}
			s.submit(Result{Batch: b, Code: errcode.OK})
		}
	}
}

// submit is non-blocking; a full sink drops the batch and counts it.
func (s *Streamer) submit(r Result) {
	select {
	case s.outQ <- r:
	default:
		s.dropped.Add(1)
	}
}

// fail wraps err with its op and code, surfaces it once on the sink and
// returns it.
func (s *Streamer) fail(op string, err error) error {
	e := &errcode.E{C: Classify(err), Op: op, Err: err}
	s.submit(Result{Code: e.C, Err: e})
	return e
}

// Classify maps driver errors onto stable service-facing codes. Transport
// errors from the I2C layer have no sentinel and fall through to BusError.
func Classify(err error) errcode.Code {
	switch {
	case err == nil:
		return errcode.OK
	case errors.Is(err, mpu6886.ErrDeviceNotFound):
		return errcode.DeviceNotFound
	case errors.Is(err, mpu6886.ErrUnsupportedRate):
		return errcode.UnsupportedRate
	case errors.Is(err, mpu6886.ErrUnsupportedScale):
		return errcode.UnsupportedScale
	case errors.Is(err, mpu6886.ErrInvalidLength):
		return errcode.InvalidParams
	case errors.Is(err, mpu6886.ErrFIFOCapacity):
		return errcode.CapacityExceeded
	default:
		return errcode.BusError
	}
}
