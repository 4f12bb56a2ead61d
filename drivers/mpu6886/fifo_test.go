package mpu6886

import (
	"errors"
	"testing"
)

func TestFIFOCount_FloorDivision(t *testing.T) {
	cases := []struct {
		bytes int
		want  int
	}{
		{0, 0},
		{7, 0},
		{8, 1},
		{15, 1},
		{16, 2},
		{400, 50},
		{1023, 127},
		{1024, 128},
	}

	f := newFakeIMU()
	d := newDevice(t, f, Config{})
	for _, tc := range cases {
		f.setFIFOBytes(tc.bytes)
		got, err := d.FIFOCount()
		if err != nil {
			t.Fatalf("count(%d bytes): %v", tc.bytes, err)
		}
		if got != tc.want {
			t.Fatalf("count(%d bytes) = %d (want %d)", tc.bytes, got, tc.want)
		}
	}
}

func TestReadSamplesInto_Validation(t *testing.T) {
	f := newFakeIMU()
	d := newDevice(t, f, Config{})

	tx := f.tx
	if err := d.ReadSamplesInto(make([]byte, 12)); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("len 12: err = %v (want ErrInvalidLength)", err)
	}
	if err := d.ReadSamplesInto(make([]byte, 1032)); !errors.Is(err, ErrFIFOCapacity) {
		t.Fatalf("len 1032: err = %v (want ErrFIFOCapacity)", err)
	}
	if f.tx != tx {
		t.Fatal("bus I/O issued for rejected buffer")
	}
}

func TestReadSamplesInto_BulkRead(t *testing.T) {
	f := newFakeIMU()
	d := newDevice(t, f, Config{})

	f.fifo = make([]byte, 16)
	for i := range f.fifo {
		f.fifo[i] = byte(i + 1)
	}
	buf := make([]byte, 16)
	if err := d.ReadSamplesInto(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	for i, b := range buf {
		if b != byte(i+1) {
			t.Fatalf("buf[%d] = %d", i, b)
		}
	}
}

func TestDeinterleave_SingleRecord(t *testing.T) {
	buf := []byte{0x00, 0x64, 0xFF, 0xCE, 0x03, 0xE8, 0x00, 0x00}
	xs := make([]int16, 1)
	ys := make([]int16, 1)
	zs := make([]int16, 1)

	if err := DeinterleaveSamples(buf, xs, ys, zs); err != nil {
		t.Fatalf("deinterleave: %v", err)
	}
	if xs[0] != 100 || ys[0] != -50 || zs[0] != 1000 {
		t.Fatalf("decoded = %d %d %d (want 100 -50 1000)", xs[0], ys[0], zs[0])
	}
}

func TestDeinterleave_ThreeRecords(t *testing.T) {
	recs := [][3]int16{{1, -2, 3}, {-100, 200, -300}, {32767, -32768, 0}}
	buf := make([]byte, 3*BytesPerSample)
	for i, r := range recs {
		put16(buf[i*8+0:], r[0])
		put16(buf[i*8+2:], r[1])
		put16(buf[i*8+4:], r[2])
		// Temperature word: junk that must be skipped.
		buf[i*8+6] = 0xDE
		buf[i*8+7] = 0xAD
	}

	xs := make([]int16, 3)
	ys := make([]int16, 3)
	zs := make([]int16, 3)
	if err := DeinterleaveSamples(buf, xs, ys, zs); err != nil {
		t.Fatalf("deinterleave: %v", err)
	}
	for i, r := range recs {
		if xs[i] != r[0] || ys[i] != r[1] || zs[i] != r[2] {
			t.Fatalf("record %d = %d %d %d (want %v)", i, xs[i], ys[i], zs[i], r)
		}
	}
}

func TestDeinterleave_Preconditions(t *testing.T) {
	buf := make([]byte, 2*BytesPerSample)

	// Ragged buffer.
	if err := DeinterleaveSamples(buf[:9], make([]int16, 1), make([]int16, 1), make([]int16, 1)); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("ragged buffer err = %v", err)
	}

	// Mismatched axis slice: nothing may be written.
	xs := []int16{7}
	ys := []int16{7, 7}
	zs := []int16{7, 7}
	if err := DeinterleaveSamples(buf, xs, ys, zs); !errors.Is(err, ErrInvalidLength) {
		t.Fatalf("mismatched slices err = %v", err)
	}
	if xs[0] != 7 || ys[0] != 7 || zs[0] != 7 {
		t.Fatal("output written despite precondition failure")
	}
}

func TestEnableFIFO_Sequence(t *testing.T) {
	f := newFakeIMU()
	d := newDevice(t, f, Config{})
	f.regs[regConfig] = 0xFF
	f.regs[regFifoEn] = 0
	f.regs[regUserCtrl] = 0

	if err := d.EnableFIFO(true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	cfg := f.regs[regConfig]
	if cfg&cfgReserved != 0 || cfg&cfgFifoModeStop != 0 {
		t.Fatalf("CONFIG = %#b (reserved/FIFO_MODE not cleared)", cfg)
	}
	if cfg&0b00111111 != 0b00111111 {
		t.Fatalf("CONFIG = %#b (unrelated bits clobbered)", cfg)
	}
	fe := f.regs[regFifoEn]
	if fe&fifoEnAccel == 0 {
		t.Fatal("accel FIFO routing not enabled")
	}
	if fe&fifoEnGyro != 0 {
		t.Fatal("gyro FIFO routing enabled unexpectedly")
	}
	uc := f.regs[regUserCtrl]
	if uc&userFifoEnable == 0 || uc&userFifoReset == 0 {
		t.Fatalf("USER_CTRL = %#b (enable/reset not set)", uc)
	}

	if err := d.EnableFIFO(false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if f.regs[regFifoEn]&fifoEnAccel != 0 {
		t.Fatal("accel routing still enabled after disable")
	}
	if f.regs[regUserCtrl]&userFifoEnable != 0 {
		t.Fatal("FIFO engine still enabled after disable")
	}
}
