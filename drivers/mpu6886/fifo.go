package mpu6886

// FIFO sample pipeline. Only accelerometer samples are routed to the FIFO;
// each record is 8 bytes on the wire: X, Y, Z and die temperature as
// big-endian int16. The temperature word is a wire artifact and is discarded
// when deinterleaving.

const (
	// BytesPerSample is the FIFO record size in bytes.
	BytesPerSample = 8
	// FIFOCapacity is the device's addressable FIFO size in bytes.
	FIFOCapacity = 1024
)

// EnableFIFO routes accelerometer samples to the FIFO and starts the FIFO
// engine (with a reset pulse), or stops routing and the engine when enable is
// false. Overflow behaviour is replace-oldest: new samples overwrite the
// oldest rather than being dropped.
func (d *Device) EnableFIFO(enable bool) error {
	if !enable {
		if err := d.updateReg(regFifoEn, 0, fifoEnAccel); err != nil {
			return err
		}
		return d.updateReg(regUserCtrl, 0, userFifoEnable)
	}

	// Reserved bit 7 kept cleared; FIFO_MODE cleared selects replace-oldest.
	if err := d.updateReg(regConfig, 0, cfgReserved|cfgFifoModeStop); err != nil {
		return err
	}
	if err := d.updateReg(regFifoEn, fifoEnAccel, 0); err != nil {
		return err
	}
	return d.updateReg(regUserCtrl, userFifoEnable|userFifoReset, 0)
}

// FIFOCount returns the number of whole samples ready in the FIFO. The
// 16-bit byte count is floor-divided by the record size; a partial trailing
// record is not counted.
func (d *Device) FIFOCount() (int, error) {
	if err := d.readRegs(regFifoCountH, d.r[:2]); err != nil {
		return 0, err
	}
	bytes := int(uint16(d.r[0])<<8 | uint16(d.r[1]))
	return bytes / BytesPerSample, nil
}

// ReadSamplesInto drains len(buf) bytes of raw sample records from the FIFO
// in one bulk read. len(buf) must be a multiple of BytesPerSample and at most
// FIFOCapacity; violations are rejected before any bus I/O.
//
// The caller must have confirmed via FIFOCount that at least
// len(buf)/BytesPerSample samples are available: the device does not guard
// against under-filled reads.
func (d *Device) ReadSamplesInto(buf []byte) error {
	if len(buf)%BytesPerSample != 0 {
		return ErrInvalidLength
	}
	if len(buf) > FIFOCapacity {
		return ErrFIFOCapacity
	}
	return d.readRegs(regFifoRW, buf)
}

// DeinterleaveSamples splits raw FIFO bytes into per-axis int16 sequences.
// xs, ys and zs must each hold exactly len(buf)/BytesPerSample elements;
// index i across the three slices belongs to the same sample instant. The
// temperature word of each record is skipped. On error nothing is written.
func DeinterleaveSamples(buf []byte, xs, ys, zs []int16) error {
	if len(buf)%BytesPerSample != 0 {
		return ErrInvalidLength
	}
	samples := len(buf) / BytesPerSample
	if len(xs) != samples || len(ys) != samples || len(zs) != samples {
		return ErrInvalidLength
	}

	for i := 0; i < samples; i++ {
		rec := buf[i*BytesPerSample:]
		xs[i] = int16(uint16(rec[0])<<8 | uint16(rec[1]))
		ys[i] = int16(uint16(rec[2])<<8 | uint16(rec[3]))
		zs[i] = int16(uint16(rec[4])<<8 | uint16(rec[5]))
	}
	return nil
}
