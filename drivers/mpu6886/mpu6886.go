// Package mpu6886 provides a driver for the MPU-6886 6-axis motion tracking
// device (3-axis accelerometer, 3-axis gyroscope, die temperature).
//
// Two read paths are exposed:
//
//	d.Acceleration() / d.Gyro() / d.Temperature()   // direct register reads
//	d.FIFOCount() + d.ReadSamplesInto(buf)          // bulk accelerometer FIFO drain
//
// Every reading method issues bus I/O on each call; nothing is cached.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package mpu6886

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrDeviceNotFound   = errors.New("mpu6886: device not found on I2C bus")
	ErrUnsupportedRate  = errors.New("mpu6886: unsupported output data rate")
	ErrUnsupportedScale = errors.New("mpu6886: unsupported full-scale selector")
	ErrInvalidLength    = errors.New("mpu6886: invalid buffer or sample count")
	ErrFIFOCapacity     = errors.New("mpu6886: request exceeds FIFO capacity")
)

// Config controls device setup. All fields are optional; zero values select
// the defaults listed per field.
type Config struct {
	// Address defaults to 0x68 if zero.
	Address uint16
	// AccelFS defaults to AccelFS2G.
	AccelFS AccelFS
	// GyroFS defaults to GyroFS250DPS.
	GyroFS GyroFS
	// AccelUnit is the output scale factor for acceleration.
	// Default SFMetresPerSecSq; pass SFGravity for g.
	AccelUnit float64
	// GyroUnit is the output scale factor for angular rate.
	// Default SFRadiansPerSecond; pass SFDegreesPerSecond for deg/s.
	GyroUnit float64
	// GyroOffset is an initial per-axis bias, in output units.
	// Usually the result of an earlier Calibrate run.
	GyroOffset [3]float64
	// ResetDelay is the settle time after the reset write. Default 100 ms.
	ResetDelay time.Duration
}

// Device wraps an I2C connection to an MPU-6886 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	accelSens float64 // LSB per g at the configured full scale
	gyroSens  float64 // LSB per deg/s at the configured full scale
	accelSF   float64
	gyroSF    float64
	offset    [3]float64

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [8]byte
}

// New creates a new MPU-6886 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not touch
// the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure verifies the device identity, resets it and applies the supplied
// configuration. Returns ErrDeviceNotFound if the WHO_AM_I register does not
// match the MPU-6886 response.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.AccelUnit == 0 {
		cfg.AccelUnit = SFMetresPerSecSq
	}
	if cfg.GyroUnit == 0 {
		cfg.GyroUnit = SFRadiansPerSecond
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = 100 * time.Millisecond
	}

	id, err := d.WhoAmI()
	if err != nil {
		return err
	}
	if id != whoAmIResponse {
		return ErrDeviceNotFound
	}

	if err := d.writeReg(regPwrMgmt1, pwrDeviceReset); err != nil {
		return err
	}
	time.Sleep(cfg.ResetDelay)
	if err := d.writeReg(regPwrMgmt1, pwrClkAutoSelect); err != nil {
		return err
	}

	if err := d.SetAccelFullScale(cfg.AccelFS); err != nil {
		return err
	}
	if err := d.SetGyroFullScale(cfg.GyroFS); err != nil {
		return err
	}
	d.accelSF = cfg.AccelUnit
	d.gyroSF = cfg.GyroUnit
	d.offset = cfg.GyroOffset
	return nil
}

// WhoAmI reads the identity register.
func (d *Device) WhoAmI() (byte, error) {
	return d.readReg(regWhoAmI)
}

// Connected reports whether a responding MPU-6886 is present on the bus.
func (d *Device) Connected() bool {
	id, err := d.WhoAmI()
	return err == nil && id == whoAmIResponse
}

// SetAccelFullScale writes the accelerometer full-scale selector and stores
// the matching sensitivity divisor for later unit conversion.
func (d *Device) SetAccelFullScale(fs AccelFS) error {
	sens, ok := accelSensitivity[fs]
	if !ok {
		return ErrUnsupportedScale
	}
	if err := d.writeReg(regAccelConfig, byte(fs)); err != nil {
		return err
	}
	d.accelSens = sens
	return nil
}

// SetGyroFullScale writes the gyroscope full-scale selector and stores the
// matching sensitivity divisor for later unit conversion.
func (d *Device) SetGyroFullScale(fs GyroFS) error {
	sens, ok := gyroSensitivity[fs]
	if !ok {
		return ErrUnsupportedScale
	}
	if err := d.writeReg(regGyroConfig, byte(fs)); err != nil {
		return err
	}
	d.gyroSens = sens
	return nil
}

// SetOutputDataRate configures the sample rate. Only the rates present in the
// divisor table (10, 50, 100, 200, 250 Hz) are accepted; any other value
// returns ErrUnsupportedRate with the device untouched.
//
// SMPLRT_DIV only takes effect with FCHOICE_B=00 and 0<DLPF_CFG<7, so the
// filter configuration is written around the divisor in that order.
func (d *Device) SetOutputDataRate(hz uint16) error {
	div, ok := odrDivisor[hz]
	if !ok {
		return ErrUnsupportedRate
	}

	// Accel low-power cycling between samples.
	if err := d.updateReg(regPwrMgmt1, pwrCycle, 0); err != nil {
		return err
	}
	// 4x sample averaging, maximum accel low-pass filtering.
	if err := d.updateReg(regAccelConfig2, accelCfg2DLPFMax, accelCfg2FieldMask); err != nil {
		return err
	}
	if err := d.writeReg(regSmplrtDiv, div); err != nil {
		return err
	}
	// Gyro FCHOICE_B=00 so the divisor applies.
	if err := d.updateReg(regGyroConfig, 0, gyroFChoiceBMask); err != nil {
		return err
	}
	// DLPF_CFG=1; reserved bit 7 kept cleared.
	return d.updateReg(regConfig, cfgDLPFMode1, cfgReserved|cfgDLPFMask)
}

// Acceleration reads the instantaneous accelerometer values, converted with
// the configured full-scale sensitivity and output unit.
func (d *Device) Acceleration() (x, y, z float64, err error) {
	rx, ry, rz, err := d.readThreeS16(regAccelXoutH)
	if err != nil {
		return 0, 0, 0, err
	}
	return toUnits(rx, d.accelSens, d.accelSF),
		toUnits(ry, d.accelSens, d.accelSF),
		toUnits(rz, d.accelSens, d.accelSF),
		nil
}

// Gyro reads the instantaneous angular rates, converted with the configured
// full-scale sensitivity and output unit, with the stored bias subtracted.
func (d *Device) Gyro() (x, y, z float64, err error) {
	rx, ry, rz, err := d.readThreeS16(regGyroXoutH)
	if err != nil {
		return 0, 0, 0, err
	}
	return toUnits(rx, d.gyroSens, d.gyroSF) - d.offset[0],
		toUnits(ry, d.gyroSens, d.gyroSF) - d.offset[1],
		toUnits(rz, d.gyroSens, d.gyroSF) - d.offset[2],
		nil
}

// Temperature reads the die temperature in °C.
func (d *Device) Temperature() (float64, error) {
	raw, err := d.readS16(regTempOutH)
	if err != nil {
		return 0, err
	}
	return TemperatureCelsius(raw), nil
}

// Calibrate samples the gyroscope count times, sleeping delay between reads,
// and stores the per-axis mean as the new bias offset. The previous offset is
// cleared for the duration of the run. count < 1 returns ErrInvalidLength.
func (d *Device) Calibrate(count int, delay time.Duration) ([3]float64, error) {
	if count < 1 {
		return [3]float64{}, ErrInvalidLength
	}
	d.offset = [3]float64{}

	var sum [3]float64
	for i := 0; i < count; i++ {
		if delay > 0 {
			time.Sleep(delay)
		}
		gx, gy, gz, err := d.Gyro()
		if err != nil {
			return [3]float64{}, err
		}
		sum[0] += gx
		sum[1] += gy
		sum[2] += gz
	}

	n := float64(count)
	d.offset = [3]float64{sum[0] / n, sum[1] / n, sum[2] / n}
	return d.offset, nil
}

// GyroOffset returns the stored per-axis bias, in output units.
func (d *Device) GyroOffset() [3]float64 { return d.offset }

// SetGyroOffset replaces the stored bias, e.g. restoring a persisted
// calibration result.
func (d *Device) SetGyroOffset(offset [3]float64) { d.offset = offset }

// AccelValue converts a raw accelerometer count (as delivered by the FIFO)
// into the configured output unit.
func (d *Device) AccelValue(raw int16) float64 {
	return toUnits(raw, d.accelSens, d.accelSF)
}

// GyroValue converts a raw gyroscope count for the given axis (0=X, 1=Y,
// 2=Z) into the configured output unit, with the stored bias subtracted.
func (d *Device) GyroValue(axis int, raw int16) float64 {
	return toUnits(raw, d.gyroSens, d.gyroSF) - d.offset[axis]
}

// TemperatureCelsius converts a raw die-temperature count into °C.
func TemperatureCelsius(raw int16) float64 {
	return float64(raw)/tempSensitivity + tempOffset
}

func toUnits(raw int16, sensitivity, scale float64) float64 {
	return float64(raw) / sensitivity * scale
}

// ---------------- Low-level register access ----------------

func (d *Device) readReg(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.Address, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

// readRegs performs one bulk read of len(buf) bytes starting at reg.
func (d *Device) readRegs(reg byte, buf []byte) error {
	d.w[0] = reg
	return d.bus.Tx(d.Address, d.w[:1], buf)
}

func (d *Device) writeReg(reg, val byte) error {
	d.w[0] = reg
	d.w[1] = val
	return d.bus.Tx(d.Address, d.w[:2], nil)
}

// updateReg is the read-modify-write helper: clear first, then set.
func (d *Device) updateReg(reg byte, set, clear byte) error {
	cur, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, (cur&^clear)|set)
}

// readS16 reads one big-endian signed 16-bit value at reg.
func (d *Device) readS16(reg byte) (int16, error) {
	if err := d.readRegs(reg, d.r[:2]); err != nil {
		return 0, err
	}
	return int16(uint16(d.r[0])<<8 | uint16(d.r[1])), nil
}

// readThreeS16 reads three consecutive big-endian signed 16-bit values at reg.
func (d *Device) readThreeS16(reg byte) (a, b, c int16, err error) {
	if err := d.readRegs(reg, d.r[:6]); err != nil {
		return 0, 0, 0, err
	}
	a = int16(uint16(d.r[0])<<8 | uint16(d.r[1]))
	b = int16(uint16(d.r[2])<<8 | uint16(d.r[3]))
	c = int16(uint16(d.r[4])<<8 | uint16(d.r[5]))
	return a, b, c, nil
}
