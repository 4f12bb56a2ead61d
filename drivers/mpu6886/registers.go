// Package mpu6886 provides constants for register addresses and bitfields used
// in the operation of the MPU-6886 6-axis motion tracking device.
package mpu6886

const (
	// 7-bit I2C address (AD0 low).
	Address = 0x68

	// WHO_AM_I response for the MPU-6886 die.
	whoAmIResponse = 0x19

	// --- Register sub-addresses (8-bit registers) ---

	regSmplrtDiv    = 0x19 // R/W, sample-rate divisor
	regConfig       = 0x1A // R/W, DLPF + FIFO mode
	regGyroConfig   = 0x1B // R/W, gyro full-scale + FCHOICE_B
	regAccelConfig  = 0x1C // R/W, accel full-scale
	regAccelConfig2 = 0x1D // R/W, accel DLPF / averaging
	regFifoEn       = 0x23 // R/W, per-sensor FIFO routing
	regAccelXoutH   = 0x3B // R, 6 bytes X/Y/Z big-endian
	regTempOutH     = 0x41 // R, 2 bytes big-endian
	regGyroXoutH    = 0x43 // R, 6 bytes X/Y/Z big-endian
	regUserCtrl     = 0x6A // R/W, FIFO enable/reset
	regPwrMgmt1     = 0x6B // R/W, reset, clock select, cycle
	regFifoCountH   = 0x72 // R, 16-bit FIFO byte count, big-endian
	regFifoRW       = 0x74 // R, FIFO data port
	regWhoAmI       = 0x75 // R

	// --- PWR_MGMT_1 bits ---
	pwrDeviceReset   = 1 << 7
	pwrCycle         = 1 << 5 // accel low-power cycling
	pwrClkAutoSelect = 0x01

	// --- CONFIG bits ---
	cfgReserved     = 1 << 7 // must be kept cleared
	cfgFifoModeStop = 1 << 6 // set: stop on full; cleared: replace oldest
	cfgDLPFMask     = 0b111
	cfgDLPFMode1    = 0b001

	// --- GYRO_CONFIG bits ---
	gyroFChoiceBMask = 0b11 // must be 00 for SMPLRT_DIV to apply

	// --- ACCEL_CONFIG2 bits ---
	accelCfg2FieldMask = 0b111111 // DEC2_CFG (5:4), FIFO_SIZE (3), A_DLPF_CFG (2:0)
	accelCfg2DLPFMax   = 0b111    // 4x averaging (DEC2_CFG=0) + max filtering

	// --- FIFO_EN bits ---
	fifoEnGyro  = 1 << 4 // gyro routing; not enabled by this driver
	fifoEnAccel = 1 << 3

	// --- USER_CTRL bits ---
	userFifoEnable = 1 << 6
	userFifoReset  = 1 << 2
)

// Full-scale selector bit patterns, as written to ACCEL_CONFIG / GYRO_CONFIG.

type AccelFS byte

const (
	AccelFS2G  AccelFS = 0b00000000
	AccelFS4G  AccelFS = 0b00001000
	AccelFS8G  AccelFS = 0b00010000
	AccelFS16G AccelFS = 0b00011000
)

type GyroFS byte

const (
	GyroFS250DPS  GyroFS = 0b00000000
	GyroFS500DPS  GyroFS = 0b00001000
	GyroFS1000DPS GyroFS = 0b00010000
	GyroFS2000DPS GyroFS = 0b00011000
)

// Sensitivity divisors (LSB per physical unit) for each full-scale setting.
var accelSensitivity = map[AccelFS]float64{
	AccelFS2G:  16384, // 0.061 mg / digit
	AccelFS4G:  8192,  // 0.122 mg / digit
	AccelFS8G:  4096,  // 0.244 mg / digit
	AccelFS16G: 2048,  // 0.488 mg / digit
}

var gyroSensitivity = map[GyroFS]float64{
	GyroFS250DPS:  131,
	GyroFS500DPS:  62.5,
	GyroFS1000DPS: 32.8,
	GyroFS2000DPS: 16.4,
}

// ODR → SMPLRT_DIV. The divisor only applies with FCHOICE_B=00 and 0<DLPF_CFG<7;
// SetOutputDataRate establishes both.
var odrDivisor = map[uint16]byte{
	10:  99,
	50:  19,
	100: 9,
	200: 4,
	250: 3,
}

// Die temperature conversion.
const (
	tempSensitivity = 326.8 // LSB per °C
	tempOffset      = 25.0
)

// Output scale factors for the unit conversions.
const (
	SFGravity          = 1.0
	SFMetresPerSecSq   = 9.80665 // 1 g in m/s²
	SFDegreesPerSecond = 1.0
	SFRadiansPerSecond = 0.017453292519943
)
