//go:build rp2040

package main

import (
	"context"
	"fmt"
	"machine"
	"time"

	"imucode-go/drivers/mpu6886"
	"imucode-go/services/imu"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const (
	sampleRateHz = 100
	batchSamples = 50
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[imu] boot")

	_ = machine.I2C0.Configure(machine.I2CConfig{Frequency: 400_000})
	_ = uartx.UART0.Configure(uartx.UARTConfig{BaudRate: 115200})

	dev := mpu6886.New(machine.I2C0)
	err := dev.Configure(mpu6886.Config{
		AccelFS:   mpu6886.AccelFS2G,
		GyroFS:    mpu6886.GyroFS250DPS,
		AccelUnit: mpu6886.SFMetresPerSecSq,
		GyroUnit:  mpu6886.SFDegreesPerSecond,
	})
	if err != nil {
		println("[imu] configure failed:", err.Error())
		return
	}

	// One-shot sanity readings over the direct register path.
	if temp, err := dev.Temperature(); err == nil {
		emit(fmt.Sprintf("die temp: %.1f C\n", temp))
	}

	// Keep the board still during calibration.
	off, err := dev.Calibrate(64, 2*time.Millisecond)
	if err != nil {
		println("[imu] calibrate failed:", err.Error())
		return
	}
	emit(fmt.Sprintf("gyro offset: %.3f %.3f %.3f\n", off[0], off[1], off[2]))

	s := imu.NewStreamer(&dev, imu.Config{
		SampleRateHz: sampleRateHz,
		BatchSamples: batchSamples,
	})
	go func() {
		if err := s.Run(context.Background()); err != nil {
			println("[imu] stream stopped:", err.Error())
		}
	}()

	for res := range s.Results() {
		if res.Err != nil {
			println("[imu]", string(res.Code), res.Err.Error())
			continue
		}
		b := res.Batch
		emit(fmt.Sprintf("xyz\t%d\t%d\t%d\n", mean(b.X), mean(b.Y), mean(b.Z)))
	}
}

// emit prints to the console and mirrors the line on UART0.
func emit(line string) {
	print(line)
	_, _ = uartx.UART0.Write([]byte(line))
}

func mean(v []int16) int {
	if len(v) == 0 {
		return 0
	}
	sum := 0
	for _, s := range v {
		sum += int(s)
	}
	return sum / len(v)
}
