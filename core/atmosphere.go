package core

import (
	"errors"
	"fmt"
	"math"
)

// International Standard Atmosphere constants.
const (
	SeaLevelTemperatureK = 288.15  // K
	SeaLevelPressurePa   = 101325  // Pa
	SeaLevelDensity      = 1.225   // kg/m^3
	TemperatureLapseRate = 0.0065  // K/m, troposphere
	GasConstantAir       = 287.05  // J/(kg*K)
	Gravity              = 9.80665 // m/s^2
	TropopauseAltitudeM  = 11000   // m
)

var ErrInvalidAltitude = errors.New("invalid altitude")

// TemperatureAtAltitude returns the ISA temperature in Kelvin at the given
// altitude in metres. Above the tropopause the temperature is held constant.
func TemperatureAtAltitude(altitudeM float64) (float64, error) {
	if err := checkAltitude(altitudeM); err != nil {
		return 0, err
	}
	if altitudeM > TropopauseAltitudeM {
		altitudeM = TropopauseAltitudeM
	}
	return SeaLevelTemperatureK - TemperatureLapseRate*altitudeM, nil
}

// PressureAtAltitude returns the ISA pressure in Pascals at the given altitude
// in metres, using the barometric formula in the troposphere and an
// isothermal exponential above it.
func PressureAtAltitude(altitudeM float64) (float64, error) {
	if err := checkAltitude(altitudeM); err != nil {
		return 0, err
	}

	exponent := Gravity / (TemperatureLapseRate * GasConstantAir)
	if altitudeM <= TropopauseAltitudeM {
		temp, _ := TemperatureAtAltitude(altitudeM)
		return SeaLevelPressurePa * math.Pow(temp/SeaLevelTemperatureK, exponent), nil
	}

	tempTrop := SeaLevelTemperatureK - TemperatureLapseRate*TropopauseAltitudeM
	pressureTrop := SeaLevelPressurePa * math.Pow(tempTrop/SeaLevelTemperatureK, exponent)
	return pressureTrop * math.Exp(-Gravity*(altitudeM-TropopauseAltitudeM)/(GasConstantAir*tempTrop)), nil
}

// AirDensityAtAltitude returns the ISA air density in kg/m^3 at the given
// altitude in metres via the ideal gas law.
func AirDensityAtAltitude(altitudeM float64) (float64, error) {
	pressure, err := PressureAtAltitude(altitudeM)
	if err != nil {
		return 0, err
	}
	temp, _ := TemperatureAtAltitude(altitudeM)
	return pressure / (GasConstantAir * temp), nil
}

// DensityAltitude applies the E6B rule of thumb: pressure altitude plus
// 118.8 ft for every degree Celsius above the ISA temperature at that
// altitude (15C at sea level, lapsing 2C per 1000 ft).
func DensityAltitude(pressureAltFt, oatC float64) (float64, error) {
	if !isFinite(pressureAltFt) || !isFinite(oatC) {
		return 0, fmt.Errorf("%w: non-finite input", ErrInvalidAltitude)
	}
	isaC := 15.0 - 2.0*pressureAltFt/1000.0
	return pressureAltFt + 118.8*(oatC-isaC), nil
}

func checkAltitude(altitudeM float64) error {
	if !isFinite(altitudeM) {
		return fmt.Errorf("%w: non-finite altitude", ErrInvalidAltitude)
	}
	if altitudeM < 0 {
		return fmt.Errorf("%w: altitude %v must be non-negative", ErrInvalidAltitude, altitudeM)
	}
	return nil
}
