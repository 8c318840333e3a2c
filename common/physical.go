package common

// All units are in metric:
// - Speed is in m/s
// - Distance is in meters
// - Time is in seconds

const SpeedOfWalking = 1.4                   // or 5 km/h
const SpeedOfWalkingMax = 3.0                // brisk jog; anything faster is not walking
const SpeedOfCyclingMean = 8.0               // or 29 km/h
const SpeedOfCyclingMax = 20.0               // or 72 km/h
const SpeedOfDrivingMean = 25.0              // or 90 km/h
const SpeedOfDrivingMax = 45.0               // or 162 km/h
const SpeedOfRetimingMin = 6.0 * 1000 / 3600 // or 6 km/h

// KMH converts m/s to km/h.
func KMH(metersPerSecond float64) float64 {
	return metersPerSecond * 3.6
}
