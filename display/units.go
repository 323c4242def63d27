package display

// ToFeet converts meters to feet.
func ToFeet(meters float64) float64 {
	return meters * 1000 / 25.4 / 12
}

// ToKilometersPerHour converts meters per second to kilometers per hour.
func ToKilometersPerHour(metersPerSecond float32) float32 {
	return metersPerSecond * 3600 / 1000
}

// ToMilesPerHour converts meters per second to miles per hour.
func ToMilesPerHour(metersPerSecond float32) float32 {
	return ToKilometersPerHour(metersPerSecond) / 1.609344
}
