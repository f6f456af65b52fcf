// Package georegion classifies coordinates into broad geographic regions
// using fixed bounding boxes, and biases signal-level features toward
// physically plausible ranges per region.
//
// The boxes and clamp thresholds are hand-tuned contract constants. They are
// deliberately coarse, since the point is plausibility clamping rather than
// geography, and downstream test fixtures assume these exact values.
package georegion

// Region is one of the five runtime geographic classifications.
type Region string

const (
	Desert      Region = "desert"
	Polar       Region = "polar"
	Coastal     Region = "coastal"
	Tropical    Region = "tropical"
	Mountainous Region = "mountainous"
)

// box is an inclusive latitude/longitude bounding box.
type box struct {
	latMin, latMax float64
	lonMin, lonMax float64
}

func (b box) contains(lat, lon float64) bool {
	return lat >= b.latMin && lat <= b.latMax && lon >= b.lonMin && lon <= b.lonMax
}

var desertBoxes = []box{
	{15, 30, -15, 40},    // Sahara
	{40, 50, 100, 120},   // Gobi
	{-30, -20, -80, -70}, // Atacama
	{-30, -20, 15, 25},   // Kalahari
	{-30, -20, 120, 140}, // Australian interior
}

var coastalBoxes = []box{
	{32, 49, -125, -117}, // North American west coast
	{25, 45, -81, -66},   // North American east coast
	{36, 60, -10, 3},     // European Atlantic coast
	{20, 40, 110, 125},   // East Asian coast
	{-38, -10, 145, 154}, // Australian east coast
}

var mountainBoxes = []box{
	{27, 36, 70, 95},      // Himalaya
	{-55, 10, -75, -65},   // Andes
	{35, 60, -120, -105},  // Rockies
	{43, 48, 5, 15},       // Alps
}

func anyContains(boxes []box, lat, lon float64) bool {
	for _, b := range boxes {
		if b.contains(lat, lon) {
			return true
		}
	}
	return false
}

// IsDesert reports whether the coordinate falls in a major desert box.
func IsDesert(lat, lon float64) bool { return anyContains(desertBoxes, lat, lon) }

// IsPolar reports whether the coordinate lies poleward of the polar circles.
func IsPolar(lat, _ float64) bool {
	if lat < 0 {
		lat = -lat
	}
	return lat > 66.5
}

// IsCoastal reports whether the coordinate falls in a major coastal box.
func IsCoastal(lat, lon float64) bool { return anyContains(coastalBoxes, lat, lon) }

// IsTropical reports whether the coordinate lies between the tropics.
func IsTropical(lat, _ float64) bool {
	if lat < 0 {
		lat = -lat
	}
	return lat <= 23.5
}

// IsMountainous reports whether the coordinate falls in a major range box.
func IsMountainous(lat, lon float64) bool { return anyContains(mountainBoxes, lat, lon) }

// Classify returns every region the coordinate belongs to, in the fixed
// adjustment order: desert, polar, coastal, tropical, mountainous. The order
// matters: when clamps conflict, later regions win.
func Classify(lat, lon float64) []Region {
	var regions []Region
	if IsDesert(lat, lon) {
		regions = append(regions, Desert)
	}
	if IsPolar(lat, lon) {
		regions = append(regions, Polar)
	}
	if IsCoastal(lat, lon) {
		regions = append(regions, Coastal)
	}
	if IsTropical(lat, lon) {
		regions = append(regions, Tropical)
	}
	if IsMountainous(lat, lon) {
		regions = append(regions, Mountainous)
	}
	return regions
}
