package scorer

import "strings"

// speciesCategory is a closed set of acoustic profiles. Each known species
// label maps onto one category; anything unrecognized scores with the generic
// profile.
type speciesCategory int

const (
	categoryOther speciesCategory = iota
	categoryCrow
	categoryRaptor
	categoryChickadee
	categoryFinch
	categoryWoodpecker
	categoryOwl
	categoryJay
	categoryRobin
)

// categoryKeywords maps case-insensitive label substrings to categories.
// Order matters only for readability; keywords do not overlap.
var categoryKeywords = []struct {
	keyword  string
	category speciesCategory
}{
	{"crow", categoryCrow},
	{"raven", categoryCrow},
	{"eagle", categoryRaptor},
	{"hawk", categoryRaptor},
	{"chickadee", categoryChickadee},
	{"wren", categoryChickadee},
	{"finch", categoryFinch},
	{"sparrow", categoryFinch},
	{"woodpecker", categoryWoodpecker},
	{"owl", categoryOwl},
	{"jay", categoryJay},
	{"cardinal", categoryJay},
	{"robin", categoryRobin},
}

// categorize resolves a species label to its acoustic profile category.
func categorize(label string) speciesCategory {
	lower := strings.ToLower(label)
	for _, entry := range categoryKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.category
		}
	}
	return categoryOther
}

// profileWeights holds the weighted linear combination coefficients for one
// category. Terms marked "inverse" in the profile descriptions weight the
// complement (1 - feature) of the normalized feature.
type profileWeights struct {
	lowZeroCrossing float64 // weight on (1 - zcr)
	zeroCrossing    float64 // weight on zcr
	amplitudeRange  float64 // weight on range/255
	amplitude       float64 // weight on avg/255
	energy          float64 // weight on average energy
	centroid        float64 // weight on spectral centroid
	invCentroid     float64 // weight on (1 - centroid)
	rhythm          float64 // weight on rhythmicity
	invRhythm       float64 // weight on (1 - rhythmicity)
}

// profileTable is the fixed scoring table. The values encode which acoustic
// traits each bird group favors: corvids and owls call low and steady, small
// songbirds trill high and bright, woodpeckers drum.
var profileTable = map[speciesCategory]profileWeights{
	categoryCrow: {
		lowZeroCrossing: 0.35,
		amplitudeRange:  0.30,
		energy:          0.20,
		invCentroid:     0.15,
	},
	categoryRaptor: {
		lowZeroCrossing: 0.40,
		amplitudeRange:  0.35,
		invCentroid:     0.15,
	},
	categoryChickadee: {
		zeroCrossing: 0.40,
		centroid:     0.30,
		amplitude:    0.15,
		rhythm:       0.15,
	},
	categoryFinch: {
		zeroCrossing: 0.35,
		amplitude:    0.30,
		centroid:     0.20,
		rhythm:       0.15,
	},
	categoryWoodpecker: {
		amplitudeRange: 0.40,
		rhythm:         0.35,
		energy:         0.15,
		invCentroid:    0.10,
	},
	categoryOwl: {
		lowZeroCrossing: 0.45,
		amplitude:       0.25,
		invCentroid:     0.20,
		invRhythm:       0.10,
	},
	categoryJay: {
		zeroCrossing: 0.30,
		amplitude:    0.30,
		centroid:     0.25,
		rhythm:       0.15,
	},
	categoryRobin: {
		zeroCrossing: 0.35,
		centroid:     0.30,
		energy:       0.20,
		rhythm:       0.15,
	},
	categoryOther: {
		amplitude:    0.30,
		zeroCrossing: 0.30,
		centroid:     0.25,
		rhythm:       0.15,
	},
}
