package inference

import "github.com/ecovision-ai/birdsense/internal/detection"

// Classification method identifiers reported in the result envelope.
const (
	MethodCloudAPI         = "Cloud API"
	MethodSignalProcessing = "Enhanced Signal Processing"
)

// Nominal accuracy constants per classification method. These are advisory
// figures surfaced to the caller, not measured values.
const (
	CloudAccuracy = 0.97
	LocalAccuracy = 0.78
)

// Envelope is the uniform result of one inference call, regardless of which
// classification path produced it.
type Envelope struct {
	Results         []detection.Result `json:"results"`
	Method          string             `json:"method"`
	NominalAccuracy float64            `json:"nominal_accuracy"`
	IsOnline        bool               `json:"is_online"`
}
