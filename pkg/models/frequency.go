package models

// FrequencyPoint represents a single point of a response curve
type FrequencyPoint struct {
	Frequency float64 `json:"frequency" doc:"Frequency in MHz"`
	Value     float64 `json:"value" doc:"Response value in the channel unit (dB or ns)"`
}
