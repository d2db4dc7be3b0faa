package models

import "time"

// FeatureCount is the fixed width of a sample's feature vector.
const FeatureCount = 5

// MetricsSample is a normalized health snapshot of one service at one instant.
// Samples are immutable once produced by the collector.
type MetricsSample struct {
	Service      string
	Timestamp    time.Time
	ResponseTime float64 // seconds
	ErrorRate    float64 // fraction in [0,1]
	CPUUsage     float64 // percent
	MemoryUsage  float64 // percent
	RequestCount int
	IsHealthy    bool
}

// Features projects the sample onto its fixed-order numeric feature vector:
// [response_time, error_rate, cpu_usage, memory_usage, request_count].
// The scaler and the anomaly model are both defined over this ordering.
func (s MetricsSample) Features() []float64 {
	return []float64{
		s.ResponseTime,
		s.ErrorRate,
		s.CPUUsage,
		s.MemoryUsage,
		float64(s.RequestCount),
	}
}
