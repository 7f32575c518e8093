package domain

import (
	"math"
	"time"
)

// HealthFactors are the five normalized inputs of the health score.
type HealthFactors struct {
	AvgConfidence       float64 `json:"avg_confidence"`
	ApprovalRatio       float64 `json:"approval_ratio"`
	ComplianceRate      float64 `json:"compliance_rate"`
	CrossValidationRate float64 `json:"cross_validation_rate"`
	DuplicateFreeRate   float64 `json:"duplicate_free_rate"`
}

// AuditSnapshot is one point of the append-only health time series.
type AuditSnapshot struct {
	RunID       string                    `json:"run_id"`
	HealthScore float64                   `json:"health_score"`
	Factors     HealthFactors             `json:"factor_breakdown"`
	Categories  map[string]CategoryHealth `json:"categories,omitempty"`
	CommitHash  string                    `json:"commit_hash,omitempty"`
	Timestamp   time.Time                 `json:"timestamp"`
}

// Rounded returns the health score rounded to the nearest integer.
func (s AuditSnapshot) Rounded() int {
	return int(math.Round(s.HealthScore))
}

type CategoryHealth struct {
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	PatternCount   int     `json:"pattern_count"`
	AvgConfidence  float64 `json:"avg_confidence"`
	ComplianceRate float64 `json:"compliance_rate"`
}

type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// DegradationAlert is derived from a pair of consecutive snapshots.
type DegradationAlert struct {
	Level         AlertLevel `json:"level"`
	Metric        string     `json:"metric"`
	Previous      float64    `json:"previous"`
	Current       float64    `json:"current"`
	Drop          float64    `json:"drop"`
	PreviousRunID string     `json:"previous_run_id"`
	CurrentRunID  string     `json:"current_run_id"`
	Message       string     `json:"message"`
}

// DuplicateScope is the granularity at which pattern overlap is compared.
type DuplicateScope string

const (
	ScopeLocation  DuplicateScope = "location"
	ScopeFile      DuplicateScope = "file"
	ScopeDirectory DuplicateScope = "directory"
)

// DuplicateCandidate is surfaced for review; it is never merged automatically.
type DuplicateCandidate struct {
	PatternA   string         `json:"pattern_a"`
	PatternB   string         `json:"pattern_b"`
	Category   string         `json:"category"`
	Scope      DuplicateScope `json:"scope"`
	Similarity float64        `json:"similarity"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

type TrendPrediction struct {
	Predicted7  float64        `json:"predicted_7"`
	Predicted30 float64        `json:"predicted_30"`
	Slope       float64        `json:"slope"`
	RSquared    float64        `json:"r_squared"`
	Direction   TrendDirection `json:"direction"`
}

// Anomaly is a health value far from the mean of its series.
type Anomaly struct {
	Metric  string  `json:"metric"`
	Value   float64 `json:"value"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	ZScore  float64 `json:"z_score"`
	Message string  `json:"message"`
}

// AuditReport is the result of the audit operation.
type AuditReport struct {
	Latest     *AuditSnapshot     `json:"latest,omitempty"`
	History    []AuditSnapshot    `json:"history"`
	Direction  TrendDirection     `json:"direction"`
	Prediction *TrendPrediction   `json:"prediction,omitempty"`
	Alerts     []DegradationAlert `json:"alerts,omitempty"`
	Anomalies  []Anomaly          `json:"anomalies,omitempty"`
}
