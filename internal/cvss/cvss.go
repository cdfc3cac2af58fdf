// Package cvss scores CVSS v3.x vector strings and maps scores to severity
// levels. Malformed vectors score 0.0 instead of failing, so callers can
// treat scoring as a total function.
package cvss

import (
	"math"
	"strings"
)

// Level is a severity level derived from a CVSS score.
type Level string

// Severity levels, lowest to highest.
const (
	LevelInfo     Level = "info"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Number returns the 1-based ordinal of the level (info=1 .. critical=5).
func (l Level) Number() int {
	switch l {
	case LevelCritical:
		return 5
	case LevelHigh:
		return 4
	case LevelMedium:
		return 3
	case LevelLow:
		return 2
	default:
		return 1
	}
}

// LevelFromScore maps a CVSS score to its severity level using the standard
// qualitative rating scale, with 0.0 mapped to info.
func LevelFromScore(score float64) Level {
	switch {
	case score >= 9.0:
		return LevelCritical
	case score >= 7.0:
		return LevelHigh
	case score >= 4.0:
		return LevelMedium
	case score > 0.0:
		return LevelLow
	default:
		return LevelInfo
	}
}

// LevelNumberFromScore maps a CVSS score to the ordinal of its level.
func LevelNumberFromScore(score float64) int {
	return LevelFromScore(score).Number()
}

// Base metric weights from the CVSS v3.1 specification.
var (
	weightAV     = map[string]float64{"N": 0.85, "A": 0.62, "L": 0.55, "P": 0.2}
	weightAC     = map[string]float64{"L": 0.77, "H": 0.44}
	weightUI     = map[string]float64{"N": 0.85, "R": 0.62}
	weightImpact = map[string]float64{"H": 0.56, "L": 0.22, "N": 0.0}

	// PR weights depend on scope.
	weightPRUnchanged = map[string]float64{"N": 0.85, "L": 0.62, "H": 0.27}
	weightPRChanged   = map[string]float64{"N": 0.85, "L": 0.68, "H": 0.5}
)

// requiredBase lists the metrics every valid base vector must define.
var requiredBase = []string{"AV", "AC", "PR", "UI", "S", "C", "I", "A"}

// ParseVector splits a CVSS v3.x vector string into its metric map. The
// second return value reports whether the vector carries a complete base
// metric group.
func ParseVector(vector string) (map[string]string, bool) {
	metrics := map[string]string{}
	rest, ok := strings.CutPrefix(vector, "CVSS:3.1/")
	if !ok {
		rest, ok = strings.CutPrefix(vector, "CVSS:3.0/")
	}
	if !ok {
		return metrics, false
	}
	for _, part := range strings.Split(rest, "/") {
		key, value, found := strings.Cut(part, ":")
		if !found || key == "" || value == "" {
			return metrics, false
		}
		metrics[key] = value
	}
	for _, key := range requiredBase {
		if _, present := metrics[key]; !present {
			return metrics, false
		}
	}
	return metrics, true
}

// CalculateMetrics scores a vector string and returns the full metric
// breakdown: parsed metric values, base sub-scores, and the final score.
// Invalid vectors yield a complete tree with all scores at 0.0.
func CalculateMetrics(vector string) map[string]any {
	metrics, valid := ParseVector(vector)
	out := map[string]any{
		"metrics": metrics,
		"base":    map[string]any{"score": 0.0, "impact": 0.0, "exploitability": 0.0},
		"final":   map[string]any{"score": 0.0},
	}
	if !valid {
		return out
	}

	scopeChanged := metrics["S"] == "C"
	prWeights := weightPRUnchanged
	if scopeChanged {
		prWeights = weightPRChanged
	}
	av, okAV := weightAV[metrics["AV"]]
	ac, okAC := weightAC[metrics["AC"]]
	pr, okPR := prWeights[metrics["PR"]]
	ui, okUI := weightUI[metrics["UI"]]
	c, okC := weightImpact[metrics["C"]]
	i, okI := weightImpact[metrics["I"]]
	a, okA := weightImpact[metrics["A"]]
	if !(okAV && okAC && okPR && okUI && okC && okI && okA) {
		return out
	}

	iss := 1 - (1-c)*(1-i)*(1-a)
	var impact float64
	if scopeChanged {
		impact = 7.52*(iss-0.029) - 3.25*math.Pow(iss-0.02, 15)
	} else {
		impact = 6.42 * iss
	}
	exploitability := 8.22 * av * ac * pr * ui

	var score float64
	if impact > 0 {
		if scopeChanged {
			score = roundUp(math.Min(1.08*(impact+exploitability), 10))
		} else {
			score = roundUp(math.Min(impact+exploitability, 10))
		}
	}

	out["base"] = map[string]any{
		"score":          score,
		"impact":         impact,
		"exploitability": exploitability,
	}
	out["final"] = map[string]any{"score": score}
	return out
}

// roundUp implements the CVSS v3.1 Roundup function: round up to one
// decimal, using integer arithmetic to dodge floating point drift.
func roundUp(x float64) float64 {
	scaled := int(math.Round(x * 100000))
	if scaled%10000 == 0 {
		return float64(scaled) / 100000
	}
	return (math.Floor(float64(scaled)/10000) + 1) / 10
}
