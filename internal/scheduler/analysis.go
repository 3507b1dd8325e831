package scheduler

import (
	"fmt"
	"math"
)

// Quality thresholds and deductions.
const (
	maxAcceptableRun       = 3
	maxImbalanceRatio      = 3.0
	minAcceptableGap       = 2.0
	runPenalty             = 20
	imbalancePenalty       = 15
	gapPenalty             = 10
	qualityExcellentCutoff = 90
	qualityGoodCutoff      = 75
	qualityAcceptCutoff    = 60
)

// Quality labels.
const (
	QualityExcellent  = "Excellent"
	QualityGood       = "Good"
	QualityAcceptable = "Acceptable"
	QualityNeedsWork  = "Needs improvement"
)

// DistributionAnalysis measures a distributed sequence.
type DistributionAnalysis struct {
	TotalTopics                  int                `json:"totalTopics"`
	SubjectDistribution          map[string]int     `json:"subjectDistribution"`
	MaxConsecutiveSubject        int                `json:"maxConsecutiveSubject"`
	AverageGapBetweenSameSubject map[string]float64 `json:"averageGapBetweenSameSubject"`
}

// QualityReport scores a DistributionAnalysis.
type QualityReport struct {
	Score           int      `json:"score"`
	Level           string   `json:"level"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

// DistributionSummary is the compact form attached to generation responses.
type DistributionSummary struct {
	Subjects              int    `json:"subjects"`
	MaxConsecutiveSubject int    `json:"maxConsecutiveTopics"`
	Balance               string `json:"balanceScore"`
}

// AnalyzeDistribution counts topics per subject, finds the longest
// same-subject run, and averages the number of other-subject entries between
// successive occurrences of each subject seen at least twice.
func AnalyzeDistribution(seq []Topic) DistributionAnalysis {
	analysis := DistributionAnalysis{
		TotalTopics:                  len(seq),
		SubjectDistribution:          make(map[string]int),
		AverageGapBetweenSameSubject: make(map[string]float64),
	}

	positions := make(map[string][]int)
	run := 0
	for i, topic := range seq {
		analysis.SubjectDistribution[topic.SubjectName]++
		positions[topic.SubjectName] = append(positions[topic.SubjectName], i)

		if i > 0 && seq[i-1].SubjectName == topic.SubjectName {
			run++
		} else {
			run = 1
		}
		if run > analysis.MaxConsecutiveSubject {
			analysis.MaxConsecutiveSubject = run
		}
	}

	for subject, idx := range positions {
		if len(idx) < 2 {
			continue
		}
		total := 0
		for k := 1; k < len(idx); k++ {
			total += idx[k] - idx[k-1] - 1
		}
		analysis.AverageGapBetweenSameSubject[subject] = float64(total) / float64(len(idx)-1)
	}
	return analysis
}

// ValidateDistributionQuality starts from 100 and deducts for long runs,
// subject imbalance and tight spacing.
func ValidateDistributionQuality(analysis DistributionAnalysis) QualityReport {
	report := QualityReport{Score: 100, Issues: []string{}, Recommendations: []string{}}

	if analysis.MaxConsecutiveSubject > maxAcceptableRun {
		report.Score -= runPenalty
		report.Issues = append(report.Issues, fmt.Sprintf("Up to %d consecutive topics from the same subject", analysis.MaxConsecutiveSubject))
		report.Recommendations = append(report.Recommendations, "Apply a stronger shuffle between subjects")
	}

	if len(analysis.SubjectDistribution) > 0 {
		minCount, maxCount := math.MaxInt, 0
		for _, count := range analysis.SubjectDistribution {
			if count < minCount {
				minCount = count
			}
			if count > maxCount {
				maxCount = count
			}
		}
		if ratio := float64(maxCount) / float64(minCount); ratio > maxImbalanceRatio {
			report.Score -= imbalancePenalty
			report.Issues = append(report.Issues, fmt.Sprintf("Subject imbalance: %.1fx", ratio))
			report.Recommendations = append(report.Recommendations, "Review subject weights")
		}
	}

	if len(analysis.AverageGapBetweenSameSubject) > 0 {
		minGap := math.Inf(1)
		for _, gap := range analysis.AverageGapBetweenSameSubject {
			minGap = math.Min(minGap, gap)
		}
		if minGap < minAcceptableGap {
			report.Score -= gapPenalty
			report.Issues = append(report.Issues, "Topics from the same subject are too close together")
			report.Recommendations = append(report.Recommendations, "Increase the minimum spacing between topics of the same subject")
		}
	}

	report.Level = qualityLevel(report.Score)
	return report
}

func qualityLevel(score int) string {
	switch {
	case score >= qualityExcellentCutoff:
		return QualityExcellent
	case score >= qualityGoodCutoff:
		return QualityGood
	case score >= qualityAcceptCutoff:
		return QualityAcceptable
	default:
		return QualityNeedsWork
	}
}

// Summary condenses the analysis for API responses.
func (a DistributionAnalysis) Summary() DistributionSummary {
	balance := "Good"
	if a.MaxConsecutiveSubject > maxAcceptableRun {
		balance = "Needs Improvement"
	}
	return DistributionSummary{
		Subjects:              len(a.SubjectDistribution),
		MaxConsecutiveSubject: a.MaxConsecutiveSubject,
		Balance:               balance,
	}
}

// IsPermutation reports whether out holds exactly the topic ids of in.
func IsPermutation(in, out []Topic) bool {
	if len(in) != len(out) {
		return false
	}
	seen := make(map[string]int, len(in))
	for _, t := range in {
		seen[t.ID]++
	}
	for _, t := range out {
		seen[t.ID]--
		if seen[t.ID] < 0 {
			return false
		}
	}
	return true
}
