package report

import (
	"context"
	"fmt"
)

// RFM segments.
const (
	SegmentChampions      = "Champions"
	SegmentCannotLose     = "Cannot Lose Them"
	SegmentAtRisk         = "At Risk"
	SegmentLoyal          = "Loyal Customers"
	SegmentPotential      = "Potential Loyalists"
	SegmentNew            = "New Customers"
	SegmentHibernating    = "Hibernating"
	SegmentLost           = "Lost"
	SegmentNeedsAttention = "Need Attention"
)

// segmentOrder is both the report order and the evaluation order of Segment.
var segmentOrder = []string{
	SegmentChampions,
	SegmentCannotLose,
	SegmentAtRisk,
	SegmentLoyal,
	SegmentPotential,
	SegmentNew,
	SegmentHibernating,
	SegmentLost,
	SegmentNeedsAttention,
}

var segmentAdvice = map[string]string{
	SegmentChampions:      "Reward them, offer early access and ask for referrals.",
	SegmentCannotLose:     "Reach out personally with a strong offer before they churn.",
	SegmentAtRisk:         "Send a win-back campaign with a service reminder and discount.",
	SegmentLoyal:          "Upsell maintenance packages and enrol them in the loyalty program.",
	SegmentPotential:      "Offer a membership or bundle to build the habit.",
	SegmentNew:            "Follow up after the first service and schedule the next visit.",
	SegmentHibernating:    "Reactivate with a seasonal promotion.",
	SegmentLost:           "Low priority; include them in broad campaigns only.",
	SegmentNeedsAttention: "Send a limited-time offer based on their last service.",
}

// Segment maps quintile scores (1..5, 5 best) to a named segment.
func Segment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r <= 2 && f >= 4 && m >= 4:
		return SegmentCannotLose
	case r <= 2 && f >= 3:
		return SegmentAtRisk
	case f >= 4:
		return SegmentLoyal
	case r >= 4 && f >= 2:
		return SegmentPotential
	case r >= 4 && f <= 1:
		return SegmentNew
	case r <= 2 && f <= 2 && m >= 3:
		return SegmentHibernating
	case r <= 2 && f <= 2:
		return SegmentLost
	default:
		return SegmentNeedsAttention
	}
}

type RFM struct {
	src CustomerSource
}

func NewRFM(src CustomerSource) *RFM { return &RFM{src: src} }

func (g *RFM) Name() string { return NameRFM }

func (g *RFM) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := fmt.Sprintf("RFM Customer Segmentation (as of %s):", p.ToString())

	scores, err := g.src.RFMScores(ctx, req.CompanyID, p.To)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return NoData(title, "customer RFM", p), nil
	}

	counts := make(map[string]int)
	monetary := make(map[string]float64)
	for _, s := range scores {
		seg := Segment(s.R, s.F, s.M)
		counts[seg]++
		monetary[seg] += s.Monetary
	}

	var l lines
	l.add("- Customers Scored: %d", len(scores))
	l.blank()
	l.add("Segments:")
	for _, seg := range segmentOrder {
		n := counts[seg]
		if n == 0 {
			continue
		}
		l.add("- %s: %d customers (%.2f%%), value %s", seg, n, pct(float64(n), float64(len(scores))), money(monetary[seg]))
	}
	l.blank()
	l.add("Recommendations:")
	for _, seg := range segmentOrder {
		if counts[seg] == 0 {
			continue
		}
		l.add("- %s: %s", seg, segmentAdvice[seg])
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricCustomersScored: float64(len(scores)),
			MetricAtRisk:          float64(counts[SegmentAtRisk] + counts[SegmentCannotLose]),
			MetricChampions:       float64(counts[SegmentChampions]),
			"lost":                float64(counts[SegmentLost]),
		},
	}, nil
}
