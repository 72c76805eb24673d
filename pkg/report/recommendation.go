package report

import (
	"context"
	"sort"
)

// Recommendation reports how many of the advisors' service recommendations
// customers actually took.
type Recommendation struct {
	src ServiceSource
}

func NewRecommendation(src ServiceSource) *Recommendation { return &Recommendation{src: src} }

func (g *Recommendation) Name() string { return NameRecommendation }

func (g *Recommendation) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Service Recommendation Realization", p)

	overall, err := g.src.Recommendations(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if overall.Total == 0 {
		return NoData(title, "recommendation", p), nil
	}
	advisors, err := g.src.RecommendationsByAdvisor(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(advisors, func(i, j int) bool {
		return advisors[i].Rate() > advisors[j].Rate()
	})

	var l lines
	l.add("- Orders with Recommendations: %d", overall.Orders)
	l.add("- Recommendations Given: %d", overall.Total)
	l.add("- Recommendations Realized: %d (%.2f%%)", overall.Realized, overall.Rate())
	if len(advisors) > 0 {
		l.blank()
		l.add("Realization by Service Advisor:")
		for i, a := range advisors {
			l.add("%d. %s: %d of %d (%.2f%%)", i+1, a.Name, a.Realized, a.Total, a.Rate())
		}
	}
	if overall.Rate() < 50 {
		l.blank()
		l.add("Less than half of the recommendations are realized; coach advisors on explaining the benefit to customers.")
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricRealizationRate: overall.Rate(),
		},
	}, nil
}
