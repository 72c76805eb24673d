package report

import "context"

type Workflow struct {
	src ServiceSource
}

func NewWorkflow(src ServiceSource) *Workflow { return &Workflow{src: src} }

func (g *Workflow) Name() string { return NameWorkflow }

type stageWait struct {
	stage string
	hours float64
}

// Bottleneck returns the stage with the largest average wait.
func Bottleneck(s LeadTimeStats) (string, float64) {
	stages := []stageWait{
		{"Tunggu Konfirmasi", s.AvgWaitConfirmation},
		{"Tunggu Part 1", s.AvgWaitPart1},
		{"Tunggu Part 2", s.AvgWaitPart2},
		{"Tunggu Sublet", s.AvgWaitSublet},
	}
	best := stages[0]
	for _, st := range stages[1:] {
		if st.hours > best.hours {
			best = st
		}
	}
	return best.stage, best.hours
}

func (g *Workflow) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Workflow Efficiency", p)

	s, err := g.src.LeadTimeStats(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if s.Orders == 0 {
		return NoData(title, "workflow", p), nil
	}

	stage, wait := Bottleneck(s)

	var l lines
	l.add("- Orders Completed: %d", s.Orders)
	l.add("- Average Lead Time: %.2f hours", s.AvgLeadTime)
	l.add("- On-Time Rate: %.2f%%", s.OnTimeRate)
	l.add("- Average Service Time Efficiency: %.2f%%", s.AvgEfficiency)
	l.blank()
	l.add("Average Waiting per Stage:")
	l.add("- Tunggu Konfirmasi: %.2f hours", s.AvgWaitConfirmation)
	l.add("- Tunggu Part 1: %.2f hours", s.AvgWaitPart1)
	l.add("- Tunggu Part 2: %.2f hours", s.AvgWaitPart2)
	l.add("- Tunggu Sublet: %.2f hours", s.AvgWaitSublet)
	l.blank()
	if wait > 0 {
		l.add("Bottleneck: %s (%.2f hours on average)", stage, wait)
	} else {
		l.add("Bottleneck: none, no waiting time recorded")
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricOnTimeRate:     s.OnTimeRate,
			MetricAvgEfficiency:  s.AvgEfficiency,
			MetricBottleneckWait: wait,
		},
	}, nil
}
