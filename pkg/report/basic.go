package report

import (
	"context"
	"strings"
)

// Basic is the fallback context when no category matched.
type Basic struct {
	src CompanySource
}

func NewBasic(src CompanySource) *Basic { return &Basic{src: src} }

func (g *Basic) Name() string { return NameBasic }

func (g *Basic) Generate(ctx context.Context, req Request) (*Section, error) {
	company, err := g.src.Company(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company = &Company{}
	}
	users, err := g.src.CountUsers(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	customers, err := g.src.CountCustomers(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	var l lines
	l.add("- Name: %s", notSet(company.Name))
	l.add("- Website: %s", notSet(company.Website))
	l.add("- Email: %s", notSet(company.Email))
	l.add("- Phone: %s", notSet(company.Phone))
	l.add("- Address: %s", notSet(strings.TrimSpace(company.Street+" "+company.City)))
	l.add("- Total users: %d", users)
	l.add("- Total customers: %d", customers)

	return &Section{
		Title: "Basic Company Information:",
		Body:  l.String(),
		Metrics: map[string]float64{
			"users":     float64(users),
			"customers": float64(customers),
		},
	}, nil
}

func notSet(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not set"
	}
	return v
}
