package report

import (
	"context"
	"strings"
)

// Booking states counted as converted or cancelled.
var (
	bookingConverted = map[string]bool{"converted": true, "done": true}
	bookingCancelled = map[string]bool{"cancelled": true, "cancel": true}
)

type Booking struct {
	src BookingSource
}

func NewBooking(src BookingSource) *Booking { return &Booking{src: src} }

func (g *Booking) Name() string { return NameBooking }

func (g *Booking) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := header("Service Bookings", p)

	states, err := g.src.BookingsByState(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	var total, converted, cancelled int
	for _, s := range states {
		total += s.Count
		state := strings.ToLower(s.Key)
		if bookingConverted[state] {
			converted += s.Count
		}
		if bookingCancelled[state] {
			cancelled += s.Count
		}
	}
	if total == 0 {
		return NoData(title, "booking", p), nil
	}
	cats, err := g.src.BookingsByCategory(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}

	conversion := pct(float64(converted), float64(total))
	cancellation := pct(float64(cancelled), float64(total))

	var l lines
	l.add("- Total Bookings: %d", total)
	l.add("- Conversion Rate: %.2f%%", conversion)
	l.add("- Cancellation Rate: %.2f%%", cancellation)
	l.blank()
	l.add("Bookings by Status:")
	for _, s := range states {
		l.add("- %s: %d", orUnknown(s.Key), s.Count)
	}
	if len(cats) > 0 {
		l.blank()
		l.add("Bookings by Service Category:")
		for _, c := range cats {
			l.add("- %s: %d", orUnknown(c.Key), c.Count)
		}
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			"bookings":           float64(total),
			MetricConversionRate: conversion,
			"cancellation_rate":  cancellation,
		},
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
