package report

import (
	"context"

	"jarvis-ai-be/pkg/assistant/period"
)

// LateThreshold is the lateness share (percent) above which a department or
// employee is flagged.
const LateThreshold = 10.0

type Attendance struct {
	src HRSource
}

func NewAttendance(src HRSource) *Attendance { return &Attendance{src: src} }

func (g *Attendance) Name() string { return NameAttendance }

func (g *Attendance) Generate(ctx context.Context, req Request) (*Section, error) {
	p := req.Period
	title := headerID("Data Kehadiran", p)

	depts, err := g.src.AttendanceByDepartment(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}

	var total, late, employees int
	for _, d := range depts {
		total += d.Attendances
		late += d.Late
		employees += d.Employees
	}
	if total == 0 {
		return NoData(title, "attendance", p), nil
	}

	people, err := g.src.LateEmployees(ctx, req.CompanyID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	active, err := g.src.CountActiveEmployees(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	workingDays := period.WorkingDays(p.From, p.To)
	rate := pct(float64(total), float64(active*workingDays))
	latePct := pct(float64(late), float64(total))

	var l lines
	l.add("- Total Kehadiran: %d", total)
	l.add("- Jumlah Karyawan: %d (aktif %d)", employees, active)
	l.add("- Hari Kerja: %d", workingDays)
	l.add("- Tingkat Kehadiran: %.2f%%", rate)
	l.add("- Keterlambatan: %d (%.2f%%)", late, latePct)
	l.blank()

	l.add("Kehadiran per Departemen:")
	var flaggedDepts []string
	for _, d := range depts {
		dp := pct(float64(d.Late), float64(d.Attendances))
		l.add("- %s: %d kehadiran, %d terlambat (%.2f%%)", deptName(d.Department), d.Attendances, d.Late, dp)
		if dp > LateThreshold {
			flaggedDepts = append(flaggedDepts, deptName(d.Department))
		}
	}

	var flaggedPeople []EmployeeLateness
	top := 0
	for _, e := range people {
		if e.Late == 0 {
			continue
		}
		if top == 0 {
			l.blank()
			l.add("Karyawan dengan Keterlambatan Tertinggi:")
		}
		if top < 5 {
			l.add("- %s (%s): %d kali terlambat", e.Name, deptName(e.Department), e.Late)
			top++
		}
		if pct(float64(e.Late), float64(e.Attendances)) > LateThreshold {
			flaggedPeople = append(flaggedPeople, e)
		}
	}

	if len(flaggedDepts) > 0 || len(flaggedPeople) > 0 {
		l.blank()
		l.add("Melebihi Batas Keterlambatan %.0f%%:", LateThreshold)
		for _, d := range flaggedDepts {
			l.add("- Departemen %s", d)
		}
		for _, e := range flaggedPeople {
			l.add("- %s: %.2f%% dari %d kehadiran", e.Name, pct(float64(e.Late), float64(e.Attendances)), e.Attendances)
		}
	}

	l.blank()
	l.add("Saran Perbaikan:")
	if latePct > LateThreshold {
		l.add("- Tingkat keterlambatan lebih dari %.0f%%, perlu evaluasi ketepatan waktu karyawan", LateThreshold)
		l.add("- Lakukan pembinaan pada departemen dan karyawan yang melebihi batas")
	} else {
		l.add("- Tingkat keterlambatan masih dalam batas wajar, pertahankan kedisiplinan")
	}
	if active > 0 && rate < 90 {
		l.add("- Tingkat kehadiran di bawah 90%%, tinjau jadwal dan ketidakhadiran karyawan")
	}

	return &Section{
		Title: title,
		Body:  l.String(),
		Metrics: map[string]float64{
			MetricAttendanceRate:  rate,
			MetricActiveEmployees: float64(active),
			MetricLatePct:         latePct,
			"attendances":         float64(total),
		},
	}, nil
}

func deptName(name string) string {
	if name == "" {
		return "Tidak Ada Departemen"
	}
	return name
}
