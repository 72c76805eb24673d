package erp

import (
	"context"
	"time"

	"jarvis-ai-be/pkg/report"
)

func (s *Source) AttendanceByDepartment(ctx context.Context, companyID int64, from, to time.Time) ([]report.DepartmentAttendance, error) {
	start, end := bounds(from, to)
	var rows []report.DepartmentAttendance
	err := s.raw(ctx, `
		SELECT COALESCE(d.name, '') AS department,
		       COUNT(DISTINCT e.id) AS employees,
		       COUNT(a.employee_id) AS attendances,
		       COUNT(*) FILTER (WHERE a.is_late) AS late
		FROM hr_attendance a
		JOIN hr_employee e ON e.id = a.employee_id
		LEFT JOIN hr_department d ON d.id = e.department_id
		WHERE e.company_id = ? AND a.check_in >= ? AND a.check_in < ?
		GROUP BY d.name
		ORDER BY department
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) LateEmployees(ctx context.Context, companyID int64, from, to time.Time) ([]report.EmployeeLateness, error) {
	start, end := bounds(from, to)
	var rows []report.EmployeeLateness
	err := s.raw(ctx, `
		SELECT e.name,
		       COALESCE(d.name, '') AS department,
		       COUNT(a.employee_id) AS attendances,
		       COUNT(*) FILTER (WHERE a.is_late) AS late
		FROM hr_attendance a
		JOIN hr_employee e ON e.id = a.employee_id
		LEFT JOIN hr_department d ON d.id = e.department_id
		WHERE e.company_id = ? AND a.check_in >= ? AND a.check_in < ?
		GROUP BY e.id, e.name, d.name
		ORDER BY late DESC, e.name
	`, companyID, start, end).Scan(&rows).Error
	return rows, err
}

func (s *Source) CountActiveEmployees(ctx context.Context, companyID int64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM hr_employee WHERE company_id = ? AND active`, companyID)
}
