package payroll

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads attendance summaries for a reporting window.
type Repository interface {
	AttendanceSummary(ctx context.Context, from, to time.Time) (AttendanceSummary, error)
}

// PGRepository is the PostgreSQL backed Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// AttendanceSummary tallies attendance marks per employee inside the window.
// Employees with no marks still appear with zero counts so the console shows
// the full roster.
func (r *PGRepository) AttendanceSummary(ctx context.Context, from, to time.Time) (AttendanceSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.role,
			COUNT(*) FILTER (WHERE a.status = 'present') AS present,
			COUNT(*) FILTER (WHERE a.status = 'late') AS late,
			COUNT(*) FILTER (WHERE a.status = 'absent') AS absent,
			COUNT(*) FILTER (WHERE a.status = 'leave') AS leave
		FROM users u
		LEFT JOIN attendance a
			ON a.user_id = u.id AND a.marked_on BETWEEN $1 AND $2
		WHERE u.is_employee
		GROUP BY u.id, u.name, u.email, u.role
		ORDER BY u.name`, from, to)
	if err != nil {
		return AttendanceSummary{}, err
	}
	defer rows.Close()

	summary := AttendanceSummary{From: from, To: to}
	for rows.Next() {
		var emp Employee
		if err := rows.Scan(&emp.UserID, &emp.Name, &emp.Email, &emp.Role,
			&emp.Counts.Present, &emp.Counts.Late, &emp.Counts.Absent, &emp.Counts.Leave); err != nil {
			return AttendanceSummary{}, err
		}
		summary.Users = append(summary.Users, emp)
	}
	return summary, rows.Err()
}
