package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/codex-platform/codex-cli/internal/application"
	"github.com/codex-platform/codex-cli/internal/domain"
)

const barWidth = 24

// Problems renders one page of the problem list.
func Problems(page domain.ProblemPage) (string, error) {
	return render(func(s styles) string {
		return problemsView(page, s)
	})
}

// Problem renders a single problem with its statement.
func Problem(problem domain.Problem) (string, error) {
	return render(func(s styles) string {
		return problemView(problem, s)
	})
}

func Leaderboard(board domain.Leaderboard) (string, error) {
	return render(func(s styles) string {
		return leaderboardView(board, s)
	})
}

func Users(page domain.UserPage) (string, error) {
	return render(func(s styles) string {
		return usersView(page, s)
	})
}

func Dashboard(dashboard application.Dashboard) (string, error) {
	return render(func(s styles) string {
		return dashboardView(dashboard, s)
	})
}

// Identity renders the local session. now decides whether the access token is
// shown as expired; a zero now skips the relative expiry.
func Identity(identity application.Identity, now time.Time) (string, error) {
	return render(func(s styles) string {
		return identityView(identity, now, s)
	})
}

func problemsView(page domain.ProblemPage, s styles) string {
	lines := []string{
		s.title.Render("Problems"),
		s.label.Render(pageSummary(page.Page, page.Limit, page.Total, len(page.Problems))),
	}
	if len(page.Problems) == 0 {
		lines = append(lines, s.empty.Render("No problems match."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([][]string, 0, len(page.Problems))
	for _, p := range page.Problems {
		rows = append(rows, []string{
			string(p.ID),
			p.Title,
			difficultyStyle(p.Difficulty, s).Render(p.Difficulty.Label()),
			fmt.Sprintf("%.1f%%", clampPercent(p.AcceptRate)),
			solvedMark(p.Solved, s),
		})
	}

	lines = append(lines, s.section.Render(grid(s, []string{"ID", "TITLE", "DIFFICULTY", "ACCEPT", "SOLVED"}, rows)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func problemView(p domain.Problem, s styles) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.title.Render(fmt.Sprintf("%s  %s", p.ID, p.Title)),
		"  ",
		difficultyStyle(p.Difficulty, s).Render(p.Difficulty.Label()),
	)

	meta := fmt.Sprintf("accepted: %.1f%%", clampPercent(p.AcceptRate))
	if len(p.Tags) > 0 {
		meta += "  tags: " + strings.Join(p.Tags, ", ")
	}
	if p.Solved {
		meta += "  " + s.solved.Render("solved")
	}

	lines := []string{header, s.label.Render(meta)}
	if description := strings.TrimSpace(p.Description); description != "" {
		lines = append(lines, s.section.Render(s.detail.Render(description)))
	}

	for i, example := range p.Examples {
		block := []string{
			s.title.Render(fmt.Sprintf("Example %d", i+1)),
			s.label.Render("input:  ") + s.detail.Render(example.Input),
			s.label.Render("output: ") + s.detail.Render(example.Output),
		}
		if example.Explanation != "" {
			block = append(block, s.label.Render("why:    ")+s.detail.Render(example.Explanation))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
	}

	if len(p.Constraints) > 0 {
		block := []string{s.title.Render("Constraints")}
		for _, c := range p.Constraints {
			block = append(block, s.detail.Render("- "+c))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, block...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func leaderboardView(board domain.Leaderboard, s styles) string {
	lines := []string{
		s.title.Render("Leaderboard"),
		s.label.Render(fmt.Sprintf("entries: %d", len(board.Entries))),
	}
	if len(board.Entries) == 0 {
		lines = append(lines, s.empty.Render("Nobody has scored yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([][]string, 0, len(board.Entries))
	for _, e := range board.Entries {
		rank := "-"
		if e.Rank > 0 {
			rank = strconv.Itoa(e.Rank)
		}
		rows = append(rows, []string{rank, e.Name, strconv.FormatInt(e.Score, 10), strconv.Itoa(e.Solved)})
	}

	lines = append(lines, s.section.Render(grid(s, []string{"RANK", "NAME", "SCORE", "SOLVED"}, rows)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func usersView(page domain.UserPage, s styles) string {
	lines := []string{
		s.title.Render("Users"),
		s.label.Render(pageSummary(page.Page, page.Limit, page.Total, len(page.Users))),
	}
	if len(page.Users) == 0 {
		lines = append(lines, s.empty.Render("No users."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(usersGrid(page.Users, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func usersGrid(users []domain.User, s styles) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		status := "active"
		if u.Blocked {
			status = s.warning.Render("blocked")
		}
		created := "-"
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{string(u.ID), u.Email, u.Name, string(u.Role), status, created})
	}

	return grid(s, []string{"ID", "EMAIL", "NAME", "ROLE", "STATUS", "CREATED"}, rows)
}

func dashboardView(d application.Dashboard, s styles) string {
	m := d.Metrics
	share := m.ActiveShare()

	lines := []string{
		s.title.Render("Dashboard"),
		s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			metricLine("users", strconv.FormatInt(m.TotalUsers, 10), s),
			lipgloss.JoinHorizontal(lipgloss.Top,
				metricLine("active", strconv.FormatInt(m.ActiveUsers, 10), s),
				" ",
				renderProgressBar(share, barWidth, s),
				" ",
				lipgloss.NewStyle().Foreground(interpolateColor(share, 0, 100)).Render(fmt.Sprintf("%2.0f%%", share)),
			),
			metricLine("problems", strconv.FormatInt(m.TotalProblems, 10), s),
			metricLine("submissions today", strconv.FormatInt(m.SubmissionsToday, 10), s),
		)),
	}

	if len(d.Users.Users) > 0 {
		lines = append(lines,
			s.section.Render(s.title.Render("Recent users")),
			usersGrid(d.Users.Users, s),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func identityView(id application.Identity, now time.Time, s styles) string {
	session := id.Session
	if !session.Active() {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.title.Render("Not signed in"),
			s.empty.Render("Run `codex login` to start a session."),
		)
	}

	who := session.Email
	if session.Name != "" {
		who = fmt.Sprintf("%s <%s>", session.Name, session.Email)
	}

	lines := []string{
		s.title.Render(who),
		metricLine("role", string(session.Role), s),
	}
	if session.UserID != "" {
		lines = append(lines, metricLine("user id", string(session.UserID), s))
	}

	switch {
	case id.AccessTokenExpiresAt.IsZero():
		lines = append(lines, metricLine("access token", "unknown expiry", s))
	case id.AccessTokenExpired:
		lines = append(lines, s.label.Render("access token: ")+s.warning.Render("expired, refreshed on next request"))
	default:
		lines = append(lines, metricLine("access token", formatExpiry(id.AccessTokenExpiresAt, now), s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func grid(s styles, headers []string, rows [][]string) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		BorderStyle(s.empty).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return s.header
			}
			return s.cell
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

func metricLine(label, value string, s styles) string {
	return s.label.Render(label+": ") + s.detail.Render(value)
}

func pageSummary(page, limit, total, shown int) string {
	if page <= 0 {
		return fmt.Sprintf("showing %d of %d", shown, total)
	}
	pages := 1
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	return fmt.Sprintf("page %d/%d, showing %d of %d", page, pages, shown, total)
}

func difficultyStyle(d domain.Difficulty, s styles) lipgloss.Style {
	switch d {
	case domain.DifficultyEasy:
		return s.easy
	case domain.DifficultyMedium:
		return s.medium
	case domain.DifficultyHard:
		return s.hard
	default:
		return s.detail
	}
}

func solvedMark(solved bool, s styles) string {
	if solved {
		return s.solved.Render("yes")
	}
	return s.empty.Render("-")
}

func formatExpiry(expiresAt, now time.Time) string {
	stamp := expiresAt.Format("15:04 on 02 Jan")
	if now.IsZero() {
		return "expires " + stamp
	}

	remaining := expiresAt.Sub(now)
	if remaining < time.Minute {
		return fmt.Sprintf("expires in under a minute (%s)", stamp)
	}
	if remaining < time.Hour {
		return fmt.Sprintf("expires in %d min (%s)", int(remaining/time.Minute), stamp)
	}
	return fmt.Sprintf("expires in %.1f hours (%s)", remaining.Hours(), stamp)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(clampPercent(percent) / 100 * float64(width)))
	return s.barBracket.Render("[") +
		s.barFill.Render(strings.Repeat("=", filled)) +
		s.barEmpty.Render(strings.Repeat("-", width-filled)) +
		s.barBracket.Render("]")
}

func clampPercent(percent float64) float64 {
	if math.IsNaN(percent) || percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(strconv.Itoa(int(240 + 15*normalized)))
}
