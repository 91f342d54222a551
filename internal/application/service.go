package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
	"golang.org/x/sync/errgroup"
)

const (
	problemsPath    = "/USER/problems"
	leaderboardPath = "/USER/leaderboard"
	usersPath       = "/ADMIN/users"
	metricsPath     = "/ADMIN/metrics"

	defaultFetchConcurrency = 4
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
)

var ErrEmptyProblemID = errors.New("problem id is empty")

// Service answers the CLI's read and admin commands. Every call goes through
// the executor so expired credentials are refreshed transparently.
type Service struct {
	api         ports.Executor
	concurrency int
}

func NewService(api ports.Executor) *Service {
	return &Service{api: api, concurrency: defaultFetchConcurrency}
}

func (s *Service) ListProblems(ctx context.Context, filter domain.ProblemFilter) (domain.ProblemPage, error) {
	filter.Normalize()

	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.Limit))
	if filter.Difficulty != "" {
		query.Set("difficulty", string(filter.Difficulty))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var payload problemsResponse
	if err := call(ctx, s.api, http.MethodGet, problemsPath, query, nil, &payload); err != nil {
		return domain.ProblemPage{}, fmt.Errorf("list problems: %w", err)
	}

	page := domain.ProblemPage{Total: payload.Total, Page: filter.Page, Limit: filter.Limit}
	for _, problem := range payload.Problems {
		page.Problems = append(page.Problems, problem.toDomain())
	}

	return page, nil
}

func (s *Service) GetProblem(ctx context.Context, id domain.ProblemID) (domain.Problem, error) {
	trimmed := strings.TrimSpace(string(id))
	if trimmed == "" {
		return domain.Problem{}, ErrEmptyProblemID
	}

	var payload problemDTO
	path := problemsPath + "/" + url.PathEscape(trimmed)
	if err := call(ctx, s.api, http.MethodGet, path, nil, nil, &payload); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Problem{}, fmt.Errorf("get problem %q: %w: %w", trimmed, domain.ErrProblemNotFound, err)
		}
		return domain.Problem{}, fmt.Errorf("get problem %q: %w", trimmed, err)
	}
	if payload.ID == "" {
		payload.ID = trimmed
	}

	return payload.toDomain(), nil
}

// GetProblems fetches problems concurrently and returns them in ids order. The
// first failure cancels the rest.
func (s *Service) GetProblems(ctx context.Context, ids []domain.ProblemID) ([]domain.Problem, error) {
	problems := make([]domain.Problem, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i, id := range ids {
		group.Go(func() error {
			problem, err := s.GetProblem(groupCtx, id)
			if err != nil {
				return err
			}
			problems[i] = problem
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return problems, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	var payload leaderboardResponse
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := call(ctx, s.api, http.MethodGet, leaderboardPath, query, nil, &payload); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("get leaderboard: %w", err)
	}

	board := domain.Leaderboard{Entries: make([]domain.LeaderboardEntry, 0, len(payload.Entries))}
	for _, entry := range payload.Entries {
		board.Entries = append(board.Entries, domain.LeaderboardEntry{
			Rank:   entry.Rank,
			UserID: domain.UserID(entry.UserID),
			Name:   entry.Name,
			Score:  entry.Score,
			Solved: entry.Solved,
		})
	}
	board.SortByRank()

	return board, nil
}

func (s *Service) ListUsers(ctx context.Context, page, limit int) (domain.UserPage, error) {
	filter := domain.ProblemFilter{Page: page, Limit: limit}
	filter.Normalize()

	query := url.Values{}
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("limit", strconv.Itoa(filter.Limit))

	var payload usersResponse
	if err := call(ctx, s.api, http.MethodGet, usersPath, query, nil, &payload); err != nil {
		return domain.UserPage{}, fmt.Errorf("list users: %w", err)
	}

	users := domain.UserPage{Total: payload.Total, Page: filter.Page, Limit: filter.Limit}
	for _, user := range payload.Users {
		users.Users = append(users.Users, user.toDomain())
	}

	return users, nil
}

func (s *Service) SetUserBlocked(ctx context.Context, cmd SetUserBlockedCommand) error {
	id := strings.TrimSpace(string(cmd.ID))
	if id == "" {
		return errors.New("user id is empty")
	}

	path := usersPath + "/" + url.PathEscape(id) + "/block"
	if err := call(ctx, s.api, http.MethodPatch, path, nil, blockRequest{Blocked: cmd.Blocked}, nil); err != nil {
		action := "block"
		if !cmd.Blocked {
			action = "unblock"
		}
		return fmt.Errorf("%s user %q: %w", action, id, err)
	}

	return nil
}

func (s *Service) DashboardMetrics(ctx context.Context) (domain.DashboardMetrics, error) {
	var payload metricsResponse
	if err := call(ctx, s.api, http.MethodGet, metricsPath, nil, nil, &payload); err != nil {
		return domain.DashboardMetrics{}, fmt.Errorf("get dashboard metrics: %w", err)
	}

	return domain.DashboardMetrics{
		TotalUsers:       payload.TotalUsers,
		ActiveUsers:      payload.ActiveUsers,
		TotalProblems:    payload.TotalProblems,
		SubmissionsToday: payload.SubmissionsToday,
	}, nil
}

// Dashboard loads metrics and the first page of users at the same time.
func (s *Service) Dashboard(ctx context.Context, usersLimit int) (Dashboard, error) {
	var dashboard Dashboard

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		metrics, err := s.DashboardMetrics(groupCtx)
		if err != nil {
			return err
		}
		dashboard.Metrics = metrics
		return nil
	})
	group.Go(func() error {
		users, err := s.ListUsers(groupCtx, 1, usersLimit)
		if err != nil {
			return err
		}
		dashboard.Users = users
		return nil
	})
	if err := group.Wait(); err != nil {
		return Dashboard{}, err
	}

	return dashboard, nil
}
