package application

import (
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role string  `json:"role"`
	User userDTO `json:"user"`
}

type userDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsBlocked  bool   `json:"isBlocked"`
	IsVerified bool   `json:"isVerified"`
	CreatedAt  string `json:"createdAt"`
}

func (u userDTO) toDomain() domain.User {
	user := domain.User{
		ID:       domain.UserID(u.ID),
		Email:    u.Email,
		Name:     u.Name,
		Role:     domain.Role(u.Role),
		Blocked:  u.IsBlocked,
		Verified: u.IsVerified,
	}
	if created, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
		user.CreatedAt = created
	}
	return user
}

type usersResponse struct {
	Users []userDTO `json:"users"`
	Total int       `json:"total"`
}

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

type problemExampleDTO struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation"`
}

type problemDTO struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Difficulty     string              `json:"difficulty"`
	Tags           []string            `json:"tags"`
	AcceptanceRate float64             `json:"acceptanceRate"`
	Solved         bool                `json:"solved"`
	Description    string              `json:"description"`
	Examples       []problemExampleDTO `json:"examples"`
	Constraints    []string            `json:"constraints"`
}

func (p problemDTO) toDomain() domain.Problem {
	difficulty, err := domain.ParseDifficulty(p.Difficulty)
	if err != nil {
		difficulty = domain.Difficulty(p.Difficulty)
	}

	problem := domain.Problem{
		ID:          domain.ProblemID(p.ID),
		Title:       p.Title,
		Difficulty:  difficulty,
		Tags:        p.Tags,
		AcceptRate:  p.AcceptanceRate,
		Solved:      p.Solved,
		Description: p.Description,
		Constraints: p.Constraints,
	}
	for _, example := range p.Examples {
		problem.Examples = append(problem.Examples, domain.ProblemExample{
			Input:       example.Input,
			Output:      example.Output,
			Explanation: example.Explanation,
		})
	}
	return problem
}

type problemsResponse struct {
	Problems []problemDTO `json:"problems"`
	Total    int          `json:"total"`
}

type leaderboardEntryDTO struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int64  `json:"score"`
	Solved int    `json:"solved"`
}

type leaderboardResponse struct {
	Entries []leaderboardEntryDTO `json:"entries"`
}

type metricsResponse struct {
	TotalUsers       int64 `json:"totalUsers"`
	ActiveUsers      int64 `json:"activeUsers"`
	TotalProblems    int64 `json:"totalProblems"`
	SubmissionsToday int64 `json:"submissionsToday"`
}
