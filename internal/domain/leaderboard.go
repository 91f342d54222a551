package domain

import "sort"

type LeaderboardEntry struct {
	Rank   int
	UserID UserID
	Name   string
	Score  int64
	Solved int
}

type Leaderboard struct {
	Entries []LeaderboardEntry
}

// SortByRank orders entries by rank, breaking ties by score then name. Entries
// the backend returned without a rank are placed after ranked ones.
func (l *Leaderboard) SortByRank() {
	if l == nil {
		return
	}

	sort.SliceStable(l.Entries, func(i, j int) bool {
		a, b := l.Entries[i], l.Entries[j]
		if (a.Rank > 0) != (b.Rank > 0) {
			return a.Rank > 0
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Name < b.Name
	})
}
