package entity

// Pitcher role tags derived from games and games started.
const (
	RoleTwoStart = "2SP"
	RoleOneStart = "1SP"
	RoleStarter  = "SP"
	RoleReliever = "RP"
)

// MatchesRole reports whether a pitching line fits the role. Lines with no
// appearances match nothing.
func MatchesRole(role string, games, gamesStarted int) bool {
	if games <= 0 {
		return false
	}
	switch role {
	case RoleTwoStart:
		return gamesStarted >= 2
	case RoleOneStart:
		return gamesStarted == 1
	case RoleStarter:
		return gamesStarted > 0
	case RoleReliever:
		return gamesStarted == 0
	}
	return false
}

// PitcherRole returns the most specific role for a line: 2SP, 1SP or RP.
// It returns "" for a line with no appearances.
func PitcherRole(games, gamesStarted int) string {
	for _, role := range []string{RoleTwoStart, RoleOneStart, RoleReliever} {
		if MatchesRole(role, games, gamesStarted) {
			return role
		}
	}
	return ""
}
