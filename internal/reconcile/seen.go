package reconcile

import (
	"sort"

	"github.com/ppiankov/fibs/internal/store"
	"go.uber.org/zap"
)

// Seen maps user -> claim -> partner claims shown together with it
type Seen map[string]map[string][]string

// BuildSeen registers every pair of every status record in both directions
func BuildSeen(statuses []store.StatusRecord, logger *zap.Logger) (Seen, []Issue) {
	found := &issues{logger: nopIfNil(logger)}
	seen := make(Seen)
	total := 0

	for _, status := range statuses {
		for _, key := range status.Rejected {
			found.add(Issue{Kind: IssueMalformedPair, User: status.User, Detail: key})
		}
		for _, pair := range status.Pairs {
			seen.add(status.User, pair[0], pair[1])
			seen.add(status.User, pair[1], pair[0])
			total++
		}
	}

	found.logger.Info("Loaded comparisons", zap.Int("pairs", total), zap.Int("users", len(seen)))
	return seen, found.list
}

func (s Seen) add(user, claim, partner string) {
	if s[user] == nil {
		s[user] = make(map[string][]string)
	}
	for _, p := range s[user][claim] {
		if p == partner {
			return
		}
	}
	s[user][claim] = append(s[user][claim], partner)
}

// Users returns users in ascending order
func (s Seen) Users() []string {
	users := make([]string, 0, len(s))
	for user := range s {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Pairs returns each unordered pair the user saw once, as (claim, partner)
// with claims visited in ascending order.
func (s Seen) Pairs(user string) [][2]string {
	byClaim := s[user]
	claims := make([]string, 0, len(byClaim))
	for claim := range byClaim {
		claims = append(claims, claim)
	}
	sort.Strings(claims)

	done := make(map[[2]string]bool)
	var pairs [][2]string
	for _, claim := range claims {
		partners := append([]string(nil), byClaim[claim]...)
		sort.Strings(partners)
		for _, partner := range partners {
			key := [2]string{min(claim, partner), max(claim, partner)}
			if done[key] {
				continue
			}
			done[key] = true
			pairs = append(pairs, [2]string{claim, partner})
		}
	}
	return pairs
}
