package queries

import (
	"github.com/mcoot/battleship-client/internal/cache"
	"github.com/mcoot/battleship-client/internal/model"
)

// MatchesKey holds the match list
var MatchesKey = cache.NewKey[[]model.MatchListItem](cache.KindMatches, "")

// ProfileKey holds the authenticated user's profile
var ProfileKey = cache.NewKey[*model.User](cache.KindProfile, "")

// MatchKey holds the snapshot of a single match
func MatchKey(id model.MatchID) cache.Key[*model.Match] {
	return cache.NewKey[*model.Match](cache.KindMatch, string(id))
}
