package domain

import (
	"fmt"
	"sort"
)

// TrackedIdentity identifies one monitored (group, player, game) pairing.
type TrackedIdentity struct {
	GroupID string
	SteamID string
	AppID   uint32
}

// Key returns the string encoding used in durable storage.
func (t TrackedIdentity) Key() string {
	return fmt.Sprintf("%s:%s:%d", t.GroupID, t.SteamID, t.AppID)
}

func (t TrackedIdentity) String() string {
	return t.Key()
}

// UnlockedSet is the set of achievement api names unlocked by a
// TrackedIdentity as of the last successful poll.
type UnlockedSet map[string]struct{}

func NewUnlockedSet(apiNames ...string) UnlockedSet {
	set := make(UnlockedSet, len(apiNames))
	for _, name := range apiNames {
		set[name] = struct{}{}
	}
	return set
}

func (s UnlockedSet) Contains(apiName string) bool {
	_, ok := s[apiName]
	return ok
}

// Subtract returns the elements of s that are not in other.
func (s UnlockedSet) Subtract(other UnlockedSet) UnlockedSet {
	diff := NewUnlockedSet()
	for apiName := range s {
		if !other.Contains(apiName) {
			diff[apiName] = struct{}{}
		}
	}
	return diff
}

// Sorted returns the api names in lexicographic order, for stable
// serialization and stable responses.
func (s UnlockedSet) Sorted() []string {
	apiNames := make([]string, 0, len(s))
	for apiName := range s {
		apiNames = append(apiNames, apiName)
	}
	sort.Strings(apiNames)
	return apiNames
}

// PlayerAchievement is one entry of a player's achievement list for a
// single game, in the language the list was requested in.
type PlayerAchievement struct {
	APIName     string
	Achieved    bool
	Name        string
	Description string
}

// AchievementDetail is the per (game, achievement) metadata record.
// Icon urls and the global unlock percent are nil when the source
// endpoint could not provide them.
type AchievementDetail struct {
	Name          string
	Description   string
	IconURL       *string
	GrayIconURL   *string
	GlobalPercent *float64
}
