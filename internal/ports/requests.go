package ports

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Eknes/laurel/internal/domain"
)

const maxGroupIDLength = 100

func parseAppID(r *http.Request) (uint32, error) {
	rawAppID := r.URL.Query().Get("appid")
	appID, err := strconv.ParseUint(rawAppID, 10, 32)
	if err != nil || appID == 0 {
		return 0, fmt.Errorf("invalid appid %q", rawAppID)
	}
	return uint32(appID), nil
}

func parseGroupID(r *http.Request) (string, error) {
	groupID := r.URL.Query().Get("group")
	if groupID == "" || len(groupID) > maxGroupIDLength {
		return "", fmt.Errorf("invalid group id length")
	}
	return groupID, nil
}

func parseSteamID(r *http.Request) (string, error) {
	steamID := r.URL.Query().Get("steamid")
	if len(steamID) != 17 {
		return "", fmt.Errorf("invalid steamid %q", steamID)
	}
	for _, c := range steamID {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("invalid steamid %q", steamID)
		}
	}
	return steamID, nil
}

func parseIdentity(r *http.Request) (domain.TrackedIdentity, error) {
	groupID, err := parseGroupID(r)
	if err != nil {
		return domain.TrackedIdentity{}, err
	}
	steamID, err := parseSteamID(r)
	if err != nil {
		return domain.TrackedIdentity{}, err
	}
	appID, err := parseAppID(r)
	if err != nil {
		return domain.TrackedIdentity{}, err
	}
	return domain.TrackedIdentity{GroupID: groupID, SteamID: steamID, AppID: appID}, nil
}
