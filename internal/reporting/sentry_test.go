package reporting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	t.Run("steam id in url", func(t *testing.T) {
		t.Parallel()

		err := `temporarily unavailable: Get "https://api.steampowered.com/ISteamUserStats/GetPlayerAchievements/v1/?appid=440&steamid=76561198012345678": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`
		want := `temporarily unavailable: Get "https://api.steampowered.com/ISteamUserStats/GetPlayerAchievements/v1/?appid=440&steamid=<steamid>": context deadline exceeded (Client.Timeout exceeded while awaiting headers)`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("api key in url", func(t *testing.T) {
		t.Parallel()

		err := `temporarily unavailable: Get "https://api.steampowered.com/ISteamUserStats/GetSchemaForGame/v2/?appid=440&key=0123456789ABCDEF0123456789ABCDEF": read: connection reset by peer`
		want := `temporarily unavailable: Get "https://api.steampowered.com/ISteamUserStats/GetSchemaForGame/v2/?appid=440&key=<apikey>": read: connection reset by peer`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("both", func(t *testing.T) {
		t.Parallel()

		err := `failed to send request: key=00000000000000000000000000000000 steamid=76561198000000001`
		want := `failed to send request: key=<apikey> steamid=<steamid>`
		require.Equal(t, want, sanitizeError(err))
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		err := `failed to parse schema response: unexpected end of JSON input`
		require.Equal(t, err, sanitizeError(err))
	})
}
