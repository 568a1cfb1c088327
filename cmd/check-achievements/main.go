package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

func makeRequest(httpClient *http.Client, requestURL string) ([]byte, int, error) {
	req, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("Constructing request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("Making request: %w", err)
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("ReadAll: %w", err)
	}

	return data, resp.StatusCode, nil
}

func main() {
	steamAPIKey := os.Getenv("STEAM_API_KEY")

	if steamAPIKey == "" {
		log.Fatal("No Steam API key provided")
	}

	if len(os.Args) < 3 {
		log.Fatal("Usage: check-achievements <steamid> <appid> [language]")
	}

	steamID := os.Args[1]
	appID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("Invalid app id: %v", err)
	}

	language := "english"
	if len(os.Args) > 3 {
		language = os.Args[3]
	}

	httpClient := &http.Client{}

	query := url.Values{}
	query.Set("key", steamAPIKey)
	query.Set("steamid", steamID)
	query.Set("appid", strconv.FormatUint(appID, 10))
	query.Set("l", language)

	requestURL := fmt.Sprintf("https://api.steampowered.com/ISteamUserStats/GetPlayerAchievements/v1/?%s", query.Encode())
	data, statusCode, err := makeRequest(httpClient, requestURL)
	if err != nil {
		log.Fatalf("Failed making request to Steam API: %v", err)
	}

	if statusCode != 200 {
		log.Printf("Steam API returned non-200 status code: %d - %s\n", statusCode, string(data))
	}

	fmt.Println(string(data))
	fmt.Println(statusCode)
}
