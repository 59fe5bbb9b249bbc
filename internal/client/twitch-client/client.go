package twitch_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"twitch_live_notifier/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const twitchApiSchemeHost string = "https://api.twitch.tv"

// batchCeiling is the hard limit of repeated query parameters helix accepts
// per request.
const batchCeiling = 100

// maxFetchAttempts bounds consecutive non-success responses for one logical
// fetch before it is abandoned.
const maxFetchAttempts = 60

type TokenProvider interface {
	GetCurrentToken(ctx context.Context) string
}

type TwitchClient struct {
	twitchTokenService TokenProvider

	apiSchemeHost     string
	httpClient        *http.Client
	rateLimitCooldown time.Duration
	retryBackoff      time.Duration
}

func NewTwitchClient(twitchTokenService TokenProvider) *TwitchClient {
	return &TwitchClient{
		twitchTokenService: twitchTokenService,
		apiSchemeHost:      twitchApiSchemeHost,
		httpClient: &http.Client{
			Timeout: time.Second * 5,
		},
		rateLimitCooldown: time.Second * 15,
		retryBackoff:      time.Second,
	}
}

// fetchJSON issues one authenticated GET per attempt and keeps retrying the
// same url until the body comes back without an embedded error status.
// Status 429 waits out the rate-limit window without counting against the
// attempt ceiling; any other status sleeps briefly and counts. Unauthorized
// bodies surface as ValidationError for the caller to trigger a token
// refresh.
func (twc *TwitchClient) fetchJSON(ctx context.Context, url string) ([]byte, error) {

	attempts := 0

	for attempts < maxFetchAttempts {
		body, err := twc.doGet(ctx, url)
		if err != nil {
			attempts++
			time.Sleep(twc.retryBackoff)
			continue
		}

		var status models.ResponseStatus
		if err := jsoniter.Unmarshal(body, &status); err != nil {
			attempts++
			time.Sleep(twc.retryBackoff)
			continue
		}

		switch {
		case status.Status == 0:
			return body, nil

		case status.Status == http.StatusUnauthorized:
			return nil, &models.ValidationError{Response: body}

		case status.Status == http.StatusTooManyRequests:
			logrus.Infof("hit rate limit on %s, waiting %s", url, twc.rateLimitCooldown)
			time.Sleep(twc.rateLimitCooldown)

		default:
			logrus.Infof("request to %s failed with status %d: %s", url, status.Status, status.Message)
			attempts++
			time.Sleep(twc.retryBackoff)
		}
	}

	return nil, &models.RequestExhaustedError{URL: url, Attempts: attempts}
}

func (twc *TwitchClient) doGet(ctx context.Context, url string) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Add("Client-Id", os.Getenv("TWITCH_CLIENT_ID"))
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", twc.twitchTokenService.GetCurrentToken(ctx)))

	resp, err := twc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// chunkStrings splits ids into batches no larger than the helix ceiling.
func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
