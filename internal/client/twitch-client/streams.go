package twitch_client

import (
	"context"
	"net/url"
	"strconv"

	"twitch_live_notifier/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// GetStreamsByUserLogins returns the currently live streams for the given
// logins. Logins are queried in batches of at most 100; within a batch,
// pagination cursors are followed until a short page arrives.
func (twc *TwitchClient) GetStreamsByUserLogins(ctx context.Context, logins []string) (data []models.Stream, err error) {
	return twc.gatherStreams(ctx, "user_login", logins)
}

// GetStreamsByGameIds returns the currently live streams in the given
// categories, with the same batching and pagination rules.
func (twc *TwitchClient) GetStreamsByGameIds(ctx context.Context, gameIds []string) (data []models.Stream, err error) {
	return twc.gatherStreams(ctx, "game_id", gameIds)
}

func (twc *TwitchClient) gatherStreams(ctx context.Context, param string, values []string) (data []models.Stream, err error) {

	for _, chunk := range chunkStrings(values, batchCeiling) {

		cursor := ""
		for {
			query := url.Values{}
			for _, value := range chunk {
				query.Add(param, value)
			}
			query.Add("first", strconv.Itoa(batchCeiling))
			if cursor != "" {
				query.Add("after", cursor)
			}

			body, err := twc.fetchJSON(ctx, twc.apiSchemeHost+"/helix/streams?"+query.Encode())
			if err != nil {
				return nil, errors.Wrap(err, "fetchJSON")
			}

			var page models.StreamsPage
			if err := jsoniter.Unmarshal(body, &page); err != nil {
				return nil, errors.Wrap(err, "Unmarshal")
			}

			if page.Data == nil {
				return nil, &models.MissingResponseFieldError{Payload: body, Field: "data"}
			}

			data = append(data, *page.Data...)

			// a full page means more results may follow
			if len(*page.Data) != batchCeiling {
				break
			}
			if page.Pagination == nil {
				return nil, &models.MissingResponseFieldError{Payload: body, Field: "pagination"}
			}
			cursor = page.Pagination.Cursor
		}
	}

	return data, nil
}
