package twitch_client

import (
	"context"
	"net/url"

	"twitch_live_notifier/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// GetUsersByIds returns broadcaster profiles for the given user ids, queried
// in batches of at most 100.
func (twc *TwitchClient) GetUsersByIds(ctx context.Context, ids []string) (data []models.TwitchUserInfo, err error) {

	for _, chunk := range chunkStrings(ids, batchCeiling) {

		query := url.Values{}
		for _, id := range chunk {
			query.Add("id", id)
		}

		body, err := twc.fetchJSON(ctx, twc.apiSchemeHost+"/helix/users?"+query.Encode())
		if err != nil {
			return nil, errors.Wrap(err, "fetchJSON")
		}

		var page models.UsersPage
		if err := jsoniter.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "Unmarshal")
		}

		if page.Data == nil {
			return nil, &models.MissingResponseFieldError{Payload: body, Field: "data"}
		}

		data = append(data, *page.Data...)
	}

	return data, nil
}

// GetFollowerCountById returns the follower total for one broadcaster. This
// is the per-stream call that dominates request volume on busy cycles.
func (twc *TwitchClient) GetFollowerCountById(ctx context.Context, userId string) (uint64, error) {

	query := url.Values{}
	query.Add("to_id", userId)

	body, err := twc.fetchJSON(ctx, twc.apiSchemeHost+"/helix/users/follows?"+query.Encode())
	if err != nil {
		return 0, errors.Wrap(err, "fetchJSON")
	}

	var page models.FollowsPage
	if err := jsoniter.Unmarshal(body, &page); err != nil {
		return 0, errors.Wrap(err, "Unmarshal")
	}

	if page.Total == nil {
		return 0, &models.MissingResponseFieldError{Payload: body, Field: "total"}
	}

	return *page.Total, nil
}
