package twitch_client

import (
	"context"
	"net/url"

	"twitch_live_notifier/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// GetGameIdsByNames resolves category names to ids. Names Twitch does not
// know are simply absent from the result map.
func (twc *TwitchClient) GetGameIdsByNames(ctx context.Context, names []string) (map[string]string, error) {

	games, err := twc.gatherGames(ctx, "name", names)
	if err != nil {
		return nil, err
	}

	nameToID := make(map[string]string, len(games))
	for _, game := range games {
		nameToID[game.Name] = game.GameId
	}

	return nameToID, nil
}

// GetGameNamesByIds resolves category ids to names, used to backfill the
// category map for ids observed in stream payloads.
func (twc *TwitchClient) GetGameNamesByIds(ctx context.Context, ids []string) (map[string]string, error) {

	games, err := twc.gatherGames(ctx, "id", ids)
	if err != nil {
		return nil, err
	}

	idToName := make(map[string]string, len(games))
	for _, game := range games {
		idToName[game.GameId] = game.Name
	}

	return idToName, nil
}

// GetGameNameById is the single-item resolution used when a render has no
// category map to consult.
func (twc *TwitchClient) GetGameNameById(ctx context.Context, id string) (string, error) {

	names, err := twc.GetGameNamesByIds(ctx, []string{id})
	if err != nil {
		return "", err
	}

	name, ok := names[id]
	if !ok {
		return "", errors.Errorf("game %s not found", id)
	}

	return name, nil
}

func (twc *TwitchClient) gatherGames(ctx context.Context, param string, values []string) (data []models.Game, err error) {

	for _, chunk := range chunkStrings(values, batchCeiling) {

		query := url.Values{}
		for _, value := range chunk {
			query.Add(param, value)
		}

		body, err := twc.fetchJSON(ctx, twc.apiSchemeHost+"/helix/games?"+query.Encode())
		if err != nil {
			return nil, errors.Wrap(err, "fetchJSON")
		}

		var page models.GamesPage
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
