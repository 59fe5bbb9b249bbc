package twitch_oauth_client

const twitchIDSchemeHost string = "https://id.twitch.tv"

type TwitchOauthClient struct {
	schemeHost string
}

func NewTwitchOauthClient() *TwitchOauthClient {
	return &TwitchOauthClient{
		schemeHost: twitchIDSchemeHost,
	}
}
