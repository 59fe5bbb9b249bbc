package live_check_handler

import live_check "twitch_live_notifier/internal/service/live_check"

type LiveCheckHandler struct {
	liveCheckService *live_check.LiveCheckService
}

func NewLiveCheckHandler(liveCheckService *live_check.LiveCheckService) *LiveCheckHandler {
	return &LiveCheckHandler{
		liveCheckService: liveCheckService,
	}
}
