package live_check_handler

import (
	"net/http"
	"strconv"

	"twitch_live_notifier/internal/middleware"
	"twitch_live_notifier/internal/models"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Update forces a full poll cycle over every known chat.
func (lch *LiveCheckHandler) Update(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	if err := lch.liveCheckService.Sync(ctx); err != nil {
		logrus.Error(err)
		middleware.WriteErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteSuccessData(w, r, "updated")
}

// UpdateChat forces a reconciliation for one chat.
func (lch *LiveCheckHandler) UpdateChat(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	chatID, err := chatIDFromRequest(r)
	if err != nil {
		logrus.Errorf("failed parse chatId, error: %v", err)
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := lch.liveCheckService.RefreshChatByID(ctx, chatID); err != nil {
		if errors.Is(err, models.ErrChatLocked) {
			middleware.WriteErrorResponse(w, r, http.StatusConflict, err.Error())
			return
		}
		logrus.Error(err)
		middleware.WriteErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteSuccessData(w, r, "updated")
}

// PurgeChat deletes every posted live message for one chat and clears its
// baseline.
func (lch *LiveCheckHandler) PurgeChat(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()

	chatID, err := chatIDFromRequest(r)
	if err != nil {
		logrus.Errorf("failed parse chatId, error: %v", err)
		middleware.WriteErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := lch.liveCheckService.PurgeChat(ctx, chatID); err != nil {
		if errors.Is(err, models.ErrChatLocked) {
			middleware.WriteErrorResponse(w, r, http.StatusConflict, err.Error())
			return
		}
		logrus.Error(err)
		middleware.WriteErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.WriteSuccessData(w, r, "purged")
}

// Status reports every chat session and whether it is mid-refresh.
func (lch *LiveCheckHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteSuccessData(w, r, lch.liveCheckService.Status())
}

func chatIDFromRequest(r *http.Request) (int64, error) {

	raw, ok := mux.Vars(r)["chatId"]
	if !ok {
		return 0, errors.New("chatId is required")
	}

	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "ParseInt")
	}

	return chatID, nil
}
