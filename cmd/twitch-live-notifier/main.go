package main

import (
	"context"
	"net/http"
	"os"
	"time"

	telegramClient "twitch_live_notifier/internal/client/telegram-client"
	twitchClient "twitch_live_notifier/internal/client/twitch-client"
	twitchOauthClient "twitch_live_notifier/internal/client/twitch-oauth-client"

	liveCheckHandler "twitch_live_notifier/internal/handlers/live_check"

	liveCheckService "twitch_live_notifier/internal/service/live_check"
	settingsService "twitch_live_notifier/internal/service/settings"
	teleUpdatesCheckService "twitch_live_notifier/internal/service/telegram_updates_check"
	twitchTokenService "twitch_live_notifier/internal/service/twitch_token"

	dbRepository "twitch_live_notifier/db/repository"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()

	err := godotenv.Load()
	if err != nil {
		logrus.Fatal("Error loading .env file")
	}

	directAddr := os.Getenv("DIRECT_ADDR")

	db, err := sqlx.Connect("postgres", os.Getenv("DB_CONN"))
	if err != nil {
		logrus.Fatalf("cannot connect to db: %v", err)
	}

	err = db.Ping()
	if err != nil {
		logrus.Fatalf("cannot ping db: %v", err)
	}

	dbRepo := dbRepository.NewDBRepository(db)

	oauthClient := twitchOauthClient.NewTwitchOauthClient()

	tts, err := twitchTokenService.NewTwitchTokenService(dbRepo, oauthClient)
	if err != nil {
		logrus.Fatalf("cannot init twitchTokenService: %v", err)
	}

	twitchApiClient := twitchClient.NewTwitchClient(tts)

	telegaClient, err := telegramClient.NewTelegramClient()
	if err != nil {
		logrus.Fatalf("cannot init telegramClient: %v", err)
	}

	chatSettings := settingsService.NewService(dbRepo)

	lcs, err := liveCheckService.NewLiveCheckService(twitchApiClient, telegaClient, chatSettings, dbRepo, tts)
	if err != nil {
		logrus.Fatalf("cannot init liveCheckService: %v", err)
	}
	go lcs.SyncBg(ctx, time.Second*300)

	tucs, err := teleUpdatesCheckService.NewTelegramUpdatesCheckService(telegaClient, chatSettings, lcs)
	if err != nil {
		logrus.Fatalf("cannot init teleUpdatesCheckService: %v", err)
	}
	go tucs.SyncBg(ctx, time.Second*1)

	lcHandler := liveCheckHandler.NewLiveCheckHandler(lcs)

	directRouter := mux.NewRouter()

	directRouter.HandleFunc("/livecheck/update", lcHandler.Update).Methods("POST").Schemes("HTTP")
	directRouter.HandleFunc("/livecheck/update/{chatId}", lcHandler.UpdateChat).Methods("POST").Schemes("HTTP")
	directRouter.HandleFunc("/livecheck/purge/{chatId}", lcHandler.PurgeChat).Methods("POST").Schemes("HTTP")
	directRouter.HandleFunc("/livecheck/status", lcHandler.Status).Methods("GET").Schemes("HTTP")

	logrus.Info("server start...")

	srv := &http.Server{
		Handler:      directRouter,
		Addr:         directAddr,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,
	}

	logrus.Fatal(srv.ListenAndServe())
}
