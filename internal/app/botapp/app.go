package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/nkoval/vitrine/internal/config"
	s3infra "github.com/nkoval/vitrine/internal/infra/s3"
	tginfra "github.com/nkoval/vitrine/internal/infra/telegram"
	"github.com/nkoval/vitrine/internal/jobs/cleanup"
	"github.com/nkoval/vitrine/internal/pkg/supervisor"
	pgrepo "github.com/nkoval/vitrine/internal/repo/postgres"
	mediasvc "github.com/nkoval/vitrine/internal/services/media"
	modsvc "github.com/nkoval/vitrine/internal/services/moderation"
)

const queueEmptyReply = "Moderation queue is empty."

type rejectState struct {
	ListingID   int64
	ModeratorID int64
}

// App is the moderator-side companion process. It serves the review queue in
// a Telegram chat and runs the retention sweeps.
type App struct {
	cfg               config.Config
	logger            *zap.Logger
	postgres          *pgxpool.Pool
	s3                *minio.Client
	bot               *tginfra.Bot
	moderationService *modsvc.Service
	cleanupJob        *cleanup.Job

	rejectMu     sync.Mutex
	rejectByChat map[int64]rejectState
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for bot app: %w", err)
	}

	s3Client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init s3 for bot app: %w", err)
	}

	storage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	userRepo := pgrepo.NewUserRepo(pool)
	mediaRepo := pgrepo.NewMediaRepo(pool)
	moderationRepo := pgrepo.NewModerationRepo(pool)

	mediaService := mediasvc.NewService(mediaRepo, storage, mediasvc.Config{
		MaxPhotos:  cfg.Policy.MaxOwnerPhotos,
		MaxVideos:  cfg.Policy.MaxOwnerVideos,
		PresignTTL: cfg.Policy.PresignTTL,
	})
	moderationService := modsvc.NewService(moderationRepo, mediaService)
	cleanupJob := cleanup.New(mediaRepo, storage, userRepo, cfg.Policy.RejectedRetention, logger)

	var bot *tginfra.Bot
	if strings.TrimSpace(cfg.Bot.Token) != "" {
		bot, err = tginfra.NewBot(cfg.Bot.Token)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
	} else {
		logger.Warn("BOT_TOKEN is empty, review chat disabled")
	}

	return &App{
		cfg:               cfg,
		logger:            logger,
		postgres:          pool,
		s3:                s3Client,
		bot:               bot,
		moderationService: moderationService,
		cleanupJob:        cleanupJob,
		rejectByChat:      make(map[int64]rejectState),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot app started")

	errCh := make(chan error, 3)
	go func() {
		errCh <- a.runCleanupLoop(ctx)
	}()

	if a.bot != nil {
		listen := func(ctx context.Context) error {
			return a.bot.Listen(ctx, tginfra.Handlers{
				OnCommand:  a.handleCommand,
				OnText:     a.handleText,
				OnCallback: a.handleCallback,
			})
		}
		listenSup := supervisor.New("bot-listen", listen, supervisor.Config{RetryLimit: 5}, a.logger)
		go func() {
			err := listenSup.Run(ctx)
			for err != nil && !errors.Is(err, context.Canceled) {
				err = listenSup.Retry(ctx)
				if errors.Is(err, supervisor.ErrRetriesExhausted) {
					break
				}
			}
			errCh <- err
		}()
		go func() {
			errCh <- a.runQueueNotifier(ctx)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot app stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) runCleanupLoop(ctx context.Context) error {
	if a.cleanupJob == nil {
		return nil
	}

	interval := a.cfg.Policy.CleanupInterval
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	sup := supervisor.New("cleanup", a.cleanupJob.Run, supervisor.Config{RetryLimit: 3}, a.logger)

	runOnce := func() error {
		err := sup.Run(ctx)
		for err != nil && !errors.Is(err, context.Canceled) {
			err = sup.Retry(ctx)
			if errors.Is(err, supervisor.ErrRetriesExhausted) {
				return err
			}
		}
		return err
	}

	if err := runOnce(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := runOnce(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		}
	}
}

// runQueueNotifier pings the moderator chat when pending listings pile up.
// Repeated polls with the same backlog stay silent.
func (a *App) runQueueNotifier(ctx context.Context) error {
	if a.bot == nil || a.cfg.Bot.ModeratorChatID == 0 {
		return nil
	}

	interval := a.cfg.Bot.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastNotified int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			size, err := a.moderationService.QueueSize(ctx)
			if err != nil {
				a.logger.Warn("queue size poll failed", zap.Error(err))
				continue
			}
			if size == 0 {
				lastNotified = 0
				continue
			}
			if size == lastNotified {
				continue
			}
			text := fmt.Sprintf("%d listing(s) awaiting review. Send /queue to start.", size)
			if err := a.bot.SendText(ctx, a.cfg.Bot.ModeratorChatID, text); err != nil {
				a.logger.Warn("queue notification failed", zap.Error(err))
				continue
			}
			lastNotified = size
		}
	}
}

func (a *App) allowedChat(chatID int64) bool {
	return a.cfg.Bot.ModeratorChatID == 0 || chatID == a.cfg.Bot.ModeratorChatID
}

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	if a.bot == nil || !a.allowedChat(update.ChatID) {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "queue":
		return a.sendNextQueueItem(ctx, update.ChatID)
	case "reasons":
		return a.bot.SendText(ctx, update.ChatID, formatRejectReasons())
	default:
		return nil
	}
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	if a.bot == nil || !a.allowedChat(update.ChatID) {
		return nil
	}

	parts := strings.Split(strings.TrimSpace(update.Data), ":")
	if len(parts) != 3 || parts[0] != "review" {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Unknown action")
	}

	listingID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || listingID <= 0 {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Invalid listing id")
	}

	switch parts[1] {
	case "approve":
		if err := a.moderationService.Approve(ctx, listingID, update.UserID); err != nil {
			return a.bot.AnswerCallback(ctx, update.CallbackID, "Approve failed")
		}
		if err := a.bot.AnswerCallback(ctx, update.CallbackID, "Approved"); err != nil {
			return err
		}
		return a.bot.SendText(ctx, update.ChatID, fmt.Sprintf("Listing #%d approved.", listingID))
	case "reject":
		a.rejectMu.Lock()
		a.rejectByChat[update.ChatID] = rejectState{
			ListingID:   listingID,
			ModeratorID: update.UserID,
		}
		a.rejectMu.Unlock()
		if err := a.bot.AnswerCallback(ctx, update.CallbackID, "Send a reason code"); err != nil {
			return err
		}
		return a.bot.SendText(ctx, update.ChatID, "Reply with a reason code:\n\n"+formatRejectReasons())
	default:
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Unknown action")
	}
}

func (a *App) handleText(ctx context.Context, update tginfra.TextUpdate) error {
	if a.bot == nil || !a.allowedChat(update.ChatID) {
		return nil
	}

	a.rejectMu.Lock()
	state, ok := a.rejectByChat[update.ChatID]
	a.rejectMu.Unlock()
	if !ok {
		return nil
	}
	if state.ModeratorID != update.UserID {
		return nil
	}

	code := strings.TrimSpace(update.Text)
	if code == "" {
		return a.bot.SendText(ctx, update.ChatID, "Reason code cannot be empty.")
	}

	if err := a.moderationService.Reject(ctx, state.ListingID, state.ModeratorID, code); err != nil {
		if errors.Is(err, modsvc.ErrUnknownReason) {
			return a.bot.SendText(ctx, update.ChatID, "Unknown reason code. Send /reasons for the list.")
		}
		return a.bot.SendText(ctx, update.ChatID, "Reject failed.")
	}

	a.rejectMu.Lock()
	delete(a.rejectByChat, update.ChatID)
	a.rejectMu.Unlock()

	return a.bot.SendText(ctx, update.ChatID, fmt.Sprintf("Listing #%d rejected with %s.", state.ListingID, strings.ToUpper(code)))
}

func (a *App) sendNextQueueItem(ctx context.Context, chatID int64) error {
	if a.bot == nil {
		return nil
	}

	item, err := a.moderationService.Next(ctx)
	if err != nil {
		if errors.Is(err, modsvc.ErrQueueEmpty) {
			return a.bot.SendText(ctx, chatID, queueEmptyReply)
		}
		return err
	}

	text := formatQueueMessage(item)
	return a.bot.SendReviewCard(ctx, chatID, text, item.Listing.ListingID)
}

func formatQueueMessage(item modsvc.QueueItem) string {
	lines := []string{
		fmt.Sprintf("Listing #%d", item.Listing.ListingID),
		fmt.Sprintf("Owner ID: %d", item.Listing.OwnerID),
		fmt.Sprintf("Queue size: %d", item.QueueSize),
		fmt.Sprintf("ETA bucket: %s", item.ETABucket),
		"",
		fmt.Sprintf("Title: %s", defaultString(item.Listing.Title, "-")),
		fmt.Sprintf("City: %s", defaultString(item.Listing.City, "-")),
		fmt.Sprintf("Price per hour: %d", item.Listing.PricePerHour),
		"",
		"Description:",
		defaultString(item.Listing.Description, "-"),
		"",
		"Photos:",
	}

	if len(item.PhotoURLs) == 0 {
		lines = append(lines, "- none")
	} else {
		for i, u := range item.PhotoURLs {
			lines = append(lines, fmt.Sprintf("- photo_%d: %s", i+1, u))
		}
	}

	lines = append(lines, "", "Videos:")
	if len(item.VideoURLs) == 0 {
		lines = append(lines, "- none")
	} else {
		for i, u := range item.VideoURLs {
			lines = append(lines, fmt.Sprintf("- video_%d: %s", i+1, u))
		}
	}

	return strings.Join(lines, "\n")
}

func formatRejectReasons() string {
	reasons := modsvc.ListRejectReasons()
	lines := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		lines = append(lines, fmt.Sprintf("%s - %s", reason.Code, reason.Label))
	}
	return strings.Join(lines, "\n")
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	_ = a.s3
}
