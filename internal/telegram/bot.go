package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

const (
	clipSessionTTL = time.Hour
	requestTimeout = time.Minute
	usageDays      = 7
)

// Sender delivers messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers webhook updates from allowed users.
type Bot struct {
	api      Sender
	app      *app.App
	sessions *SessionRepository
	allowed  map[int64]bool
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewBot initializes the Telegram API client and registers the webhook.
func NewBot(token, webhookURL string, a *app.App, sessions *SessionRepository, allowedUserIDs []int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Info("telegram webhook set", zap.String("description", resp.Description))

	return newBot(api, a, sessions, allowedUserIDs, log), nil
}

func newBot(api Sender, a *app.App, sessions *SessionRepository, allowedUserIDs []int64, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &Bot{api: api, app: a, sessions: sessions, allowed: allowed, log: log}
}

// ServeHTTP handles a webhook call. Updates are processed in the background so
// Telegram gets its answer right away.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.log.Warn("failed to parse update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.allowed[msg.From.ID] {
		b.log.Warn("unauthorized access attempt",
			zap.Int64("telegram_user_id", msg.From.ID),
			zap.String("username", msg.From.UserName))
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		b.processMessage(ctx, msg)
	}()
}

// Wait blocks until all in-flight updates are processed.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleClip(ctx, msg.Chat.ID, userID, text)
		return
	}
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText)
		return
	}

	switch msg.Command() {
	case "plan":
		b.handlePlan(ctx, msg.Chat.ID, userID)
	case "newplan":
		b.handleNewPlan(ctx, msg.Chat.ID, userID)
	case "random":
		b.handleRandom(ctx, msg.Chat.ID, userID, msg.CommandArguments())
	case "shopping":
		b.handleShopping(ctx, msg.Chat.ID, userID)
	case "save":
		b.handleSave(ctx, msg.Chat.ID, userID)
	case "metrics":
		b.handleMetrics(ctx, msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, helpText)
	}
}

func (b *Bot) handlePlan(ctx context.Context, chatID int64, userID string) {
	doc, err := b.app.CurrentPlan(ctx, userID)
	if err != nil {
		b.replyError(chatID, "loading your plan", err)
		return
	}
	b.reply(chatID, formatPlanMarkdown(doc.Plan))
}

func (b *Bot) handleNewPlan(ctx context.Context, chatID int64, userID string) {
	doc, err := b.app.CreatePlan(ctx, userID)
	if err != nil {
		b.replyError(chatID, "creating a plan", err)
		return
	}
	b.reply(chatID, formatPlanMarkdown(doc.Plan))
}

func (b *Bot) handleRandom(ctx context.Context, chatID int64, userID, args string) {
	slot, err := planner.ParseMealSlot(args)
	if err != nil {
		b.reply(chatID, "Usage: /random lunch|dinner")
		return
	}
	doc, err := b.app.AssignAllRandom(ctx, userID, slot)
	if err != nil {
		b.replyError(chatID, "filling the week", err)
		return
	}
	b.reply(chatID, formatPlanMarkdown(doc.Plan))
}

func (b *Bot) handleShopping(ctx context.Context, chatID int64, userID string) {
	list, err := b.app.ShoppingList(ctx, userID)
	if err != nil {
		b.replyError(chatID, "building the shopping list", err)
		return
	}
	b.reply(chatID, formatShoppingListMarkdown(list))
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64) {
	report, err := b.app.MetricsReport(ctx, usageDays)
	if err != nil {
		b.replyError(chatID, "fetching metrics", err)
		return
	}
	b.reply(chatID, "📊 *Usage & Health Report*\n\n```\n"+report+"```")
}

func (b *Bot) handleClip(ctx context.Context, chatID int64, userID, url string) {
	status := tgbotapi.NewMessage(chatID, "✂️ *Clipping recipe...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		b.log.Error("failed to send status message", zap.Error(err))
		return
	}

	text := b.clip(ctx, userID, url)
	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("failed to send clip preview", zap.Error(err))
	}
}

func (b *Bot) clip(ctx context.Context, userID, url string) string {
	res, err := b.app.ClipRecipe(ctx, url)
	if err != nil {
		b.log.Warn("failed to clip recipe", zap.String("url", url), zap.Error(err))
		return errorText("clipping the recipe", err)
	}
	if len(res.Items) == 0 {
		return "🤷 No ingredient list found on that page."
	}

	draft := res.Draft(b.app.DefaultServings())
	if err := b.sessions.DeleteForUser(ctx, userID, SessionClip); err != nil {
		b.log.Warn("failed to drop old clip sessions", zap.Error(err))
	}
	if _, err := b.sessions.Create(ctx, userID, SessionClip, draft, clipSessionTTL); err != nil {
		return errorText("keeping the recipe", err)
	}
	return formatClipMarkdown(draft) + "\nSend /save to add it to your recipes."
}

func (b *Bot) handleSave(ctx context.Context, chatID int64, userID string) {
	session, err := b.sessions.GetActive(ctx, userID, SessionClip, time.Now())
	if err != nil {
		b.replyError(chatID, "loading the clipped recipe", err)
		return
	}
	if session == nil {
		b.reply(chatID, "Nothing to save. Send me a recipe link first.")
		return
	}

	var draft recipe.Recipe
	if err := session.Decode(&draft); err != nil {
		b.replyError(chatID, "loading the clipped recipe", err)
		return
	}
	res, err := b.app.SaveRecipe(ctx, userID, draft)
	if err != nil {
		b.replyError(chatID, "saving the recipe", err)
		return
	}
	if err := b.sessions.Delete(ctx, session.ID); err != nil {
		b.log.Warn("failed to delete clip session", zap.Int64("session_id", session.ID), zap.Error(err))
	}
	b.reply(chatID, formatSavedMarkdown(res))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyError(chatID int64, action string, err error) {
	if !errors.Is(err, planner.ErrNoCurrentPlan) {
		b.log.Error("bot request failed", zap.String("action", action), zap.Error(err))
	}
	b.reply(chatID, errorText(action, err))
}

func errorText(action string, err error) string {
	if errors.Is(err, planner.ErrNoCurrentPlan) {
		return "🗓️ You have no current plan. Send /newplan to start one."
	}
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *Error %s:*\n```\n%s\n```", action, safeErr)
}
