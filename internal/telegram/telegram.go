// Package telegram is the thin transport shell: it feeds Telegram updates into
// the action router and sends the rendered replies back. No business logic
// lives here.
package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Impluse2/flowersss/internal/bot"
)

// Handler is the action router seen from the transport side.
type Handler interface {
	HandleStart(ctx context.Context, req bot.Request) bot.Reply
	Handle(ctx context.Context, req bot.Request) bot.Reply
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
}

func New(token string, handler Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Printf("Authorized on account %s", api.Self.UserName)
	return &Bot{api: api, handler: handler}, nil
}

// Run polls for updates until the context is cancelled. Each update is served
// on its own goroutine; the router and stores are safe for that.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		if update.Message.Command() != "start" {
			return
		}
		from := update.Message.From
		reply := b.handler.HandleStart(ctx, bot.Request{
			UserID:   from.ID,
			Username: from.UserName,
		})
		b.send(update.Message.Chat.ID, reply)

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		// Acknowledge the press so the client stops its spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.Printf("callback ack failed: %v", err)
		}

		reply := b.handler.Handle(ctx, bot.Request{
			UserID:   query.From.ID,
			Username: query.From.UserName,
			Token:    query.Data,
		})
		b.send(query.Message.Chat.ID, reply)
	}
}

func (b *Bot) send(chatID int64, reply bot.Reply) {
	markup := keyboard(reply)

	if reply.ImageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(reply.ImageURL))
		photo.Caption = reply.Text
		if reply.Markdown {
			photo.ParseMode = tgbotapi.ModeMarkdown
		}
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		if _, err := b.api.Send(photo); err != nil {
			log.Printf("send photo failed: %v", err)
			// Fall back to plain text; the image URL may be dead.
			b.sendText(chatID, reply, markup)
		}
		return
	}

	b.sendText(chatID, reply, markup)
}

func (b *Bot) sendText(chatID int64, reply bot.Reply, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send message failed: %v", err)
	}
}

func keyboard(reply bot.Reply) *tgbotapi.InlineKeyboardMarkup {
	if len(reply.Keyboard) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Keyboard))
	for _, row := range reply.Keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Token))
		}
		rows = append(rows, buttons)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
