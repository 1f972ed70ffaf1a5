package gateway

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramGateway struct {
	Bot     *tgbotapi.BotAPI
	Handler *Handler
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewTelegramGateway(token string, handler *Handler, logger *zap.Logger) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	ctx, cancel := context.WithCancel(context.Background())
	return &TelegramGateway{
		Bot:     bot,
		Handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start blocks until Stop is called. Each message is executed as one pipeline run.
func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		user := ""
		if update.Message.From != nil {
			user = update.Message.From.UserName
		}
		tg.logger.Debug("message received", zap.Int64("chat", chatID), zap.String("user", user))

		source := fmt.Sprintf("telegram:%d", chatID)
		reply := tg.Handler.Reply(tg.ctx, source, update.Message.Text)

		if err := tg.Send(strconv.FormatInt(chatID, 10), reply); err != nil {
			tg.logger.Error("failed to send reply", zap.Int64("chat", chatID), zap.Error(err))
		}
	}
	return nil
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err = tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.cancel()
	tg.Bot.StopReceivingUpdates()
	return nil
}

var _ Messenger = (*TelegramGateway)(nil)
