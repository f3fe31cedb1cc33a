package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "armor-aim/internal/application"
	"armor-aim/internal/container"
	"armor-aim/internal/domain/entity"
	"armor-aim/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я бот наведения на бронепластины.

📋 Команды:
/status — итоги последнего кадра
/snapshot — последний размеченный кадр
/color red|blue — цвет противника
/watch — присылать отчёт о прогоне
/cancel — отписаться от отчётов
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /status показывает найденные пластины и расстояние до ближайшей
2️⃣ /snapshot присылает кадр с разметкой
3️⃣ /color переключает цвет противника со следующего кадра
4️⃣ /watch подписывает на отчёт по окончании видеопотока

📋 Команды:
/status, /snapshot, /color, /watch, /cancel`

	msgWatching       = "🔔 Отчёт о прогоне придёт в этот чат."
	msgCancelled      = "🔕 Подписка на отчёты отменена."
	msgUseCommands    = "📋 Используйте команды, список — /help."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgNoFrames       = "⏳ Кадры ещё не обработаны."
	msgNoSnapshot     = "⚠️ Размеченного кадра пока нет."
	msgColorUsage     = "Укажите цвет: /color red или /color blue"
)

// Bot канал оператора в Telegram
type Bot struct {
	api       *tgbotapi.BotAPI
	operators *app.OperatorService
	aim       *app.AimService
	snapshots port.SnapshotSource
	log       *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("telegram bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:       api,
		operators: c.OperatorService,
		aim:       c.AimService,
		snapshots: c.Snapshots,
		log:       log,
	}, nil
}

// Run обрабатывает сообщения до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Notify рассылает текст подписанным операторам
func (b *Bot) Notify(ctx context.Context, text string) error {
	chats, err := b.operators.Watchers(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, chatID := range chats {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, msgUseCommands)
		return
	}
	b.handleCommand(ctx, msg)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		if _, err := b.operators.Get(ctx, msg.From.ID, chatID); err != nil {
			b.log.Warn("failed to register operator", zap.Error(err))
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "status":
		b.sendMessage(chatID, formatStatus(b.aim.LastResult(), b.aim.EnemyColor()))

	case "snapshot":
		b.sendSnapshot(chatID)

	case "color":
		color, reply, ok := parseColorCommand(msg.CommandArguments())
		if ok {
			b.aim.SetEnemyColor(color)
			b.log.Info("enemy color changed",
				zap.Int64("operator", msg.From.ID),
				zap.String("color", string(color)),
			)
		}
		b.sendMessage(chatID, reply)

	case "watch":
		if _, err := b.operators.Watch(ctx, msg.From.ID, chatID); err != nil {
			b.log.Warn("failed to subscribe operator", zap.Error(err))
			return
		}
		b.sendMessage(chatID, msgWatching)

	case "cancel":
		if _, err := b.operators.Cancel(ctx, msg.From.ID, chatID); err != nil {
			b.log.Warn("failed to unsubscribe operator", zap.Error(err))
			return
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) sendSnapshot(chatID int64) {
	if b.snapshots == nil {
		b.sendMessage(chatID, msgNoSnapshot)
		return
	}
	data, err := b.snapshots.Snapshot()
	if err != nil {
		b.log.Debug("snapshot unavailable", zap.Error(err))
		b.sendMessage(chatID, msgNoSnapshot)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "frame.jpg", Bytes: data})
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn("failed to send snapshot", zap.Error(err))
	}
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// parseColorCommand разбирает аргумент /color и готовит ответ.
func parseColorCommand(args string) (entity.EnemyColor, string, bool) {
	if strings.TrimSpace(args) == "" {
		return "", msgColorUsage, false
	}
	color, err := entity.ParseEnemyColor(args)
	if err != nil {
		return "", msgColorUsage, false
	}
	return color, fmt.Sprintf("🎯 Цвет противника: %s", colorName(color)), true
}

func colorName(c entity.EnemyColor) string {
	if c == entity.EnemyBlue {
		return "синий"
	}
	return "красный"
}

// formatStatus сводка последнего кадра для оператора.
func formatStatus(result *entity.FrameResult, color entity.EnemyColor) string {
	if result == nil {
		return msgNoFrames
	}

	small, large := result.Counts()
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎞 Кадр #%d (%s)\n", result.Index, result.Elapsed.Round(100*time.Microsecond))
	fmt.Fprintf(&sb, "🎯 Цвет противника: %s\n", colorName(color))
	fmt.Fprintf(&sb, "💡 Световых элементов: %d\n", len(result.LightBars))
	fmt.Fprintf(&sb, "🛡 Пластин: %d (малых %d, больших %d)", len(result.Armors), small, large)

	if nearest, ok := result.Nearest(); ok {
		fmt.Fprintf(&sb, "\n📏 Ближайшая: %s, цифра %s, %.2f м", nearest.Type, nearest.Digit, nearest.Distance/1000)
	}
	return sb.String()
}

var _ port.Notifier = (*Bot)(nil)
