package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"todo-sync/internal/logger"
	"todo-sync/internal/syncer"
)

type Bot struct {
	api  *tgbotapi.BotAPI
	ctrl *syncer.Controller
}

func NewBot(token string, ctrl *syncer.Controller) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info(context.Background(), "authorized", "username", bot.Self.UserName)
	return &Bot{api: bot, ctrl: ctrl}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("get updates: %w", err)
	}

	logger.Info(context.Background(), "bot is listening for messages")

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleMessage(update.Message)
	}
	return nil
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	logger.Debug(ctx, "message received", "user", msg.From.UserName, "text", msg.Text)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Plain text adds a task directly.
	if strings.TrimSpace(msg.Text) != "" {
		b.addTask(ctx, msg.Chat.ID, msg.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendHelp(msg.Chat.ID)
	case "add":
		args := msg.CommandArguments()
		if args == "" {
			b.sendMessage(msg.Chat.ID, "Give the task after the command: /add Buy milk")
			return
		}
		b.addTask(ctx, msg.Chat.ID, args)
	case "list":
		b.listTasks(ctx, msg.Chat.ID)
	case "done":
		b.toggleTask(ctx, msg)
	case "delete":
		b.deleteTask(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command. Use /help for the command list.")
	}
}

func (b *Bot) addTask(ctx context.Context, chatID int64, text string) {
	if err := b.ctrl.Add(ctx, text); err != nil {
		b.sendMessage(chatID, "Error: "+err.Error())
		return
	}

	state := b.ctrl.Snapshot()
	if len(state.Tasks) > 0 {
		b.sendMessage(chatID, fmt.Sprintf("Task added!\n\nID: #%d\nTask: %s", state.Tasks[0].ID, state.Tasks[0].Title))
	}
}

func (b *Bot) listTasks(ctx context.Context, chatID int64) {
	if err := b.ctrl.Refresh(ctx); err != nil {
		b.sendMessage(chatID, "Error: "+err.Error())
		return
	}

	state := b.ctrl.Snapshot()
	if len(state.Tasks) == 0 {
		b.sendMessage(chatID, "The task list is empty")
		return
	}

	var response strings.Builder
	response.WriteString("*Your tasks:*\n\n")
	for _, task := range state.Tasks {
		status := "⬜"
		if task.Completed {
			status = "✅"
		}
		response.WriteString(fmt.Sprintf("%s #%d: %s\n", status, task.ID, task.Title))
	}

	b.sendMessage(chatID, response.String())
}

func (b *Bot) toggleTask(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := b.parseTaskID(msg, "/done 1")
	if !ok {
		return
	}

	if err := b.ctrl.Refresh(ctx); err != nil {
		b.sendMessage(msg.Chat.ID, "Error: "+err.Error())
		return
	}
	if err := b.ctrl.Toggle(ctx, id); err != nil {
		b.sendMessage(msg.Chat.ID, "Error: "+err.Error())
		return
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Task #%d toggled!", id))
}

func (b *Bot) deleteTask(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := b.parseTaskID(msg, "/delete 1")
	if !ok {
		return
	}

	if err := b.ctrl.Refresh(ctx); err != nil {
		b.sendMessage(msg.Chat.ID, "Error: "+err.Error())
		return
	}
	if err := b.ctrl.Remove(ctx, id); err != nil {
		b.sendMessage(msg.Chat.ID, "Error: "+err.Error())
		return
	}

	b.sendMessage(msg.Chat.ID, fmt.Sprintf("Task #%d deleted!", id))
}

func (b *Bot) parseTaskID(msg *tgbotapi.Message, example string) (int64, bool) {
	args := msg.CommandArguments()
	if args == "" {
		b.sendMessage(msg.Chat.ID, "Give the task number: "+example)
		return 0, false
	}

	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || id <= 0 {
		b.sendMessage(msg.Chat.ID, "The task number must be a positive integer")
		return 0, false
	}
	return id, true
}

func (b *Bot) sendHelp(chatID int64) {
	helpText := `*TodoBot commands*

/add [task] - Add a new task
/list - Show all tasks
/done [number] - Toggle a task
/delete [number] - Delete a task
/help - Show this help

Plain messages are added as tasks too.`

	b.sendMessage(chatID, helpText)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "send message", "chatID", chatID)
	}
}

func main() {
	ctx := context.Background()

	token := os.Getenv("TODO_BOT_TOKEN")
	if token == "" {
		logger.Error(ctx, nil, "TODO_BOT_TOKEN is not set")
		os.Exit(1)
	}

	serverURL := os.Getenv("TODO_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	ctrl := syncer.NewController(syncer.NewClient(serverURL))

	bot, err := NewBot(token, ctrl)
	if err != nil {
		logger.Error(ctx, err, "failed to create bot")
		os.Exit(1)
	}

	if err := bot.Start(); err != nil {
		logger.Error(ctx, err, "bot stopped")
		os.Exit(1)
	}
}
