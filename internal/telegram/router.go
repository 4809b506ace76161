package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"taskbot/internal/access"
	"taskbot/internal/logger"
	"taskbot/internal/service"
)

// шаги диалоговых сценариев
const (
	stepTaskText       = "await_task_text"
	stepCustomDeadline = "await_custom_deadline"
	stepEditDeadline   = "await_edit_deadline"
	stepUserUsername   = "await_user_username"
	stepUserFullName   = "await_user_full_name"
	stepUserGroups     = "await_user_groups"
	stepAdminUsername  = "await_admin_username"
)

// draft — состояние диалога в чате, живёт только в памяти
type draft struct {
	step      string
	assignees map[string]bool
	taskText  string
	groupID   string
	taskID    int64
	username  string
	fullName  string
	page      int // текущая страница списка всех задач
}

func (d *draft) selected() []string {
	out := make([]string, 0, len(d.assignees))
	for u, on := range d.assignees {
		if on {
			out = append(out, u)
		}
	}
	return out
}

// Router разбирает обновления Telegram и хранит состояние диалогов
type Router struct {
	bot       *tgbotapi.BotAPI
	tasks     *service.TaskService
	directory *service.DirectoryService
	access    *access.FileStore
	state     map[int64]*draft // chatID -> текущий сценарий
	mu        sync.RWMutex
}

func NewRouter(bot *tgbotapi.BotAPI, tasks *service.TaskService, directory *service.DirectoryService, acl *access.FileStore) *Router {
	return &Router{
		bot:       bot,
		tasks:     tasks,
		directory: directory,
		access:    acl,
		state:     make(map[int64]*draft),
	}
}

func (r *Router) getDraft(chatID int64) *draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.state[chatID]
	if !ok {
		d = &draft{assignees: make(map[string]bool)}
		r.state[chatID] = d
	}
	return d
}

func (r *Router) clearDraft(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

func (r *Router) pendingStep(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.state[chatID]; ok {
		return d.step
	}
	return ""
}

// HandleUpdate разбирает одно обновление и передаёт его обработчику
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, msg)
		case strings.HasPrefix(text, "/done"):
			r.handleDone(ctx, msg)
		case strings.HasPrefix(text, "/mytasks"):
			r.handleMyTasks(ctx, msg)
		default:
			// свободный текст имеет смысл только внутри сценария
			r.handleFreeForm(ctx, chatID, msg, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		if cb.Message == nil {
			return
		}
		data := cb.Data
		chatID := cb.Message.Chat.ID
		username := handleOf(cb.From)

		switch {
		case data == "menu:main":
			r.showMainMenu(chatID, cb, username)
		case data == "menu:mytasks":
			r.editTo(cb, myTasksText, myTasksKeyboard())
		case data == "menu:admin":
			r.showAdminPanel(cb, username)

		case strings.HasPrefix(data, "my:"):
			r.handleMyTasksCallback(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "task:"):
			r.handleTaskAction(ctx, cb, data, false)
		case strings.HasPrefix(data, "admin_task:"):
			r.handleTaskAction(ctx, cb, data, true)

		case strings.HasPrefix(data, "admin:"):
			r.handleAdminCallback(ctx, chatID, cb, data, username)
		case strings.HasPrefix(data, "admin_page:"):
			r.handleTaskPageNav(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "exec:"):
			r.handleExecCallback(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "group:choose:"):
			r.handleGroupChoice(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "group:view:"):
			r.handleGroupView(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "deadline:"):
			r.handleDeadlineChoice(ctx, chatID, cb, data, username)
		case strings.HasPrefix(data, "notify:"):
			r.handleNotifyToggle(ctx, cb, data)
		case strings.HasPrefix(data, "users:"):
			r.handleUsersCallback(ctx, chatID, cb, data)
		case strings.HasPrefix(data, "admins:"):
			r.handleAdminsCallback(chatID, cb, data)

		default:
			// неизвестный callback игнорируется
		}
		return
	}
}

// --- Вспомогательные отправки ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Warn("Bot: Не удалось отправить сообщение",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.bot.Send(msg); err != nil {
		logger.Warn("Bot: Не удалось отправить сообщение",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) editTo(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, kb)
	if _, err := r.bot.Send(edit); err != nil {
		logger.Warn("Bot: Не удалось обновить сообщение", zap.Error(err))
	}
	r.answer(cb.ID, "")
}

func (r *Router) answer(cbID, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallback(cbID, text)); err != nil {
		logger.Warn("Bot: Ошибка ответа на callback", zap.Error(err))
	}
}

func (r *Router) alert(cbID, text string) {
	if _, err := r.bot.Request(tgbotapi.NewCallbackWithAlert(cbID, text)); err != nil {
		logger.Warn("Bot: Ошибка ответа на callback", zap.Error(err))
	}
}

func handleOf(u *tgbotapi.User) string {
	if u == nil || u.UserName == "" {
		return ""
	}
	return "@" + u.UserName
}

func isPrivate(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.IsPrivate()
}
