package models

type Status string

const StatusActive Status = "active"
const StatusCompleted Status = "completed"

// Event — событие жизненного цикла задачи, по которому рассылаются уведомления
type Event string

const EventTaskCreated Event = "task_created"
const EventTaskCompleted Event = "task_completed"
const EventTaskDeleted Event = "task_deleted"
const EventOverdueReminder Event = "overdue_reminder"

// TaskGroup — групповая задача: одна запись, по которой создаётся
// по одной Task на каждого исполнителя
type TaskGroup struct {
	GroupTaskID int64  `json:"group_task_id" db:"group_task_id"`
	TaskText    string `json:"task_text" db:"task_text"`
	Deadline    string `json:"deadline" db:"deadline"`
	GroupID     string `json:"group_id" db:"group_id"`
	CreatedAt   string `json:"created_at" db:"created_at"`
}

type Task struct {
	ID          int64  `json:"id" db:"id"`
	GroupTaskID int64  `json:"group_task_id" db:"group_task_id"`
	AssignedTo  string `json:"assigned_to" db:"assigned_to"`
	AssignedBy  string `json:"assigned_by" db:"assigned_by"`
	Status      Status `json:"status" db:"status"`
	CreatedAt   string `json:"created_at" db:"created_at"`
	CompletedAt string `json:"completed_at" db:"completed_at"`

	// поля групповой задачи, подтягиваются JOIN-ом при чтении
	TaskText string `json:"task_text,omitempty" db:"task_text"`
	Deadline string `json:"deadline,omitempty" db:"deadline"`
	GroupID  string `json:"group_id,omitempty" db:"group_id"`
}

type User struct {
	Username string   `json:"username" db:"username"`
	FullName string   `json:"full_name" db:"full_name"`
	ChatID   int64    `json:"chat_id,omitempty" db:"chat_id"`
	Groups   []string `json:"groups"`
}

type Group struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Config — флаги уведомлений по событиям, по умолчанию всё включено
type Config struct {
	TaskCreated     bool `json:"task_created" yaml:"task_created"`
	TaskCompleted   bool `json:"task_completed" yaml:"task_completed"`
	TaskDeleted     bool `json:"task_deleted" yaml:"task_deleted"`
	OverdueReminder bool `json:"overdue_reminder" yaml:"overdue_reminder"`
}

func DefaultConfig() Config {
	return Config{
		TaskCreated:     true,
		TaskCompleted:   true,
		TaskDeleted:     true,
		OverdueReminder: true,
	}
}

// Enabled сообщает, включены ли уведомления для события
func (c Config) Enabled(e Event) bool {
	switch e {
	case EventTaskCreated:
		return c.TaskCreated
	case EventTaskCompleted:
		return c.TaskCompleted
	case EventTaskDeleted:
		return c.TaskDeleted
	case EventOverdueReminder:
		return c.OverdueReminder
	}
	return false
}

type Stats struct {
	TotalTasks     int `json:"total_tasks"`
	ActiveTasks    int `json:"active_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	OverdueTasks   int `json:"overdue_tasks"`
	UsersCount     int `json:"users_count"`
	GroupsCount    int `json:"groups_count"`
}

// TaskFilter — фильтры списка задач, нулевые значения игнорируются
type TaskFilter struct {
	AssignedTo  string
	Status      Status
	GroupTaskID int64
	OverdueOnly bool
}
