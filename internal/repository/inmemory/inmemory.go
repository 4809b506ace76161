package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskbot/internal/models"
	repo "taskbot/internal/repository"
)

// Storage — хранилище в памяти для тестов и локальной разработки
type Storage struct {
	mtx        sync.RWMutex
	taskGroups map[int64]*models.TaskGroup
	tasks      map[int64]*models.Task
	users      map[string]*models.User
	groups     map[string]*models.Group
	config     *models.Config
	nextTaskID int64
	reminded   map[int64]string // id задачи -> дата последнего напоминания
}

func New() *Storage {
	return &Storage{
		taskGroups: make(map[int64]*models.TaskGroup),
		tasks:      make(map[int64]*models.Task),
		users:      make(map[string]*models.User),
		groups:     make(map[string]*models.Group),
		reminded:   make(map[int64]string),
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error { return nil }
func (s *Storage) Close() error                          { return nil }

func (s *Storage) clone(t *models.Task) *models.Task {
	cp := *t
	if tg, ok := s.taskGroups[t.GroupTaskID]; ok {
		cp.TaskText = tg.TaskText
		cp.Deadline = tg.Deadline
		cp.GroupID = tg.GroupID
	}
	return &cp
}

func (s *Storage) CreateTaskGroup(ctx context.Context, tg *models.TaskGroup, assignees []string, assignedBy string) ([]*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var maxID int64
	for id := range s.taskGroups {
		if id > maxID {
			maxID = id
		}
	}
	tg.GroupTaskID = maxID + 1
	cp := *tg
	s.taskGroups[tg.GroupTaskID] = &cp

	return s.appendTasks(tg.GroupTaskID, assignees, assignedBy, tg.CreatedAt), nil
}

func (s *Storage) appendTasks(groupTaskID int64, assignees []string, assignedBy, now string) []*models.Task {
	out := make([]*models.Task, 0, len(assignees))
	for _, assignee := range assignees {
		s.nextTaskID++
		t := &models.Task{
			ID:          s.nextTaskID,
			GroupTaskID: groupTaskID,
			AssignedTo:  assignee,
			AssignedBy:  assignedBy,
			Status:      models.StatusActive,
			CreatedAt:   now,
		}
		s.tasks[t.ID] = t
		out = append(out, s.clone(t))
	}
	return out
}

func (s *Storage) AddAssignees(ctx context.Context, groupTaskID int64, assignees []string, assignedBy string) ([]*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.taskGroups[groupTaskID]; !ok {
		return nil, repo.ErrNotFound
	}
	now := models.FormatTimestamp(time.Now())
	return s.appendTasks(groupTaskID, assignees, assignedBy, now), nil
}

func (s *Storage) GetTaskGroup(ctx context.Context, groupTaskID int64) (*models.TaskGroup, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tg, ok := s.taskGroups[groupTaskID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *tg
	return &cp, nil
}

func (s *Storage) UpdateTaskGroup(ctx context.Context, tg *models.TaskGroup) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.taskGroups[tg.GroupTaskID]; !ok {
		return repo.ErrNotFound
	}
	cp := *tg
	s.taskGroups[tg.GroupTaskID] = &cp
	return nil
}

func (s *Storage) DeleteTaskGroup(ctx context.Context, groupTaskID int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.taskGroups[groupTaskID]; !ok {
		return repo.ErrNotFound
	}
	delete(s.taskGroups, groupTaskID)
	for id, t := range s.tasks {
		if t.GroupTaskID == groupTaskID {
			delete(s.tasks, id)
			delete(s.reminded, id)
		}
	}
	return nil
}

func (s *Storage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return s.clone(t), nil
}

func (s *Storage) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	now := time.Now()
	out := []*models.Task{}
	for _, t := range s.tasks {
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.GroupTaskID != 0 && t.GroupTaskID != filter.GroupTaskID {
			continue
		}
		cp := s.clone(t)
		if filter.OverdueOnly && !cp.IsOverdue(now) {
			continue
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Storage) SetTaskStatus(ctx context.Context, id int64, status models.Status, completedAt string) (*models.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	t.Status = status
	t.CompletedAt = completedAt
	return s.clone(t), nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return 0, repo.ErrNotFound
	}
	groupTaskID := t.GroupTaskID
	delete(s.tasks, id)
	delete(s.reminded, id)

	remaining := 0
	for _, other := range s.tasks {
		if other.GroupTaskID == groupTaskID {
			remaining++
		}
	}
	return remaining, nil
}

func (s *Storage) ListDueReminders(ctx context.Context, today string, limit int) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	now := time.Now()
	out := []*models.Task{}
	for _, t := range s.tasks {
		if t.Status != models.StatusActive || s.reminded[t.ID] == today {
			continue
		}
		cp := s.clone(t)
		if cp.IsOverdue(now) {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) MarkReminded(ctx context.Context, id int64, today string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.reminded[id] = today
	return nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := []*models.User{}
	for _, u := range s.users {
		cp := *u
		cp.Groups = append([]string{}, u.Groups...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Storage) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	cp.Groups = append([]string{}, u.Groups...)
	return &cp, nil
}

func (s *Storage) UpsertUser(ctx context.Context, user *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cp := *user
	cp.Groups = append([]string{}, user.Groups...)
	if old, ok := s.users[user.Username]; ok && cp.ChatID == 0 {
		cp.ChatID = old.ChatID
	}
	s.users[user.Username] = &cp
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[username]; !ok {
		return repo.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

func (s *Storage) SetChatID(ctx context.Context, username string, chatID int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[username]
	if !ok {
		u = &models.User{Username: username, Groups: []string{}}
		s.users[username] = u
	}
	u.ChatID = chatID
	return nil
}

func (s *Storage) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := []*models.Group{}
	for _, g := range s.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Storage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *Storage) UpsertGroup(ctx context.Context, group *models.Group) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cp := *group
	s.groups[group.ID] = &cp
	return nil
}

func (s *Storage) GetConfig(ctx context.Context) (models.Config, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.config == nil {
		return models.DefaultConfig(), nil
	}
	return *s.config, nil
}

func (s *Storage) SetConfig(ctx context.Context, cfg models.Config) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.config = &cfg
	return nil
}

func (s *Storage) GetStats(ctx context.Context) (*models.Stats, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	now := time.Now()
	stats := &models.Stats{
		TotalTasks:  len(s.tasks),
		UsersCount:  len(s.users),
		GroupsCount: len(s.groups),
	}
	for _, t := range s.tasks {
		switch t.Status {
		case models.StatusActive:
			stats.ActiveTasks++
		case models.StatusCompleted:
			stats.CompletedTasks++
		}
		if s.clone(t).IsOverdue(now) {
			stats.OverdueTasks++
		}
	}
	return stats, nil
}
