package access

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"taskbot/internal/logger"
	"taskbot/internal/models"
)

// Checker — проверка прав по спискам администраторов и сотрудников
type Checker interface {
	IsAdmin(username string) bool
	IsEmployee(username string) bool
}

type fileData struct {
	Admins    []string `yaml:"admins"`
	Employees []string `yaml:"employees"`
}

// FileStore хранит списки доступа в плоском yaml-файле.
// Файл читается при старте и перезаписывается при каждом изменении.
type FileStore struct {
	path      string
	mtx       sync.RWMutex
	admins    map[string]struct{}
	employees map[string]struct{}
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:      path,
		admins:    make(map[string]struct{}),
		employees: make(map[string]struct{}),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload перечитывает файл; отсутствующий файл — пустые списки
func (s *FileStore) Reload() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Access: Файл списков доступа не найден, списки пусты", zap.String("path", s.path))
			return nil
		}
		return fmt.Errorf("чтение списков доступа: %w", err)
	}

	var data fileData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("разбор списков доступа: %w", err)
	}

	s.admins = make(map[string]struct{}, len(data.Admins))
	for _, a := range data.Admins {
		s.admins[models.NormalizeHandle(a)] = struct{}{}
	}
	s.employees = make(map[string]struct{}, len(data.Employees))
	for _, e := range data.Employees {
		s.employees[models.NormalizeHandle(e)] = struct{}{}
	}
	return nil
}

func (s *FileStore) IsAdmin(username string) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	_, ok := s.admins[models.NormalizeHandle(username)]
	return ok
}

func (s *FileStore) IsEmployee(username string) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	handle := models.NormalizeHandle(username)
	if _, ok := s.employees[handle]; ok {
		return true
	}
	// администраторы считаются и сотрудниками
	_, ok := s.admins[handle]
	return ok
}

func (s *FileStore) Admins() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return sortedKeys(s.admins)
}

func (s *FileStore) Employees() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return sortedKeys(s.employees)
}

func (s *FileStore) AddAdmin(username string) error {
	return s.mutate(func() {
		s.admins[models.NormalizeHandle(username)] = struct{}{}
	})
}

func (s *FileStore) RemoveAdmin(username string) error {
	return s.mutate(func() {
		delete(s.admins, models.NormalizeHandle(username))
	})
}

func (s *FileStore) AddEmployee(username string) error {
	return s.mutate(func() {
		s.employees[models.NormalizeHandle(username)] = struct{}{}
	})
}

func (s *FileStore) RemoveEmployee(username string) error {
	return s.mutate(func() {
		delete(s.employees, models.NormalizeHandle(username))
	})
}

func (s *FileStore) mutate(apply func()) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	apply()

	data := fileData{
		Admins:    sortedKeys(s.admins),
		Employees: sortedKeys(s.employees),
	}
	raw, err := yaml.Marshal(&data)
	if err != nil {
		return fmt.Errorf("сериализация списков доступа: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		logger.Error("Access: Не удалось сохранить списки доступа", err)
		return fmt.Errorf("сохранение списков доступа: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
