package models

import (
	"fmt"
	"time"
)

// Дедлайны и отметки времени хранятся текстом в форматах исходной базы.
// Сравнивать их можно только через функции этого файла.
const DateLayout = "02.01.2006"
const TimestampLayout = "02.01.2006 15:04:05"

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseDeadline принимает дату, полную отметку времени или ISO-дату
func ParseDeadline(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, TimestampLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("неверный формат дедлайна %q, ожидается %s", s, DateLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат отметки времени %q: %w", s, err)
	}
	return t, nil
}

// IsOverdue: задача просрочена, если она активна и дата дедлайна
// строго раньше текущей даты. Статус не хранится, вычисляется при чтении.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusCompleted {
		return false
	}
	deadline, err := ParseDeadline(t.Deadline)
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return deadline.Before(today)
}
