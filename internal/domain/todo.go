package domain

import "time"

// MaxTodoTextLength caps todo text, counted in runes.
const MaxTodoTextLength = 500

type Todo struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"-"`
	Text      string    `db:"text" json:"text"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TodoStats are the dashboard counters for one owner's list
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// CountTodos derives stats from a list
func CountTodos(todos []*Todo) TodoStats {
	var s TodoStats
	for _, t := range todos {
		s.Total++
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
