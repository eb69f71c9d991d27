package cli

import (
	"fmt"
	"io"

	"todo_webapp/internal/client"
	"todo_webapp/internal/domain"
)

type palette struct {
	done, pending, dim, reset string
}

var palettes = map[string]palette{
	client.ThemeLight: {done: "\033[32m", pending: "\033[34m", dim: "\033[90m", reset: "\033[0m"},
	client.ThemeDark:  {done: "\033[92m", pending: "\033[93m", dim: "\033[37m", reset: "\033[0m"},
	client.ThemePlain: {},
}

func (p palette) paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + p.reset
}

func (a *app) render(w io.Writer) {
	renderTodos(w, a.ctrl.Snapshot(), a.settings)
}

// renderTodos prints the filtered view. Compact density drops the header and
// puts each todo on a single short line.
func renderTodos(w io.Writer, state client.State, settings client.Settings) {
	p := palettes[settings.Theme]
	visible := client.FilterTodos(state.Todos, state.Filter)
	compact := settings.Density == client.DensityCompact

	if !compact {
		stats := domain.CountTodos(todoPtrs(state.Todos))
		header := fmt.Sprintf("Todos: %d total, %d done, %d pending", stats.Total, stats.Completed, stats.Pending)
		if state.Filter != "" {
			header += fmt.Sprintf(" (filter %q, %d shown)", state.Filter, len(visible))
		}
		fmt.Fprintln(w, p.paint(p.dim, header))
	}

	if len(visible) == 0 && !compact {
		fmt.Fprintln(w, p.paint(p.dim, "  nothing to show"))
		return
	}

	for _, t := range visible {
		mark, color := "[ ]", p.pending
		if t.Completed {
			mark, color = "[x]", p.done
		}
		if compact {
			fmt.Fprintf(w, "%d %s %s\n", t.ID, mark, t.Text)
			continue
		}
		fmt.Fprintf(w, "  %s %s  %s\n", p.paint(color, mark), p.paint(p.dim, fmt.Sprintf("#%d", t.ID)), t.Text)
	}
}

func todoPtrs(todos []domain.Todo) []*domain.Todo {
	res := make([]*domain.Todo, len(todos))
	for i := range todos {
		res[i] = &todos[i]
	}
	return res
}
