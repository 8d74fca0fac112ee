package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// filterBuilder accumulates WHERE conditions with positional placeholders.
type filterBuilder struct {
	conditions []string
	args       []interface{}
}

func (b *filterBuilder) add(format string, value interface{}) {
	b.args = append(b.args, value)
	b.conditions = append(b.conditions, fmt.Sprintf(format, len(b.args)))
}

// window restricts column to [from, to).
func (b *filterBuilder) window(column string, from, to *time.Time) {
	if from != nil {
		b.add(column+" >= $%d", *from)
	}
	if to != nil {
		b.add(column+" < $%d", *to)
	}
}

func (b *filterBuilder) equals(column, value string) {
	if value != "" {
		b.add(column+" = $%d", value)
	}
}

func (b *filterBuilder) anyOf(column string, values []string) {
	if values != nil {
		b.add(column+" = ANY($%d)", pq.Array(values))
	}
}

func (b *filterBuilder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}
