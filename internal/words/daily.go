package words

import (
	"context"
	"time"

	"github.com/robalobadob/wordle/apps/tally/internal/daily"
)

// Daily returns the same word for every call within one UTC day.
type Daily struct {
	list *List
	salt string
	now  func() time.Time
}

// NewDaily builds a daily provider over list. The salt keeps the
// date-to-word mapping from being predictable across deployments.
func NewDaily(list *List, salt string) *Daily {
	return &Daily{list: list, salt: salt, now: time.Now}
}

// Today returns today's date key and the list index of today's word.
func (d *Daily) Today() (date string, idx int) {
	now := d.now()
	return daily.DateKey(now), daily.WordIndex(now, d.salt, d.list.Len())
}

// Word returns today's word.
func (d *Daily) Word(ctx context.Context) string {
	_, idx := d.Today()
	return d.list.At(idx)
}
