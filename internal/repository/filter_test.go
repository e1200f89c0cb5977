package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterNumbersPlaceholders(t *testing.T) {
	var f filter
	assert.Equal(t, "1=1", f.clause())

	f.add("status = ?", "PENDING")
	f.addSearch("gpu", "name", "description")
	f.add("? = ANY(tags)", "ai")

	assert.Equal(t, `status = $1 AND (name ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\') AND $3 = ANY(tags)`, f.clause())
	assert.Equal(t, []any{"PENDING", "%gpu%", "ai"}, f.args)

	suffix, args := f.page(20, 40)
	assert.Equal(t, " LIMIT $4 OFFSET $5", suffix)
	assert.Equal(t, []any{"PENDING", "%gpu%", "ai", 20, 40}, args)
	assert.Len(t, f.args, 3)
}

func TestSearchTermIsMatchedLiterally(t *testing.T) {
	var f filter
	f.addSearch(`50%_off\`, "name")

	assert.Equal(t, `(name ILIKE $1 ESCAPE '\')`, f.clause())
	assert.Equal(t, []any{`%50\%\_off\\%`}, f.args)
}
