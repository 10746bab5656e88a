package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		Write(&buf, nil, nil)
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("field order", func(t *testing.T) {
		var buf bytes.Buffer
		rows := []map[string]any{
			{"idname": "Subsurf", "count": 3, "levels": 2.0},
			{"idname": "Mirror", "count": 1},
		}
		Write(&buf, rows, []string{"idname", "count"})
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 7)
		assert.Equal(t, "+---------+-------+--------+", lines[0])
		assert.Equal(t, "| idname  | count | levels |", lines[1])
		assert.Equal(t, "| Subsurf | 3     | 2      |", lines[3])
		assert.Equal(t, "| Mirror  | 1     |        |", lines[4])
		assert.Equal(t, "(2 rows)", lines[6])
	})

	t.Run("wide runes", func(t *testing.T) {
		var buf bytes.Buffer
		Write(&buf, []map[string]any{{"name": "Cube…"}}, nil)
		assert.Contains(t, buf.String(), "| Cube… |")
	})
}

func TestBorder(t *testing.T) {
	var buf bytes.Buffer
	Border(&buf, []int{1, 3})
	assert.Equal(t, "+---+-----+\n", buf.String())

	buf.Reset()
	Border(&buf, nil)
	assert.Equal(t, "+\n", buf.String())
}
