package markdown

import (
	"strconv"
	"testing"

	"github.com/flowboard/flowboard/internal/ids"
	"github.com/flowboard/flowboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Board

## Backlog
- [ ] Write docs - the README needs a usage section
- [X] Ship it

## In Progress

## Done
- [x] Buy milk - from the corner store

# Notes
- Idea - explore X
- Plain note

# Todo
- [ ] First
- [x] Second - with a - dash
`

func sequentialIDs() ids.Generator {
	n := 0
	return ids.GeneratorFunc(func() string {
		n++
		return "id" + strconv.Itoa(n)
	})
}

func TestParse_Sample(t *testing.T) {
	doc := Parse(sample)

	require.Len(t, doc.Board.Columns, 3)
	backlog := doc.Board.Columns[0]
	assert.Equal(t, "backlog", backlog.ID)
	require.Len(t, backlog.Tasks, 2)
	assert.Equal(t, "Write docs", backlog.Tasks[0].Title)
	assert.Equal(t, "the README needs a usage section", backlog.Tasks[0].Description)
	assert.False(t, backlog.Tasks[0].Completed)
	assert.True(t, backlog.Tasks[1].Completed)
	assert.Empty(t, backlog.Tasks[1].Description)

	assert.Equal(t, "in-progress", doc.Board.Columns[1].ID)
	assert.Empty(t, doc.Board.Columns[1].Tasks)

	require.Len(t, doc.Notes, 2)
	assert.Equal(t, model.Note{ID: doc.Notes[0].ID, Title: "Idea", Content: "explore X"}, doc.Notes[0])
	assert.Equal(t, "Plain note", doc.Notes[1].Title)

	require.Len(t, doc.Todos, 2)
	assert.Equal(t, "Second", doc.Todos[1].Title)
	assert.Equal(t, "with a - dash", doc.Todos[1].Description)
	assert.True(t, doc.Todos[1].Completed)
}

func TestParse_TaskLine(t *testing.T) {
	doc := Parse("# Board\n## Done\n- [x] Buy milk - from the corner store")
	task := doc.Board.Columns[0].Tasks[0]
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "from the corner store", task.Description)
	assert.True(t, task.Completed)
}

func TestParse_EmptyText(t *testing.T) {
	doc := Parse("")
	assert.True(t, model.Equivalent(model.Default(), doc))
	assert.NotNil(t, doc.Notes)
	assert.NotNil(t, doc.Todos)
}

func TestParse_Legacy(t *testing.T) {
	doc := Parse("- [ ] orphan\n## A\n- [ ] t1\n")

	require.Len(t, doc.Board.Columns, 1)
	col := doc.Board.Columns[0]
	assert.Equal(t, "A", col.Title)
	assert.Equal(t, "a", col.ID)
	require.Len(t, col.Tasks, 1)
	assert.Equal(t, "t1", col.Tasks[0].Title)
	assert.False(t, col.Tasks[0].Completed)
	assert.Empty(t, doc.Notes)
	assert.Empty(t, doc.Todos)
}

func TestParse_NotesOnlyKeepsDefaultBoard(t *testing.T) {
	doc := Parse("# Notes\n- Idea - explore X\n")

	assert.Equal(t, model.DefaultColumns()[0].Title, doc.Board.Columns[0].Title)
	require.Len(t, doc.Board.Columns, 3)
	require.Len(t, doc.Notes, 1)
	assert.Equal(t, "Idea", doc.Notes[0].Title)
	assert.Equal(t, "explore X", doc.Notes[0].Content)
}

func TestParse_ColumnHeadersOutsideBoardIgnored(t *testing.T) {
	doc := Parse("# Notes\n## Not a column\n- note\n# Todo\n## Nope\n- [ ] todo\n")

	require.Len(t, doc.Board.Columns, 3)
	assert.Equal(t, "Backlog", doc.Board.Columns[0].Title)
	require.Len(t, doc.Notes, 1)
	require.Len(t, doc.Todos, 1)
}

func TestParse_CheckboxBeforeColumnDropped(t *testing.T) {
	doc := Parse("# Board\n- [ ] lost\n## A\n- [ ] kept\n")
	require.Len(t, doc.Board.Columns, 1)
	assert.Equal(t, []string{"kept"}, taskTitles(doc.Board.Columns[0]))
}

func TestParse_SectionKeywordsCaseInsensitive(t *testing.T) {
	doc := Parse("#   BOARD\n## A\n- [ ] t\n# notes\n- n\n# ToDo\n- [ ] d\n")
	require.Len(t, doc.Board.Columns, 1)
	assert.Len(t, doc.Notes, 1)
	assert.Len(t, doc.Todos, 1)
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	text := "# Board\n## A\n-[ ] no space\n- [y] bad box\n- [ ]\n* [ ] star\n  - [ ] indented ok  \n"
	doc := Parse(text)
	assert.Equal(t, []string{"indented ok"}, taskTitles(doc.Board.Columns[0]))
}

func TestParse_TodoIgnoresPlainBullets(t *testing.T) {
	doc := Parse("# Todo\n- plain\n- [ ] real\n")
	require.Len(t, doc.Todos, 1)
	assert.Equal(t, "real", doc.Todos[0].Title)
}

func TestParse_CRLF(t *testing.T) {
	doc := Parse("# Board\r\n## A\r\n- [x] t - d\r\n")
	task := doc.Board.Columns[0].Tasks[0]
	assert.Equal(t, "t", task.Title)
	assert.Equal(t, "d", task.Description)
}

func TestParse_UniqueIDs(t *testing.T) {
	same := ids.GeneratorFunc(func() string { return "dup" })
	n := 0
	gen := ids.GeneratorFunc(func() string {
		n++
		if n%2 == 1 {
			return same.NewID()
		}
		return "id" + strconv.Itoa(n)
	})

	doc := Parser{IDs: gen}.Parse(sample)
	assert.Empty(t, doc.DuplicateIDs())
}

func TestParse_FreshIDsEachParse(t *testing.T) {
	a := Parse(sample)
	b := Parse(sample)
	assert.True(t, model.Equivalent(a, b))
	assert.NotEqual(t, a.Board.Columns[0].Tasks[0].ID, b.Board.Columns[0].Tasks[0].ID)
}

func TestSerialize_Canonical(t *testing.T) {
	doc := Parser{IDs: sequentialIDs()}.Parse(sample)

	want := `# Board

## Backlog
- [ ] Write docs - the README needs a usage section
- [x] Ship it

## In Progress

## Done
- [x] Buy milk - from the corner store

# Notes
- Idea - explore X
- Plain note

# Todo
- [ ] First
- [x] Second - with a - dash
`
	assert.Equal(t, want, Serialize(doc))
	assert.Equal(t, Serialize(doc), Serialize(doc.Clone()))
}

func TestSerialize_Default(t *testing.T) {
	want := "# Board\n\n## Backlog\n\n## In Progress\n\n## Done\n\n# Notes\n\n# Todo\n"
	assert.Equal(t, want, Serialize(model.Default()))
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		sample,
		"## A\n- [ ] t1\n",
		"# Notes\n- Idea - explore X\n",
		"# Board\n## Spaced   Title\n- [ ] a  - b\n- [x] x -  y\n# Todo\n- [X] t\n",
		"# Notes\n- [ ] looks like a box\n",
	}
	for i, in := range inputs {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			first := Parse(in)
			second := Parse(Serialize(first))
			assert.True(t, model.Equivalent(first, second), "round trip changed document:\n%s", Serialize(first))
			assert.Equal(t, Serialize(first), Serialize(second))
		})
	}
}

func TestFormat_Legacy(t *testing.T) {
	got := Format("## A\n- [ ] t1\n")
	assert.Equal(t, "# Board\n\n## A\n- [ ] t1\n\n# Notes\n\n# Todo\n", got)
}

func taskTitles(col model.Column) []string {
	out := make([]string, len(col.Tasks))
	for i, t := range col.Tasks {
		out[i] = t.Title
	}
	return out
}
