package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestStore_Open_LoadsTablesSortedByID(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Budget", "Expenses.csv"), "Item,Amount\nRent,1200\nFood,350.5\n")
	writeFile(t, filepath.Join(root, "Budget", "Accounts.csv"), "Name\nChecking\n")
	writeFile(t, filepath.Join(root, "Budget", "notes.txt"), "ignored")

	doc, err := NewStore(root).Open(context.Background(), "Budget")
	require.NoError(t, err)

	assert.Equal(t, "Budget", doc.Name())
	require.Len(t, doc.Tables(), 2)
	assert.Equal(t, "Accounts", doc.Tables()[0].ID)
	assert.Equal(t, "Expenses", doc.Tables()[1].ID)

	expenses := doc.Table("Expenses")
	require.NotNil(t, expenses)
	assert.Equal(t, []string{"Item", "Amount"}, expenses.Columns)
	assert.Equal(t, [][]string{{"Rent", "1200"}, {"Food", "350.5"}}, expenses.Rows)

	assert.Nil(t, doc.Table("Missing"))
}

func TestStore_Open_EmptyCSVYieldsEmptyTable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Blank", "Sheet1.csv"), "")

	doc, err := NewStore(root).Open(context.Background(), "Blank")
	require.NoError(t, err)
	require.Len(t, doc.Tables(), 1)
	assert.Empty(t, doc.Tables()[0].Columns)
	assert.Empty(t, doc.Tables()[0].Rows)
}

func TestStore_Open_RaggedRowsAllowed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Ragged", "T.csv"), "A,B,C\n1\n1,2,3,4\n")

	doc, err := NewStore(root).Open(context.Background(), "Ragged")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}, {"1", "2", "3", "4"}}, doc.Table("T").Rows)
}

func TestStore_Open_NotFound(t *testing.T) {
	_, err := NewStore(t.TempDir()).Open(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Open_InvalidIDs(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, id := range []string{"", ".", "..", "../etc", "a/b", `a\b`, "x..y"} {
		t.Run(id, func(t *testing.T) {
			_, err := store.Open(context.Background(), id)
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestStore_Open_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Doc", "T.csv"), "A\n1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore(root).Open(ctx, "Doc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Zeta", "T.csv"), "A\n")
	writeFile(t, filepath.Join(root, "Alpha", "T.csv"), "A\n")
	writeFile(t, filepath.Join(root, ".hidden", "T.csv"), "A\n")
	writeFile(t, filepath.Join(root, "stray.csv"), "A\n")

	ids, err := NewStore(root).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zeta"}, ids)
}

func TestStore_List_MissingRoot(t *testing.T) {
	ids, err := NewStore(filepath.Join(t.TempDir(), "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
