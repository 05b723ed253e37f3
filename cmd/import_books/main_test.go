package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-records/library"
)

func TestImportBooks(t *testing.T) {
	store, err := library.Open(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	csv := `ISBN,Title,Author,Year,Copies
111,Dune,Frank Herbert,1965,2
222,Emma,Jane Austen,,
111,Dune again,Someone,,
333,Bad Year,X,nineteen,1
,No ISBN,Y,,
`
	res, err := importBooks(store, strings.NewReader(csv), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, importResult{added: 2, duplicates: 1, failed: 2}, res)

	b, err := store.GetBookByISBN("111")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, 1965, b.Year)
	assert.Equal(t, 2, b.TotalCopies)

	b, err = store.GetBookByISBN("222")
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalCopies)
}

func TestImportBooksRequiresColumns(t *testing.T) {
	store, err := library.Open(filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = importBooks(store, strings.NewReader("isbn,author\n1,x\n"), zap.NewNop())
	assert.Error(t, err)
}

func TestTruncateStringKeepsRunes(t *testing.T) {
	assert.Equal(t, "Les Misé...", truncateString("Les Misérables", 11))
	assert.Equal(t, "Émile", truncateString("Émile", 5))
}
