package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-records/library"
)

func TestTruncateStringKeepsRunes(t *testing.T) {
	assert.Equal(t, "Dune", truncateString("Dune", 10))
	assert.Equal(t, "Cien años...", truncateString("Cien años de soledad", 12))
	assert.Equal(t, "日本", truncateString("日本語の本", 2))

	out := truncateString(strings.Repeat("é", 60), 40)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 40, utf8.RuneCountInString(out))
}

func TestDashboardListsUserTypesInOrder(t *testing.T) {
	var buf bytes.Buffer
	a := &app{out: &buf}
	st := &library.DashboardStats{
		ActiveUsersByType: map[string]int{"student": 4, "admin": 1, "staff": 2, "member": 9},
	}
	require.NoError(t, a.printDashboard(st))

	out := buf.String()
	admin := strings.Index(out, "Active admin users")
	member := strings.Index(out, "Active member users")
	staff := strings.Index(out, "Active staff users")
	student := strings.Index(out, "Active student users")
	require.True(t, admin >= 0 && member >= 0 && staff >= 0 && student >= 0, out)
	assert.True(t, admin < member && member < staff && staff < student, out)
}
