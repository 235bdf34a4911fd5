package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)
}

func TestMigrateCommand_SQLite(t *testing.T) {
	t.Setenv("CODECONVERT_JWT_SECRET", "0123456789abcdef-migrate")
	t.Setenv("CODECONVERT_DATABASE_URL", t.TempDir()+"/test.db")
	t.Setenv("CODECONVERT_LOG_LEVEL", "error")

	err := newApp().Run(context.Background(), []string{"codeconvert", "migrate"})
	require.NoError(t, err)

	// Applying again is a no-op.
	err = newApp().Run(context.Background(), []string{"codeconvert", "migrate"})
	require.NoError(t, err)
}

func TestMigrateCommand_MissingSecret(t *testing.T) {
	t.Setenv("CODECONVERT_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CODECONVERT_DATABASE_URL", t.TempDir()+"/test.db")

	err := newApp().Run(context.Background(), []string{"codeconvert", "migrate"})
	require.Error(t, err)
}
