package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsEmptyStore(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("DATABASE_URL", "memory://")
	t.Setenv("EMAIL_PROVIDER", "console")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-limit", "10"}, &out))
	assert.JSONEq(t, `[]`, out.String())
}

func TestRunReturnsStoreErrorsInsteadOfExiting(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	// no migration runs, so the leads table is missing and the query fails
	t.Setenv("DATABASE_URL", "sqlite:///"+t.TempDir()+"/empty.db")
	t.Setenv("EMAIL_PROVIDER", "console")

	var out bytes.Buffer
	err := run(context.Background(), nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch leads")
	assert.Empty(t, out.String())
}

func TestRunRejectsUnknownFlags(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), []string{"-since", "yesterday"}, &out))
}
