package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "formsuggest.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)
	assert.Equal(t, path, kv.Path())

	s := NewSettings(kv)
	require.NoError(t, s.SetMainContent(ctx, "  I am Jane Doe, a data engineer.\n"))
	require.NoError(t, s.SetSuggestionsEnabled(ctx, false))
	require.NoError(t, s.Close())

	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	s = NewSettings(kv)
	defer s.Close()

	content, err := s.MainContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "I am Jane Doe, a data engineer.", content)

	enabled, err := s.SuggestionsEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestSQLiteStore_GetSet(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer kv.Close()

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	require.NoError(t, kv.Set(ctx, "k", "v2"))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}

func TestSettings_Defaults(t *testing.T) {
	for name, kv := range map[string]func(t *testing.T) KV{
		"memory": func(*testing.T) KV { return NewMemoryStore() },
		"sqlite": func(t *testing.T) KV {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "db"))
			require.NoError(t, err)
			return s
		},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewSettings(kv(t))
			defer s.Close()

			content, err := s.MainContent(ctx)
			require.NoError(t, err)
			assert.Empty(t, content)

			enabled, err := s.SuggestionsEnabled(ctx)
			require.NoError(t, err)
			assert.True(t, enabled)

			require.NoError(t, s.SetSuggestionsEnabled(ctx, false))
			enabled, _ = s.SuggestionsEnabled(ctx)
			assert.False(t, enabled)

			require.NoError(t, s.SetSuggestionsEnabled(ctx, true))
			enabled, _ = s.SuggestionsEnabled(ctx)
			assert.True(t, enabled)
		})
	}
}

func TestSettings_GarbageToggleDefaultsTrue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	require.NoError(t, kv.Set(ctx, KeySuggestionsEnabled, "maybe"))
	enabled, err := NewSettings(kv).SuggestionsEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (failingKV) Set(context.Context, string, string) error   { return errors.New("disk gone") }
func (failingKV) Close() error                                { return nil }

func TestSettings_WrapsErrors(t *testing.T) {
	ctx := context.Background()
	s := NewSettings(failingKV{})

	_, err := s.MainContent(ctx)
	assert.ErrorContains(t, err, "read main content: disk gone")

	enabled, err := s.SuggestionsEnabled(ctx)
	assert.Error(t, err)
	assert.True(t, enabled)

	assert.ErrorContains(t, s.SetMainContent(ctx, "x"), "write main content")
	assert.ErrorContains(t, s.SetSuggestionsEnabled(ctx, true), "write suggestionsEnabled")
}
