package driver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		engine string
		want   Driver
	}{
		{"django.db.backends.sqlite3", SQLite},
		{"django.db.backends.mysql", MySQL},
		{"django.db.backends.postgresql", Postgres},
		{"django.contrib.gis.db.backends.postgresql", Postgres},
		{"mysql", MySQL},
		{"  sqlite3  ", SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			got, err := Detect(tt.engine)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Errors(t *testing.T) {
	t.Run("empty engine", func(t *testing.T) {
		_, err := Detect("")
		assert.ErrorIs(t, err, ErrEngineNotConfigured)
	})

	t.Run("unknown engine", func(t *testing.T) {
		got, err := Detect("django.db.backends.oracle")
		assert.Equal(t, Unknown, got)
		assert.ErrorIs(t, err, ErrUnsupportedDriver)

		var unsupported *UnsupportedError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "django.db.backends.oracle", unsupported.Engine)
		assert.Equal(t, "error reading database driver: django.db.backends.oracle", err.Error())
	})

	t.Run("postgres without ql suffix", func(t *testing.T) {
		_, err := Detect("postgres")
		assert.ErrorIs(t, err, ErrUnsupportedDriver)
	})
}

func TestDriver_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(map[string]any{"driver": Postgres})
	require.NoError(t, err)
	assert.JSONEq(t, `{"driver":"POSTGRES"}`, string(data))

	_, err = json.Marshal(Unknown)
	assert.Error(t, err)
}

func TestDriver_Transactional(t *testing.T) {
	assert.True(t, SQLite.Transactional())
	assert.True(t, Postgres.Transactional())
	assert.False(t, MySQL.Transactional())
}
