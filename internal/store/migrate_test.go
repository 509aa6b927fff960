// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"errors"
	"regexp"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/propsuite/pkg/errutil"
)

type mockMigrate struct {
	upErr, downErr, stepsErr, forceErr error
	version                            uint
	dirty                              bool
	versionErr                         error
	closeSourceErr, closeDBErr         error
	steps                              []int
	forced                             []int
}

func (m *mockMigrate) Up() error   { return m.upErr }
func (m *mockMigrate) Down() error { return m.downErr }
func (m *mockMigrate) Steps(n int) error {
	m.steps = append(m.steps, n)
	return m.stepsErr
}
func (m *mockMigrate) Version() (uint, bool, error) { return m.version, m.dirty, m.versionErr }
func (m *mockMigrate) Force(v int) error {
	m.forced = append(m.forced, v)
	return m.forceErr
}
func (m *mockMigrate) Close() (error, error) { return m.closeSourceErr, m.closeDBErr }

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/props":   "pgx5://u:p@db:5432/props",
		"postgresql://db/props?x=1":      "pgx5://db/props?x=1",
		"pgx5://db/props":                "pgx5://db/props",
		"badscheme://localhost:5432/tst": "badscheme://localhost:5432/tst",
	}
	for in, want := range tests {
		assert.Equal(t, want, MigrateURL(in), in)
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/testdb")
	errutil.AssertErrorCode(t, err, CodeMigrationInit)
}

func TestMigrator_Operations(t *testing.T) {
	boom := errors.New("database locked")
	tests := []struct {
		name    string
		mock    *mockMigrate
		run     func(*Migrator) error
		wantErr bool
	}{
		{"up", &mockMigrate{}, (*Migrator).Up, false},
		{"up no change", &mockMigrate{upErr: migrate.ErrNoChange}, (*Migrator).Up, false},
		{"up error", &mockMigrate{upErr: boom}, (*Migrator).Up, true},
		{"down no change", &mockMigrate{downErr: migrate.ErrNoChange}, (*Migrator).Down, false},
		{"down error", &mockMigrate{downErr: boom}, (*Migrator).Down, true},
		{"steps error", &mockMigrate{stepsErr: boom}, func(m *Migrator) error { return m.Steps(-1) }, true},
		{"force error", &mockMigrate{forceErr: boom}, func(m *Migrator) error { return m.Force(1) }, true},
		{"close source error", &mockMigrate{closeSourceErr: boom}, (*Migrator).Close, true},
		{"close both errors", &mockMigrate{closeSourceErr: boom, closeDBErr: boom}, (*Migrator).Close, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.mock})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, CodeMigrationFailed)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestMigrator_StepsAndForcePassThrough(t *testing.T) {
	mock := &mockMigrate{}
	m := &Migrator{m: mock}

	require.NoError(t, m.Steps(2))
	require.NoError(t, m.Force(1))
	assert.Equal(t, []int{2}, mock.steps)
	assert.Equal(t, []int{1}, mock.forced)

	errutil.AssertErrorCode(t, m.Force(-1), CodeInvalidVersion)
	assert.Equal(t, []int{1}, mock.forced, "negative versions never reach the driver")
}

func TestMigrator_Version(t *testing.T) {
	v, dirty, err := (&Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}).Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	v, dirty, err = (&Migrator{m: &mockMigrate{version: 1, dirty: true}}).Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.True(t, dirty)

	_, _, err = (&Migrator{m: &mockMigrate{versionErr: errors.New("no connection")}}).Version()
	errutil.AssertErrorCode(t, err, CodeMigrationVersion)
}

func TestMigrator_Status(t *testing.T) {
	st, err := (&Migrator{m: &mockMigrate{version: 1}}).Status()
	require.NoError(t, err)
	assert.Equal(t, Status{Version: 1, Applied: []uint{1}, Pending: []uint{2}}, st)

	st, err = (&Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}).Status()
	require.NoError(t, err)
	assert.Empty(t, st.Applied)
	assert.Equal(t, []uint{1, 2}, st.Pending)
}

func TestMigrationsFS(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	ups, downs := 0, 0
	for _, entry := range entries {
		assert.Regexp(t, pattern, entry.Name())
		switch {
		case regexp.MustCompile(`\.up\.sql$`).MatchString(entry.Name()):
			ups++
		default:
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every migration has a down file")

	versions, err := MigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, versions)
	assert.Equal(t, "000001_property_snapshots", MigrationName(1))
	assert.Empty(t, MigrationName(99))
}
