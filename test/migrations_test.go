//go:build integration_test

package test

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestMigrationsApplied() {
	t := s.T()

	cfg := s.dbPool.Config().ConnConfig
	dsn := fmt.Sprintf("postgres://postgres@%s:%d/%s?sslmode=disable", cfg.Host, cfg.Port, testDBName)
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	var version int
	var dirty bool
	require.NoError(t, sqlDB.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty))
	assert.Positive(t, version)
	assert.False(t, dirty)

	for _, table := range []string{"workouts", "exercises", "exercise_history", "diets", "meals", "meal_status", "habits", "habit_status", "profiles", "weight_history"} {
		var exists bool
		err := sqlDB.QueryRow(
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
			table,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}
