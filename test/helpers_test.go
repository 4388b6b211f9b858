//go:build integration_test

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/fitlife/internal/middleware"

	"github.com/stretchr/testify/require"
)

// do sends an authenticated JSON request and returns the status and raw body.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path string, body any) (int, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TokenHeader, testToken)

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path string, body any, expectedStatus int, out any) {
	status, respBytes := s.do(ctx, method, path, body)
	require.Equal(s.T(), expectedStatus, status, string(respBytes))
	if out != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, out))
	}
}

func (s *IntegrationTestSuite) countHistory(ctx context.Context, workoutExerciseIDs ...string) int {
	var count int
	err := s.dbPool.QueryRow(ctx,
		"SELECT count(*) FROM exercise_history WHERE user_id = $1 AND exercise_id::text = ANY($2::text[])",
		testUserID, workoutExerciseIDs,
	).Scan(&count)
	require.NoError(s.T(), err)
	return count
}
