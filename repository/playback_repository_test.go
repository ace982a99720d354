package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/duythanhle/live-beats/core/playback"
)

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantConflict bool
	}{
		{
			name:         "deadlock is retryable",
			err:          &mysql.MySQLError{Number: mysqlErrDeadlock, Message: "Deadlock found when trying to get lock"},
			wantConflict: true,
		},
		{
			name:         "lock wait timeout is retryable",
			err:          &mysql.MySQLError{Number: mysqlErrLockTimeout, Message: "Lock wait timeout exceeded"},
			wantConflict: true,
		},
		{
			name:         "wrapped deadlock still maps",
			err:          fmt.Errorf("failed to update track 1: %w", &mysql.MySQLError{Number: mysqlErrDeadlock}),
			wantConflict: true,
		},
		{
			name:         "context deadline is retryable",
			err:          context.DeadlineExceeded,
			wantConflict: true,
		},
		{
			name: "duplicate key is not retryable",
			err:  &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
		},
		{
			name: "plain error passes through",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapStoreError(tt.err)
			if tt.wantConflict {
				assert.ErrorIs(t, got, playback.ErrConflict)
			} else {
				assert.Same(t, tt.err, got, "non-retryable errors are returned unchanged")
				assert.NotErrorIs(t, got, playback.ErrConflict)
			}
		})
	}
}
