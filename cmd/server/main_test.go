package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandForArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args serves", nil, cmdServe},
		{"explicit serve", []string{"serve"}, cmdServe},
		{"migrate", []string{"migrate"}, cmdMigrate},
		{"migrate status", []string{"migrate:status"}, cmdMigrateStatus},
		{"migrate rollback", []string{"migrate:rollback"}, cmdMigrateRollback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := commandForArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandForArgs_Rejected(t *testing.T) {
	_, err := commandForArgs([]string{"frobnicate"})
	assert.Error(t, err)

	_, err = commandForArgs([]string{"migrate", "extra"})
	assert.Error(t, err)
}
