package app

import (
	"testing"

	"github.com/jaspindersingh83/s30mocks-backend/internal/config"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRecipients_MergesDatabaseAndConfig(t *testing.T) {
	tg := int64(1001)
	users := []*model.User{
		{ID: 1, Name: "Jaspinder", Email: "ops@s30mocks.test", Role: model.RoleAdmin, TelegramID: &tg},
	}
	cfg := &config.Config{
		AdminEmails:      []string{"OPS@s30mocks.test", "lead@s30mocks.test"},
		AdminTelegramIDs: []int64{1001, 2002},
	}

	got := adminRecipients(cfg, users)
	require.Len(t, got, 3)

	assert.Equal(t, "Jaspinder", got[0].Name)
	assert.Equal(t, int64(1001), got[0].TelegramID)
	assert.Equal(t, "lead@s30mocks.test", got[1].Email)
	assert.Equal(t, int64(2002), got[2].TelegramID)
	for _, r := range got {
		assert.Equal(t, model.RoleAdmin, r.Role)
	}
}

func TestAdminRecipients_Empty(t *testing.T) {
	assert.Empty(t, adminRecipients(&config.Config{}, nil))
}
