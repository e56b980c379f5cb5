package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"communities/internal/config"
	"communities/internal/database"
	"communities/internal/models"
	"communities/internal/notifications"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPostCommunity_PublishesCreatedEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	srv, err := NewServerWithDeps(&config.Config{DefaultPageSize: 10}, db, rdb)
	require.NoError(t, err)
	app := srv.NewApp()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub := rdb.Subscribe(ctx, notifications.BroadcastChannel, notifications.CommunityChannel(1))
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/communities", models.CreateCommunityInput{Name: "gophers"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	channels := map[string]bool{}
	for i := 0; i < 2; i++ {
		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		channels[msg.Channel] = true

		var event struct {
			Type    string                 `json:"type"`
			Payload map[string]interface{} `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, EventCommunityCreated, event.Type)
		assert.Equal(t, "gophers", event.Payload["name"])
	}
	assert.True(t, channels[notifications.BroadcastChannel])
	assert.True(t, channels[notifications.CommunityChannel(1)])
}
