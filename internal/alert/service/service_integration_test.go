//go:build integration

package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"lifeline/internal/alert/service"
	"lifeline/internal/alert/store"
	"lifeline/internal/platform/redis"
	id "lifeline/pkg/domain"
	"lifeline/pkg/testutil/containers"
)

// TestBroadcastFanOut verifies that a broadcast alert reaches a live
// subscriber on the pub/sub channel.
func TestBroadcastFanOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)

	client, err := redis.New(rc.Addr)
	require.NoError(t, err)
	defer client.Close()

	sub := rc.Client.Subscribe(ctx, service.Channel)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	svc := service.New(
		store.NewInMemory(),
		client,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
	)

	alert, err := svc.Broadcast(ctx, id.UserID(uuid.New()), true, service.BroadcastInput{
		Title:     "O+ shortage",
		Message:   "stocks below two days",
		Severity:  "critical",
		BloodType: "O+",
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		var payload map[string]string
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
		require.Equal(t, alert.ID.String(), payload["id"])
		require.Equal(t, "critical", payload["severity"])
		require.Equal(t, "O+", payload["blood_type"])
	case <-time.After(5 * time.Second):
		t.Fatal("no alert received on pub/sub channel")
	}
}
