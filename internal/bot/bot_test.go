package bot

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j0lvera/chimein/internal/reply"
)

type mockSender struct {
	err   error
	calls int
}

func (m *mockSender) SendMessage(_ context.Context, _ *tbot.SendMessageParams) (*models.Message, error) {
	m.calls++
	return nil, m.err
}

type mockSource struct{}

func (mockSource) FetchRandomText(context.Context) (string, bool) {
	return "hello", true
}

func groupUpdate(chatID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: chatID, Type: models.ChatTypeGroup},
		},
	}
}

func TestDispatch_LogsSendFailure(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := reply.NewHandler(mockSource{}, reply.NewGate(1), zerolog.Nop())
	sender := &mockSender{err: errors.New("bad request: chat not found")}

	dispatch(context.Background(), sender, groupUpdate(-77), handler, &log)

	assert.Equal(t, 1, sender.calls)
	assert.Contains(t, buf.String(), "unable to send reply")
	assert.Contains(t, buf.String(), `"chat_id":-77`)
	assert.Contains(t, buf.String(), "chat not found")
}

func TestDispatch_SilentPaths(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	handler := reply.NewHandler(mockSource{}, reply.NewGate(0), zerolog.Nop())
	sender := &mockSender{}

	dispatch(context.Background(), sender, groupUpdate(-77), handler, &log)
	dispatch(context.Background(), sender, &models.Update{}, handler, &log)

	assert.Zero(t, sender.calls)
	assert.Empty(t, buf.String())
}

func TestLoop_StopWaitsForRun(t *testing.T) {
	var finished atomic.Bool

	l := startLoop(func(ctx context.Context) {
		<-ctx.Done()
		// a handler still draining after cancellation
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	})

	require.NoError(t, l.stop(context.Background()))
	assert.True(t, finished.Load())
}

func TestLoop_StopGivesUpOnDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	l := startLoop(func(context.Context) {
		<-release
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.stop(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
