package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type recordingBot struct {
	to   telebot.Recipient
	what interface{}
	err  error
}

func (b *recordingBot) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	b.to, b.what = to, what
	return &telebot.Message{}, b.err
}

func TestTelegramSenderSend(t *testing.T) {
	bot := &recordingBot{}
	sender := &TelegramSender{bot: bot}

	require.NoError(t, sender.Send(context.Background(), 4242, "hello"))
	assert.Equal(t, "4242", bot.to.Recipient())
	assert.Equal(t, "hello", bot.what)

	bot.err = errors.New("chat not found")
	err := sender.Send(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramSenderHonoursCancelledContext(t *testing.T) {
	bot := &recordingBot{}
	sender := &TelegramSender{bot: bot}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sender.Send(ctx, 1, "x"), context.Canceled)
	assert.Nil(t, bot.to)
}

func TestNewTelegramSenderRequiresToken(t *testing.T) {
	_, err := NewTelegramSender("", time.Second)
	assert.ErrorIs(t, err, ErrNoToken)
}
