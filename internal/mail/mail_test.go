package mail

import (
	"context"
	"errors"
	"io"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestResetMessage(t *testing.T) {
	msg, err := ResetMessage("https://shop.example", "from@shop.example", "a@b.c", "abc123")
	require.NoError(t, err)

	assert.Equal(t, "a@b.c", msg.To)
	assert.Equal(t, "from@shop.example", msg.From)
	assert.Contains(t, msg.HTML, `href="https://shop.example/reset?resetToken=abc123"`)
	assert.Contains(t, msg.Text, "abc123")
}

func TestConsumerHandle(t *testing.T) {
	rec := &recordingMailer{}
	c := &Consumer{Deliver: rec, Log: quietLog()}
	ctx := context.Background()

	require.NoError(t, c.Handle(ctx, []byte(`{"to":"a@b.c","subject":"hi","text":"t","html":"<p>t</p>"}`)))
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "hi", rec.sent[0].Subject)

	assert.Error(t, c.Handle(ctx, []byte(`not json`)))
	assert.Error(t, c.Handle(ctx, []byte(`{"subject":"no recipient"}`)))

	rec.err = errors.New("smtp down")
	assert.Error(t, c.Handle(ctx, []byte(`{"to":"a@b.c"}`)))
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{Log: quietLog()}.Send(context.Background(), Message{To: "a@b.c"}))
}

func TestQueuePublisher_RedialsAfterFailure(t *testing.T) {
	p := NewQueuePublisher("amqp://broker.invalid", "mail", quietLog())
	dials := 0
	p.dial = func(string) (*amqp.Connection, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	err := p.Send(context.Background(), Message{To: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq dial")
	assert.Equal(t, 2, dials, "one retry per send")

	// Nothing broken is cached between sends
	require.Error(t, p.Send(context.Background(), Message{To: "a@b.c"}))
	assert.Equal(t, 4, dials)
	p.Close()
}

func TestQueuePublisher_CancelledContextSkipsRetry(t *testing.T) {
	p := NewQueuePublisher("amqp://broker.invalid", "mail", quietLog())
	dials := 0
	p.dial = func(string) (*amqp.Connection, error) {
		dials++
		return nil, errors.New("connection refused")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, p.Send(ctx, Message{To: "a@b.c"}))
	assert.Equal(t, 1, dials)
}
