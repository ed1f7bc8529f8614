package consumer

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type fakeEnricher struct {
	postID string
	links  []string
	err    error
}

func (f *fakeEnricher) EnrichRetailLinks(_ context.Context, postID string, rawLinks []string) error {
	f.postID = postID
	f.links = rawLinks
	return f.err
}

type fakeAcker struct {
	acked  bool
	nacked bool
}

func (f *fakeAcker) Ack(uint64, bool) error        { f.acked = true; return nil }
func (f *fakeAcker) Nack(uint64, bool, bool) error { f.nacked = true; return nil }
func (f *fakeAcker) Reject(uint64, bool) error     { return nil }

func testConsumer(enricher Enricher) *RabbitMQ {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return &RabbitMQ{enricher: enricher, logger: logger}
}

func TestHandle_ValidRequest(t *testing.T) {
	enricher := &fakeEnricher{}
	acker := &fakeAcker{}

	c := testConsumer(enricher)
	c.handle(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         []byte(`{"post_id": "post-1", "links": ["https://chicos.com/p/1.html"]}`),
	})

	assert.Equal(t, "post-1", enricher.postID)
	assert.Equal(t, []string{"https://chicos.com/p/1.html"}, enricher.links)
	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
}

func TestHandle_MalformedBody(t *testing.T) {
	enricher := &fakeEnricher{}
	acker := &fakeAcker{}

	c := testConsumer(enricher)
	c.handle(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         []byte(`{`),
	})

	assert.Empty(t, enricher.postID)
	assert.True(t, acker.nacked)
}

func TestHandle_EnrichmentFailure(t *testing.T) {
	enricher := &fakeEnricher{err: errors.New("catalog down")}
	acker := &fakeAcker{}

	c := testConsumer(enricher)
	c.handle(context.Background(), amqp.Delivery{
		Acknowledger: acker,
		Body:         []byte(`{"post_id": "post-2", "links": []}`),
	})

	assert.True(t, acker.nacked)
	assert.False(t, acker.acked)
}
