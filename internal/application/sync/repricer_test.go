package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/catalog"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

type repricerFixture struct {
	repricer  *Repricer
	products  *fakeProductRepository
	channels  *fakeChannelRepository
	prices    *fakePriceRepository
	publisher *fakeEventPublisher
	queue     *fakeJobQueue
}

func newRepricerFixture(batchSize int) *repricerFixture {
	f := &repricerFixture{
		products:  newFakeProductRepository(),
		channels:  newFakeChannelRepository(),
		prices:    newFakePriceRepository(),
		publisher: &fakeEventPublisher{},
		queue:     newFakeJobQueue(),
	}
	f.repricer = NewRepricer(f.products, f.channels, f.prices, f.publisher, f.queue, batchSize, zap.NewNop())
	return f
}

// seedChannel creates a channel with the given markup percentage
func (f *repricerFixture) seedChannel(markup *float64) *catalog.Channel {
	channel := &catalog.Channel{
		ID:              uuid.New(),
		Code:            "webshop",
		DefaultCurrency: "EUR",
		DefaultLanguage: "en",
		Markup:          markup,
	}
	f.channels.Save(context.Background(), channel)
	return channel
}

// seedProduct creates one product with a single variant at the given base
// price and assigns it to the channel.
func (f *repricerFixture) seedProduct(channel *catalog.Channel, basePrice int64) *catalog.Product {
	variant := simpleVariant("SKU", basePrice)
	product := &catalog.Product{
		ID:         uuid.New(),
		Name:       "Widget",
		Slug:       "widget",
		Enabled:    true,
		Variants:   []catalog.ProductVariant{variant},
		ChannelIDs: []uuid.UUID{channel.ID},
	}
	f.products.Save(context.Background(), product)
	f.products.inChannel[channel.ID] = append(f.products.inChannel[channel.ID], product.ID)
	return product
}

func (f *repricerFixture) runJob(t *testing.T, channelID uuid.UUID, progress func(int)) error {
	t.Helper()
	handler, ok := f.queue.handlers[syncdomain.QueueChannelReprice]
	require.True(t, ok, "repricer must register its job handler")
	payload := syncdomain.ChannelRepricePayload{ChannelID: channelID}
	return handler(context.Background(), testJobContext(syncdomain.QueueChannelReprice, payload, progress))
}

func (f *repricerFixture) storedPrices() []catalog.VariantPrice {
	var rows []catalog.VariantPrice
	for _, row := range f.prices.rows {
		rows = append(rows, row)
	}
	return rows
}

func markup(pct float64) *float64 { return &pct }

func TestRepricer_EnqueuesOnMarkupChange(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(15))

	event := catalog.NewChannelUpdatedEvent(channel.ID, []string{catalog.ChannelFieldMarkup}, 15)
	require.NoError(t, f.repricer.Handle(context.Background(), event))

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, syncdomain.QueueChannelReprice, f.queue.jobs[0].queueName)
	assert.Equal(t, syncdomain.ChannelRepriceMaxRetries, f.queue.jobs[0].maxRetries)
}

func TestRepricer_IgnoresUpdatesWithoutMarkupField(t *testing.T) {
	f := newRepricerFixture(250)
	// The stored markup being non-zero does not matter; only the presence of
	// the markup key in the update payload does.
	channel := f.seedChannel(markup(15))

	event := catalog.NewChannelUpdatedEvent(channel.ID, []string{catalog.ChannelFieldIntegrationID}, 0)
	require.NoError(t, f.repricer.Handle(context.Background(), event))

	assert.Empty(t, f.queue.jobs)
}

func TestRepricer_AppliesMarkup(t *testing.T) {
	cases := []struct {
		name     string
		markup   float64
		base     int64
		expected int64
	}{
		{"zero markup keeps base price", 0, 999, 999},
		{"ten percent rounds half up", 10, 999, 1099},
		{"thirty three percent", 33, 999, 1329},
		{"round half up at boundary", 50, 1, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRepricerFixture(250)
			channel := f.seedChannel(markup(tc.markup))
			product := f.seedProduct(channel, tc.base)

			require.NoError(t, f.runJob(t, channel.ID, nil))

			rows := f.storedPrices()
			require.Len(t, rows, 1)
			assert.Equal(t, tc.expected, rows[0].Price)
			assert.Equal(t, product.Variants[0].ID, rows[0].VariantID)
			assert.Equal(t, channel.ID, rows[0].ChannelID)
			assert.Equal(t, "EUR", rows[0].CurrencyCode)
		})
	}
}

func TestRepricer_ReusesExistingPriceRow(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(33))
	product := f.seedProduct(channel, 999)
	variant := &product.Variants[0]

	existing := catalog.VariantPrice{
		ID:           uuid.New(),
		VariantID:    variant.ID,
		ChannelID:    channel.ID,
		CurrencyCode: "EUR",
		Price:        999,
	}
	variant.Prices = []catalog.VariantPrice{existing}
	require.NoError(t, f.prices.UpsertBatch(context.Background(), []catalog.VariantPrice{existing}))

	require.NoError(t, f.runJob(t, channel.ID, nil))

	rows := f.storedPrices()
	require.Len(t, rows, 1)
	assert.Equal(t, existing.ID, rows[0].ID)
	assert.Equal(t, int64(1329), rows[0].Price)
}

func TestRepricer_Idempotent(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(33))
	product := f.seedProduct(channel, 999)
	variant := &product.Variants[0]

	require.NoError(t, f.runJob(t, channel.ID, nil))
	rows := f.storedPrices()
	require.Len(t, rows, 1)

	// The variant now carries the channel row, as a reload would show
	variant.Prices = []catalog.VariantPrice{rows[0]}

	require.NoError(t, f.runJob(t, channel.ID, nil))
	again := f.storedPrices()
	require.Len(t, again, 1)
	assert.Equal(t, rows[0].ID, again[0].ID)
	assert.Equal(t, int64(1329), again[0].Price)
}

func TestRepricer_UsesStoredMarkupNotRequested(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(10))
	f.seedProduct(channel, 1000)

	handler := f.queue.handlers[syncdomain.QueueChannelReprice]
	payload := syncdomain.ChannelRepricePayload{ChannelID: channel.ID, RequestedMarkup: 99}
	require.NoError(t, handler(context.Background(),
		testJobContext(syncdomain.QueueChannelReprice, payload, nil)))

	rows := f.storedPrices()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1100), rows[0].Price)
}

func TestRepricer_PublishesProductUpdates(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(10))
	p1 := f.seedProduct(channel, 1000)
	p2 := f.seedProduct(channel, 2000)

	require.NoError(t, f.runJob(t, channel.ID, nil))

	require.Len(t, f.publisher.events, 2)
	seen := make(map[uuid.UUID]bool)
	for _, e := range f.publisher.events {
		event, ok := e.(*catalog.ProductUpdatedEvent)
		require.True(t, ok)
		seen[event.ProductID] = true
	}
	assert.True(t, seen[p1.ID])
	assert.True(t, seen[p2.ID])
}

func TestRepricer_PartialFailureDoesNotAbortSiblings(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(10))
	broken := f.seedProduct(channel, 1000)
	healthy := f.seedProduct(channel, 2000)
	f.prices.failVariants[broken.Variants[0].ID] = errors.New("row too wide")

	require.NoError(t, f.runJob(t, channel.ID, nil))

	rows := f.storedPrices()
	require.Len(t, rows, 1)
	assert.Equal(t, healthy.Variants[0].ID, rows[0].VariantID)
	assert.Equal(t, int64(2200), rows[0].Price)

	// Only the successfully persisted product is republished
	require.Len(t, f.publisher.events, 1)
	event, ok := f.publisher.events[0].(*catalog.ProductUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, healthy.ID, event.ProductID)
}

func TestRepricer_ReportsProgressPerBatch(t *testing.T) {
	f := newRepricerFixture(2)
	channel := f.seedChannel(markup(10))
	for i := 0; i < 3; i++ {
		f.seedProduct(channel, 1000)
	}

	var progress []int
	require.NoError(t, f.runJob(t, channel.ID, func(pct int) {
		progress = append(progress, pct)
	}))

	assert.Equal(t, []int{50, 100}, progress)
	assert.Len(t, f.storedPrices(), 3)
}

func TestRepricer_EmptyChannelCompletes(t *testing.T) {
	f := newRepricerFixture(250)
	channel := f.seedChannel(markup(10))

	var progress []int
	require.NoError(t, f.runJob(t, channel.ID, func(pct int) {
		progress = append(progress, pct)
	}))

	assert.Empty(t, progress)
	assert.Empty(t, f.storedPrices())
}

func TestRepricer_ChannelGoneIsBenign(t *testing.T) {
	f := newRepricerFixture(250)
	f.seedChannel(markup(10))

	require.NoError(t, f.runJob(t, uuid.New(), nil))
	assert.Empty(t, f.storedPrices())
}
