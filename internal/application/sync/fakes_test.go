package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/domain/shared"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

// enqueuedJob records one Enqueue call made against the fake queue
type enqueuedJob struct {
	queueName  string
	payload    []byte
	maxRetries int
}

type fakeJobQueue struct {
	handlers map[string]syncdomain.HandlerFunc
	jobs     []enqueuedJob
}

func newFakeJobQueue() *fakeJobQueue {
	return &fakeJobQueue{handlers: make(map[string]syncdomain.HandlerFunc)}
}

func (q *fakeJobQueue) Register(queueName string, handler syncdomain.HandlerFunc) {
	q.handlers[queueName] = handler
}

func (q *fakeJobQueue) Enqueue(ctx context.Context, queueName string, payload any, opts ...syncdomain.EnqueueOption) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}
	probe := &syncdomain.Job{}
	for _, opt := range opts {
		opt(probe)
	}
	q.jobs = append(q.jobs, enqueuedJob{queueName: queueName, payload: data, maxRetries: probe.MaxRetries})
	return uuid.New(), nil
}

func (q *fakeJobQueue) Start(ctx context.Context) error { return nil }
func (q *fakeJobQueue) Stop(ctx context.Context) error  { return nil }

type fakeProductRepository struct {
	products  map[uuid.UUID]*catalog.Product
	inChannel map[uuid.UUID][]uuid.UUID
}

func newFakeProductRepository(products ...*catalog.Product) *fakeProductRepository {
	r := &fakeProductRepository{
		products:  make(map[uuid.UUID]*catalog.Product),
		inChannel: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok || p.IsDeleted() {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.products {
		if _, ok := p.VariantByID(variantID); ok {
			return p, nil
		}
	}
	return nil, catalog.ErrVariantNotFound
}

func (r *fakeProductRepository) ChannelIDs(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]uuid.UUID, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	if !includeDeleted && p.IsDeleted() {
		return nil, catalog.ErrProductNotFound
	}
	return p.ChannelIDs, nil
}

func (r *fakeProductRepository) ListProductIDsInChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	return r.inChannel[channelID], nil
}

func (r *fakeProductRepository) FindBatchWithPrices(ctx context.Context, channelID uuid.UUID, productIDs []uuid.UUID) ([]catalog.Product, error) {
	var batch []catalog.Product
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			batch = append(batch, *p)
		}
	}
	return batch, nil
}

func (r *fakeProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepository) AssignToChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	return nil
}

func (r *fakeProductRepository) RemoveFromChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	return nil
}

type fakeChannelRepository struct {
	channels map[uuid.UUID]*catalog.Channel
}

func newFakeChannelRepository(channels ...*catalog.Channel) *fakeChannelRepository {
	r := &fakeChannelRepository{channels: make(map[uuid.UUID]*catalog.Channel)}
	for _, c := range channels {
		r.channels[c.ID] = c
	}
	return r
}

func (r *fakeChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	c, ok := r.channels[id]
	if !ok {
		return nil, catalog.ErrChannelNotFound
	}
	return c, nil
}

func (r *fakeChannelRepository) FindByToken(ctx context.Context, token string) (*catalog.Channel, error) {
	for _, c := range r.channels {
		if c.Token == token {
			return c, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *fakeChannelRepository) FindDefault(ctx context.Context) (*catalog.Channel, error) {
	for _, c := range r.channels {
		if c.IsDefault {
			return c, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *fakeChannelRepository) List(ctx context.Context) ([]catalog.Channel, error) {
	var out []catalog.Channel
	for _, c := range r.channels {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeChannelRepository) Save(ctx context.Context, channel *catalog.Channel) error {
	r.channels[channel.ID] = channel
	return nil
}

type fakeIntegrationRepository struct {
	integrations map[uuid.UUID]*integration.Integration
}

func newFakeIntegrationRepository(integrations ...*integration.Integration) *fakeIntegrationRepository {
	r := &fakeIntegrationRepository{integrations: make(map[uuid.UUID]*integration.Integration)}
	for _, i := range integrations {
		r.integrations[i.ID] = i
	}
	return r
}

func (r *fakeIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	i, ok := r.integrations[id]
	if !ok {
		return nil, integration.ErrIntegrationNotFound
	}
	return i, nil
}

func (r *fakeIntegrationRepository) List(ctx context.Context) ([]integration.Integration, error) {
	var out []integration.Integration
	for _, i := range r.integrations {
		out = append(out, *i)
	}
	return out, nil
}

func (r *fakeIntegrationRepository) Save(ctx context.Context, integ *integration.Integration) error {
	r.integrations[integ.ID] = integ
	return nil
}

func (r *fakeIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.integrations, id)
	return nil
}

type mappingKey struct {
	productID     uuid.UUID
	integrationID uuid.UUID
}

type fakeMappingStore struct {
	mappings map[mappingKey]*integration.ProductMapping
}

func newFakeMappingStore(mappings ...*integration.ProductMapping) *fakeMappingStore {
	s := &fakeMappingStore{mappings: make(map[mappingKey]*integration.ProductMapping)}
	for _, m := range mappings {
		s.mappings[mappingKey{m.ProductID, m.IntegrationID}] = m
	}
	return s
}

func (s *fakeMappingStore) Get(ctx context.Context, productID, integrationID uuid.UUID) (*integration.ProductMapping, error) {
	m, ok := s.mappings[mappingKey{productID, integrationID}]
	if !ok {
		return nil, integration.ErrMappingNotFound
	}
	return m, nil
}

func (s *fakeMappingStore) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	s.mappings[mappingKey{mapping.ProductID, mapping.IntegrationID}] = mapping
	return nil
}

func (s *fakeMappingStore) Delete(ctx context.Context, productID, integrationID uuid.UUID) error {
	delete(s.mappings, mappingKey{productID, integrationID})
	return nil
}

func (s *fakeMappingStore) DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error {
	for key := range s.mappings {
		if key.integrationID == integrationID {
			delete(s.mappings, key)
		}
	}
	return nil
}

// fakeStorefrontClient is an in-memory StorefrontClient with call recording
type fakeStorefrontClient struct {
	remote     map[string]*integration.RemoteProduct
	bySKU      map[string]*integration.RemoteProduct
	variations map[string][]integration.RemoteVariation
	nextID     int

	createdProducts   []*integration.ProductPayload
	updatedProducts   []string
	deletedProducts   []string
	createdVariations int
	updatedVariations int

	listVariationsErr error
}

func newFakeStorefrontClient() *fakeStorefrontClient {
	return &fakeStorefrontClient{
		remote:     make(map[string]*integration.RemoteProduct),
		bySKU:      make(map[string]*integration.RemoteProduct),
		variations: make(map[string][]integration.RemoteVariation),
		nextID:     100,
	}
}

func (c *fakeStorefrontClient) addRemote(p *integration.RemoteProduct) {
	c.remote[p.ID] = p
	if p.SKU != "" {
		c.bySKU[p.SKU] = p
	}
}

func (c *fakeStorefrontClient) Platform() integration.PlatformCode {
	return integration.PlatformCodeWordPress
}

func (c *fakeStorefrontClient) TestConnection(ctx context.Context, integ *integration.Integration) error {
	return nil
}

func (c *fakeStorefrontClient) CreateProduct(ctx context.Context, integ *integration.Integration, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	c.nextID++
	c.createdProducts = append(c.createdProducts, payload)
	remote := &integration.RemoteProduct{
		ID:   strconv.Itoa(c.nextID),
		SKU:  payload.SKU,
		Type: payload.Type,
	}
	c.addRemote(remote)
	return remote, nil
}

func (c *fakeStorefrontClient) UpdateProduct(ctx context.Context, integ *integration.Integration, externalID string, payload *integration.ProductPayload) (*integration.RemoteProduct, error) {
	remote, ok := c.remote[externalID]
	if !ok {
		return nil, fmt.Errorf("update %s: %w", externalID, integration.ErrRemoteProductNotFound)
	}
	c.updatedProducts = append(c.updatedProducts, externalID)
	remote.Type = payload.Type
	return remote, nil
}

func (c *fakeStorefrontClient) DeleteProduct(ctx context.Context, integ *integration.Integration, externalID string) error {
	c.deletedProducts = append(c.deletedProducts, externalID)
	delete(c.remote, externalID)
	return nil
}

func (c *fakeStorefrontClient) GetProduct(ctx context.Context, integ *integration.Integration, externalID string) (*integration.RemoteProduct, error) {
	remote, ok := c.remote[externalID]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", externalID, integration.ErrRemoteProductNotFound)
	}
	return remote, nil
}

func (c *fakeStorefrontClient) FindProductBySKU(ctx context.Context, integ *integration.Integration, sku string) (*integration.RemoteProduct, error) {
	return c.bySKU[sku], nil
}

func (c *fakeStorefrontClient) CreateVariation(ctx context.Context, integ *integration.Integration, externalProductID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	c.nextID++
	c.createdVariations++
	variation := integration.RemoteVariation{
		ID:       strconv.Itoa(c.nextID),
		SKU:      payload.SKU,
		MetaData: payload.MetaData,
	}
	c.variations[externalProductID] = append(c.variations[externalProductID], variation)
	return &variation, nil
}

func (c *fakeStorefrontClient) UpdateVariation(ctx context.Context, integ *integration.Integration, externalProductID, variationID string, payload *integration.VariationPayload) (*integration.RemoteVariation, error) {
	c.updatedVariations++
	return &integration.RemoteVariation{ID: variationID, SKU: payload.SKU, MetaData: payload.MetaData}, nil
}

func (c *fakeStorefrontClient) ListVariations(ctx context.Context, integ *integration.Integration, externalProductID string) ([]integration.RemoteVariation, error) {
	if c.listVariationsErr != nil {
		return nil, c.listVariationsErr
	}
	return c.variations[externalProductID], nil
}

type fakeClientRegistry struct {
	client integration.StorefrontClient
}

func (r *fakeClientRegistry) GetClient(code integration.PlatformCode) (integration.StorefrontClient, error) {
	if r.client == nil {
		return nil, integration.ErrPlatformNotRegistered
	}
	return r.client, nil
}

func (r *fakeClientRegistry) ListClients() []integration.StorefrontClient {
	if r.client == nil {
		return nil
	}
	return []integration.StorefrontClient{r.client}
}

type fakeEventPublisher struct {
	events []shared.DomainEvent
}

func (p *fakeEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type fakePriceRepository struct {
	rows map[uuid.UUID]catalog.VariantPrice

	// failVariants makes UpsertBatch fail for any batch containing one of
	// these variant ids
	failVariants map[uuid.UUID]error
}

func newFakePriceRepository() *fakePriceRepository {
	return &fakePriceRepository{
		rows:         make(map[uuid.UUID]catalog.VariantPrice),
		failVariants: make(map[uuid.UUID]error),
	}
}

func (r *fakePriceRepository) FindByVariantAndChannel(ctx context.Context, variantID, channelID uuid.UUID) (*catalog.VariantPrice, error) {
	for _, row := range r.rows {
		if row.VariantID == variantID && row.ChannelID == channelID {
			copied := row
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePriceRepository) UpsertBatch(ctx context.Context, prices []catalog.VariantPrice) error {
	for _, p := range prices {
		if err, ok := r.failVariants[p.VariantID]; ok {
			return err
		}
	}
	for _, p := range prices {
		r.rows[p.ID] = p
	}
	return nil
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func testJobContext(queueName string, payload any, progress func(int)) *syncdomain.JobContext {
	return syncdomain.NewJobContext(&syncdomain.Job{
		ID:        uuid.New(),
		QueueName: queueName,
		Payload:   mustJSON(payload),
	}, progress)
}
