package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/domain/shared"
	syncdomain "github.com/channelbridge/backend/internal/domain/sync"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryProductRepository struct {
	products    map[uuid.UUID]*catalog.Product
	assignments map[uuid.UUID][]uuid.UUID
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{
		products:    make(map[uuid.UUID]*catalog.Product),
		assignments: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *memoryProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok || p.DeletedAt != nil {
		return nil, catalog.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memoryProductRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *memoryProductRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				clone := *p
				return &clone, nil
			}
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memoryProductRepository) ChannelIDs(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]uuid.UUID, error) {
	return r.assignments[productID], nil
}

func (r *memoryProductRepository) ListProductIDsInChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *memoryProductRepository) FindBatchWithPrices(ctx context.Context, channelID uuid.UUID, productIDs []uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}

func (r *memoryProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func (r *memoryProductRepository) AssignToChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	for _, id := range r.assignments[productID] {
		if id == channelID {
			return nil
		}
	}
	r.assignments[productID] = append(r.assignments[productID], channelID)
	return nil
}

func (r *memoryProductRepository) RemoveFromChannel(ctx context.Context, productID, channelID uuid.UUID) error {
	kept := r.assignments[productID][:0]
	for _, id := range r.assignments[productID] {
		if id != channelID {
			kept = append(kept, id)
		}
	}
	r.assignments[productID] = kept
	return nil
}

type memoryChannelRepository struct {
	channels map[uuid.UUID]*catalog.Channel
}

func newMemoryChannelRepository() *memoryChannelRepository {
	return &memoryChannelRepository{channels: make(map[uuid.UUID]*catalog.Channel)}
}

func (r *memoryChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	ch, ok := r.channels[id]
	if !ok {
		return nil, catalog.ErrChannelNotFound
	}
	clone := *ch
	return &clone, nil
}

func (r *memoryChannelRepository) FindByToken(ctx context.Context, token string) (*catalog.Channel, error) {
	for _, ch := range r.channels {
		if ch.Token == token {
			clone := *ch
			return &clone, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *memoryChannelRepository) FindDefault(ctx context.Context) (*catalog.Channel, error) {
	for _, ch := range r.channels {
		if ch.IsDefault {
			clone := *ch
			return &clone, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *memoryChannelRepository) List(ctx context.Context) ([]catalog.Channel, error) {
	var out []catalog.Channel
	for _, ch := range r.channels {
		out = append(out, *ch)
	}
	return out, nil
}

func (r *memoryChannelRepository) Save(ctx context.Context, channel *catalog.Channel) error {
	clone := *channel
	r.channels[channel.ID] = &clone
	return nil
}

type memoryIntegrationRepository struct {
	integrations map[uuid.UUID]*integration.Integration
}

func newMemoryIntegrationRepository() *memoryIntegrationRepository {
	return &memoryIntegrationRepository{integrations: make(map[uuid.UUID]*integration.Integration)}
}

func (r *memoryIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	i, ok := r.integrations[id]
	if !ok {
		return nil, integration.ErrIntegrationNotFound
	}
	return i, nil
}

func (r *memoryIntegrationRepository) List(ctx context.Context) ([]integration.Integration, error) {
	var out []integration.Integration
	for _, i := range r.integrations {
		out = append(out, *i)
	}
	return out, nil
}

func (r *memoryIntegrationRepository) Save(ctx context.Context, integ *integration.Integration) error {
	r.integrations[integ.ID] = integ
	return nil
}

func (r *memoryIntegrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.integrations[id]; !ok {
		return integration.ErrIntegrationNotFound
	}
	delete(r.integrations, id)
	return nil
}

type memoryMappingStore struct{}

func (s *memoryMappingStore) Get(ctx context.Context, productID, integrationID uuid.UUID) (*integration.ProductMapping, error) {
	return nil, integration.ErrMappingNotFound
}

func (s *memoryMappingStore) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	return nil
}

func (s *memoryMappingStore) Delete(ctx context.Context, productID, integrationID uuid.UUID) error {
	return nil
}

func (s *memoryMappingStore) DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error {
	return nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) lastEvent() shared.DomainEvent {
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type stubStorefrontClient struct {
	integration.StorefrontClient
	connectionErr error
}

func (c *stubStorefrontClient) Platform() integration.PlatformCode {
	return integration.PlatformCodeWordPress
}

func (c *stubStorefrontClient) TestConnection(ctx context.Context, integ *integration.Integration) error {
	return c.connectionErr
}

type stubClientRegistry struct {
	client integration.StorefrontClient
}

func (r *stubClientRegistry) GetClient(code integration.PlatformCode) (integration.StorefrontClient, error) {
	if r.client == nil || r.client.Platform() != code {
		return nil, integration.ErrPlatformNotRegistered
	}
	return r.client, nil
}

func (r *stubClientRegistry) ListClients() []integration.StorefrontClient {
	if r.client == nil {
		return nil
	}
	return []integration.StorefrontClient{r.client}
}

type memoryJobRepository struct {
	jobs map[uuid.UUID]*syncdomain.Job
}

func newMemoryJobRepository() *memoryJobRepository {
	return &memoryJobRepository{jobs: make(map[uuid.UUID]*syncdomain.Job)}
}

func (r *memoryJobRepository) Save(ctx context.Context, jobs ...*syncdomain.Job) error {
	for _, j := range jobs {
		r.jobs[j.ID] = j
	}
	return nil
}

func (r *memoryJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, syncdomain.ErrJobNotFound
	}
	return j, nil
}

func (r *memoryJobRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*syncdomain.Job, error) {
	return nil, nil
}

func (r *memoryJobRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryJobRepository) Update(ctx context.Context, job *syncdomain.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *memoryJobRepository) FindRecent(ctx context.Context, queueName string, page, pageSize int) ([]*syncdomain.Job, int64, error) {
	var out []*syncdomain.Job
	for _, j := range r.jobs {
		if j.QueueName == queueName {
			out = append(out, j)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryJobRepository) FindDead(ctx context.Context, page, pageSize int) ([]*syncdomain.Job, int64, error) {
	var out []*syncdomain.Job
	for _, j := range r.jobs {
		if j.IsDead() {
			out = append(out, j)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryJobRepository) DeleteFinishedOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryJobRepository) CountByStatus(ctx context.Context) (map[syncdomain.JobStatus]int64, error) {
	out := make(map[syncdomain.JobStatus]int64)
	for _, j := range r.jobs {
		out[j.Status]++
	}
	return out, nil
}

func newTestEngine(registrars ...interface{ RegisterRoutes(*gin.RouterGroup) }) *gin.Engine {
	engine := gin.New()
	api := engine.Group("/api/v1")
	for _, r := range registrars {
		r.RegisterRoutes(api)
	}
	return engine
}

func performRequest(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code, envelope.Error.Message
}
