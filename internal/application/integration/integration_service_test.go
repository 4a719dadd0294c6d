package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/domain/integration"
)

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

type memoryMappingStore struct {
	byIntegration map[uuid.UUID]int
}

func newMemoryMappingStore() *memoryMappingStore {
	return &memoryMappingStore{byIntegration: make(map[uuid.UUID]int)}
}

func (s *memoryMappingStore) Get(ctx context.Context, productID, integrationID uuid.UUID) (*integration.ProductMapping, error) {
	return nil, integration.ErrMappingNotFound
}

func (s *memoryMappingStore) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	s.byIntegration[mapping.IntegrationID]++
	return nil
}

func (s *memoryMappingStore) Delete(ctx context.Context, productID, integrationID uuid.UUID) error {
	return nil
}

func (s *memoryMappingStore) DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error {
	delete(s.byIntegration, integrationID)
	return nil
}

type stubClient struct {
	integration.StorefrontClient
	platform      integration.PlatformCode
	connectionErr error
	tested        int
}

func (c *stubClient) Platform() integration.PlatformCode { return c.platform }

func (c *stubClient) TestConnection(ctx context.Context, integ *integration.Integration) error {
	c.tested++
	return c.connectionErr
}

type stubRegistry struct {
	clients map[integration.PlatformCode]integration.StorefrontClient
}

func (r *stubRegistry) GetClient(code integration.PlatformCode) (integration.StorefrontClient, error) {
	c, ok := r.clients[code]
	if !ok {
		return nil, integration.ErrPlatformNotRegistered
	}
	return c, nil
}

func (r *stubRegistry) ListClients() []integration.StorefrontClient {
	var out []integration.StorefrontClient
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

type serviceFixture struct {
	service  *IntegrationService
	repo     *memoryIntegrationRepository
	mappings *memoryMappingStore
	client   *stubClient
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:     newMemoryIntegrationRepository(),
		mappings: newMemoryMappingStore(),
		client:   &stubClient{platform: integration.PlatformCodeWordPress},
	}
	registry := &stubRegistry{clients: map[integration.PlatformCode]integration.StorefrontClient{
		integration.PlatformCodeWordPress: f.client,
	}}
	f.service = NewIntegrationService(f.repo, f.mappings, registry, zap.NewNop())
	return f
}

func TestIntegrationService_Create(t *testing.T) {
	f := newServiceFixture()

	integ, err := f.service.Create(context.Background(), CreateIntegrationInput{
		Name:     "My Shop",
		Platform: integration.PlatformCodeWordPress,
		Config:   map[string]string{"site_url": "https://shop.example.org"},
	})
	require.NoError(t, err)
	assert.True(t, integ.Enabled)
	assert.True(t, integ.SyncActive())

	_, err = f.service.Create(context.Background(), CreateIntegrationInput{
		Name:     "Bad",
		Platform: "ebay",
	})
	assert.ErrorIs(t, err, integration.ErrInvalidPlatformCode)
}

func TestIntegrationService_Update(t *testing.T) {
	f := newServiceFixture()
	integ, err := f.service.Create(context.Background(), CreateIntegrationInput{
		Name:     "My Shop",
		Platform: integration.PlatformCodeWordPress,
	})
	require.NoError(t, err)

	enabled := false
	updated, err := f.service.Update(context.Background(), integ.ID, UpdateIntegrationInput{
		Enabled:         &enabled,
		EnabledFeatures: []string{integration.FeatureSyncProducts},
	})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.False(t, updated.SyncActive())
	assert.Equal(t, []string{integration.FeatureSyncProducts}, updated.EnabledFeatures)
}

func TestIntegrationService_DeleteClearsMappings(t *testing.T) {
	f := newServiceFixture()
	integ, err := f.service.Create(context.Background(), CreateIntegrationInput{
		Name:     "My Shop",
		Platform: integration.PlatformCodeWordPress,
	})
	require.NoError(t, err)

	require.NoError(t, f.mappings.Save(context.Background(),
		integration.NewProductMapping(uuid.New(), integ.ID, "42", "SKU-1")))

	require.NoError(t, f.service.Delete(context.Background(), integ.ID))

	_, err = f.service.GetByID(context.Background(), integ.ID)
	assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	assert.Zero(t, f.mappings.byIntegration[integ.ID])

	err = f.service.Delete(context.Background(), integ.ID)
	assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
}

func TestIntegrationService_TestConnection(t *testing.T) {
	f := newServiceFixture()
	integ, err := f.service.Create(context.Background(), CreateIntegrationInput{
		Name:     "My Shop",
		Platform: integration.PlatformCodeWordPress,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.TestConnection(context.Background(), integ.ID))
	assert.Equal(t, 1, f.client.tested)

	f.client.connectionErr = errors.New("401 unauthorized")
	err = f.service.TestConnection(context.Background(), integ.ID)
	assert.EqualError(t, err, "401 unauthorized")
}
