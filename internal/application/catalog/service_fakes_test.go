package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/channelbridge/backend/internal/domain/catalog"
	"github.com/channelbridge/backend/internal/domain/integration"
	"github.com/channelbridge/backend/internal/domain/shared"
)

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
	if !ok || p.IsDeleted() {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (r *memoryProductRepository) FindByIDIncludingDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (r *memoryProductRepository) FindByVariantID(ctx context.Context, variantID uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.products {
		if _, ok := p.VariantByID(variantID); ok {
			return p, nil
		}
	}
	return nil, catalog.ErrVariantNotFound
}

func (r *memoryProductRepository) ChannelIDs(ctx context.Context, productID uuid.UUID, includeDeleted bool) ([]uuid.UUID, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	if !includeDeleted && p.IsDeleted() {
		return nil, catalog.ErrProductNotFound
	}
	return r.assignments[productID], nil
}

func (r *memoryProductRepository) ListProductIDsInChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for productID, channels := range r.assignments {
		for _, id := range channels {
			if id == channelID {
				ids = append(ids, productID)
			}
		}
	}
	return ids, nil
}

func (r *memoryProductRepository) FindBatchWithPrices(ctx context.Context, channelID uuid.UUID, productIDs []uuid.UUID) ([]catalog.Product, error) {
	var batch []catalog.Product
	for _, id := range productIDs {
		if p, ok := r.products[id]; ok {
			batch = append(batch, *p)
		}
	}
	return batch, nil
}

func (r *memoryProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	now := p.UpdatedAt
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

func newMemoryChannelRepository(channels ...*catalog.Channel) *memoryChannelRepository {
	r := &memoryChannelRepository{channels: make(map[uuid.UUID]*catalog.Channel)}
	for _, c := range channels {
		r.channels[c.ID] = c
	}
	return r
}

func (r *memoryChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Channel, error) {
	c, ok := r.channels[id]
	if !ok {
		return nil, catalog.ErrChannelNotFound
	}
	return c, nil
}

func (r *memoryChannelRepository) FindByToken(ctx context.Context, token string) (*catalog.Channel, error) {
	for _, c := range r.channels {
		if c.Token == token {
			return c, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *memoryChannelRepository) FindDefault(ctx context.Context) (*catalog.Channel, error) {
	for _, c := range r.channels {
		if c.IsDefault {
			return c, nil
		}
	}
	return nil, catalog.ErrChannelNotFound
}

func (r *memoryChannelRepository) List(ctx context.Context) ([]catalog.Channel, error) {
	var out []catalog.Channel
	for _, c := range r.channels {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryChannelRepository) Save(ctx context.Context, channel *catalog.Channel) error {
	r.channels[channel.ID] = channel
	return nil
}

type memoryIntegrationRepository struct {
	integrations map[uuid.UUID]*integration.Integration
}

func newMemoryIntegrationRepository(integrations ...*integration.Integration) *memoryIntegrationRepository {
	r := &memoryIntegrationRepository{integrations: make(map[uuid.UUID]*integration.Integration)}
	for _, i := range integrations {
		r.integrations[i.ID] = i
	}
	return r
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
	delete(r.integrations, id)
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
