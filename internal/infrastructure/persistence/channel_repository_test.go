package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/channelbridge/backend/internal/domain/catalog"
)

// newMockChannelRepository creates a GormChannelRepository with a mocked SQL connection
func newMockChannelRepository(t *testing.T) (*GormChannelRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormChannelRepository(gormDB), mock, mockDB
}

func TestGormChannelRepository_FindByID(t *testing.T) {
	t.Run("finds existing channel", func(t *testing.T) {
		repo, mock, mockDB := newMockChannelRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()
		markup := 15.0
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "code", "token", "is_default", "default_currency", "default_language", "integration_id", "markup", "created_at", "updated_at"}).
			AddRow(channelID, "eu-store", "tok-eu", false, "EUR", "de", nil, markup, now, now)

		mock.ExpectQuery(`SELECT \* FROM "channels" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(channelID, 1).
			WillReturnRows(rows)

		channel, err := repo.FindByID(context.Background(), channelID)
		require.NoError(t, err)
		assert.Equal(t, "eu-store", channel.Code)
		assert.Equal(t, 15.0, channel.MarkupPercent())
	})

	t.Run("returns ErrChannelNotFound when absent", func(t *testing.T) {
		repo, mock, mockDB := newMockChannelRepository(t)
		defer mockDB.Close()

		channelID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "channels"`).
			WithArgs(channelID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), channelID)
		assert.ErrorIs(t, err, catalog.ErrChannelNotFound)
	})
}

func TestGormChannelRepository_FindDefault(t *testing.T) {
	repo, mock, mockDB := newMockChannelRepository(t)
	defer mockDB.Close()

	channelID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "code", "token", "is_default", "default_currency", "default_language", "integration_id", "markup", "created_at", "updated_at"}).
		AddRow(channelID, "default", "tok-default", true, "USD", "en", nil, nil, now, now)

	mock.ExpectQuery(`SELECT \* FROM "channels" WHERE is_default = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(true, 1).
		WillReturnRows(rows)

	channel, err := repo.FindDefault(context.Background())
	require.NoError(t, err)
	assert.True(t, channel.IsDefault)
	assert.Equal(t, 0.0, channel.MarkupPercent())
}
