package opportunities

import (
	"context"
	"fmt"
	"testing"

	"ahu-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServiceTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Opportunity{}))
	return &Service{DB: db}
}

func mustCreate(t *testing.T, s *Service, in WriteInput) *domain.Opportunity {
	opp, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	return opp
}

func TestOrderClauseFallback(t *testing.T) {
	assert.Equal(t, "updated_at DESC", OrderClause("", ""))
	assert.Equal(t, "updated_at DESC", OrderClause("no_such_column", "asc"))
	assert.Equal(t, "updated_at DESC", OrderClause("id; DROP TABLE opportunities", "asc"))
	assert.Equal(t, "title ASC", OrderClause("title", "asc"))
	assert.Equal(t, "selling_price DESC", OrderClause("selling_price", "desc"))
	assert.Equal(t, "status DESC", OrderClause("status", "sideways"))
}

func TestListUnknownSortDoesNotError(t *testing.T) {
	s := setupServiceTest(t)
	mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})

	opps, err := s.List(context.Background(), "no_such_column", "asc")
	require.NoError(t, err)
	assert.Len(t, opps, 1)
}

func TestListCapsAtFiftyRows(t *testing.T) {
	s := setupServiceTest(t)
	for i := 0; i < 55; i++ {
		mustCreate(t, s, WriteInput{Title: fmt.Sprintf("opp %02d", i), Site: "Milan"})
	}
	opps, err := s.List(context.Background(), "title", "asc")
	require.NoError(t, err)
	assert.Len(t, opps, 50)
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	s := setupServiceTest(t)

	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})
	assert.Equal(t, domain.StatusNew, opp.Status)
	assert.Equal(t, domain.PriorityMedium, opp.Priority)

	_, err := s.Create(context.Background(), WriteInput{Site: "Milan"})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = s.Create(context.Background(), WriteInput{Title: "A", Site: "Milan", Status: "Maybe"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.Create(context.Background(), WriteInput{Title: "A", Site: "Milan", Priority: "Urgent"})
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestPatchNumberEmptyStringPersistsNull(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan", PriceEUR: floatPtr(100)})

	updated, err := s.Patch(context.Background(), opp.ID, "price_eur", "")
	require.NoError(t, err)
	assert.Nil(t, updated.PriceEUR)
}

func TestPatchNumberStripsFormatting(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})

	updated, err := s.Patch(context.Background(), opp.ID, "selling_price", "€1,500")
	require.NoError(t, err)
	require.NotNil(t, updated.SellingPrice)
	assert.InDelta(t, 1500, *updated.SellingPrice, 0.001)
}

func TestPatchSelectValidatesEnum(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})

	_, err := s.Patch(context.Background(), opp.ID, "status", "Maybe")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := s.Patch(context.Background(), opp.ID, "status", domain.StatusWon)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, updated.Status)
	assert.True(t, updated.IsClosed())
}

func TestPatchRejectsUnknownColumn(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})

	_, err := s.Patch(context.Background(), opp.ID, "id", "something")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = s.Patch(context.Background(), opp.ID, "created_at", "2020-01-01")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestPatchTextBlankBecomesNull(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan", Comments: strPtr("old note")})

	updated, err := s.Patch(context.Background(), opp.ID, "comments", "   ")
	require.NoError(t, err)
	assert.Nil(t, updated.Comments)

	// required text refuses blank instead of nulling out
	_, err = s.Patch(context.Background(), opp.ID, "title", "")
	assert.Error(t, err)
}

func TestDeleteMissingRecord(t *testing.T) {
	s := setupServiceTest(t)
	opp := mustCreate(t, s, WriteInput{Title: "A", Site: "Milan"})

	require.NoError(t, s.Delete(context.Background(), opp.ID))
	assert.ErrorIs(t, s.Delete(context.Background(), opp.ID), ErrNotFound)
	_, err := s.Get(context.Background(), opp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingTableDetection(t *testing.T) {
	assert.True(t, MissingTable(fmt.Errorf("ERROR: relation \"opportunities\" does not exist")))
	assert.True(t, MissingTable(fmt.Errorf("Could not find the table 'public.opportunities' in the schema cache")))
	assert.False(t, MissingTable(fmt.Errorf("connection refused")))
	assert.False(t, MissingTable(nil))
}
