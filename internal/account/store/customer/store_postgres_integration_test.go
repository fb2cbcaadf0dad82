//go:build integration

package customer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coreteller/internal/account/models"
	"coreteller/internal/account/store/customer"
	"coreteller/pkg/domain"
	"coreteller/pkg/platform/sentinel"
	"coreteller/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *customer.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = customer.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "account_holders", "customers")
	s.Require().NoError(err)
}

func newTestCustomer(nic string) *models.Customer {
	return &models.Customer{
		ID:          domain.NewCustomerID(),
		FirstName:   "Nimal",
		LastName:    "Perera",
		NIC:         domain.NIC(nic),
		DateOfBirth: time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderMale,
		CreatedAt:   time.Now().UTC(),
	}
}

// TestConcurrentDuplicateNIC verifies that concurrent registrations with the
// same NIC result in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentDuplicateNIC() {
	ctx := context.Background()
	nic := "19901234" + uuid.NewString()[:4]
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			c := newTestCustomer(nic)
			err := s.store.Create(ctx, c)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	found, err := s.store.FindByNIC(ctx, domain.NIC(nic))
	s.Require().NoError(err)
	s.Equal(nic, found.NIC.String())
}

// TestRoundTrip verifies a created customer reads back field for field.
func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	c := newTestCustomer("199012345678")
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.FirstName, found.FirstName)
	s.Equal(c.LastName, found.LastName)
	s.Equal(c.NIC, found.NIC)
	s.Equal(c.Gender, found.Gender)
	s.Equal(c.DateOfBirth.Format("2006-01-02"), found.DateOfBirth.Format("2006-01-02"))

	byNIC, err := s.store.FindByNIC(ctx, c.NIC)
	s.Require().NoError(err)
	s.Equal(c.ID, byNIC.ID)
}

// TestUpdateNIC verifies the NIC replacement used when a teen account moves
// to an adult plan.
func (s *PostgresStoreSuite) TestUpdateNIC() {
	ctx := context.Background()

	c := newTestCustomer("200603212345")
	s.Require().NoError(s.store.Create(ctx, c))

	newNIC := domain.NIC("200612345678")
	s.Require().NoError(s.store.UpdateNIC(ctx, c.ID, newNIC))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(newNIC, found.NIC)

	// The old NIC no longer resolves
	_, err = s.store.FindByNIC(ctx, c.NIC)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestNotFoundError verifies proper error handling for non-existent customers.
func (s *PostgresStoreSuite) TestNotFoundError() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, domain.NewCustomerID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByNIC(ctx, domain.NIC("000000000000"))
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.store.UpdateNIC(ctx, domain.NewCustomerID(), domain.NIC("199912345678"))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
