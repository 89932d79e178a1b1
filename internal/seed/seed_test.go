package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

type memStore struct {
	nextID    int64
	users     []*domain.User
	templates []*domain.ShiftTemplate
	events    []*domain.Event
	rentals   []*domain.ToolRental
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users, nil
}

func (s *memStore) CreateUser(ctx context.Context, user *domain.User) error {
	user.ID = s.id()
	s.users = append(s.users, user)
	return nil
}

func (s *memStore) CreateShiftTemplate(ctx context.Context, st *domain.ShiftTemplate) error {
	st.ID = s.id()
	s.templates = append(s.templates, st)
	return nil
}

func (s *memStore) CreateEvent(ctx context.Context, e *domain.Event) error {
	e.ID = s.id()
	s.events = append(s.events, e)
	return nil
}

func (s *memStore) CreateToolRental(ctx context.Context, t *domain.ToolRental) error {
	t.ID = s.id()
	s.rentals = append(s.rentals, t)
	return nil
}

func TestApplyFixtures(t *testing.T) {
	fx, err := LoadFile("testdata/fixtures.yaml")
	require.NoError(t, err)

	store := &memStore{}
	res, err := Apply(context.Background(), store, fx)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, ShiftTemplates: 1, Events: 1, Rentals: 1}, res)

	manager := store.users[0]
	assert.True(t, manager.Tags.IsStaff)
	assert.True(t, manager.Tags.ManagerTag)
	assert.False(t, store.users[2].Tags.IsStaff)
	assert.True(t, store.users[2].Tags.RentalApprovedTag)

	st := store.templates[0]
	assert.Equal(t, "Morning", st.Names.EN)
	assert.Equal(t, "Matin", st.Names.FR)
	require.Len(t, st.Requirements, 2)
	assert.Equal(t, "午间高峰", st.Requirements[1].Note)

	e := store.events[0]
	assert.Equal(t, manager.ID, e.CreatedBy)
	assert.Equal(t, []int64{store.users[1].ID}, e.AssigneeIDs)
	assert.Equal(t, domain.EventApproved, e.Status)

	r := store.rentals[0]
	assert.Equal(t, store.users[2].ID, r.RenterID)
	assert.Equal(t, domain.RentalPending, r.Status)

	t.Run("existing users are reused", func(t *testing.T) {
		res, err := Apply(context.Background(), store, &Fixtures{
			Users:   fx.Users,
			Rentals: fx.Rentals,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Users)
		assert.Equal(t, 3, res.SkippedUsers)
		assert.Len(t, store.users, 3)
		assert.Equal(t, store.users[2].ID, store.rentals[1].RenterID)
	})
}

func TestParse(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader("users:\n  - usrname: x\n"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		fx, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, fx.Users)
	})
}

func TestApplyRejects(t *testing.T) {
	t.Run("unknown user reference", func(t *testing.T) {
		_, err := Apply(context.Background(), &memStore{}, &Fixtures{
			Events: []EventFixture{{Title: "例会", CreatedBy: "nobody"}},
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid shift template", func(t *testing.T) {
		_, err := Apply(context.Background(), &memStore{}, &Fixtures{
			ShiftTemplates: []ShiftTemplateFixture{{Name: "坏班次", OpenTime: "13:00", CloseTime: "09:00"}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	})

	t.Run("reversed event times", func(t *testing.T) {
		store := &memStore{users: []*domain.User{{ID: 1, Username: "wangjl"}}}
		_, err := Apply(context.Background(), store, &Fixtures{
			Events: []EventFixture{{Title: "例会", Date: "2026-10-19", StartTime: "12:00", EndTime: "11:00", CreatedBy: "wangjl"}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
		assert.Empty(t, store.events)
	})

	t.Run("same day rental returned before pickup", func(t *testing.T) {
		store := &memStore{users: []*domain.User{{ID: 1, Username: "zhaogk"}}}
		_, err := Apply(context.Background(), store, &Fixtures{
			Rentals: []RentalFixture{{ToolName: "电钻", Renter: "zhaogk", StartDate: "2026-10-19", PickupTime: "18:00", ReturnTime: "09:00"}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
		assert.Empty(t, store.rentals)
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := Apply(context.Background(), &memStore{}, &Fixtures{
			ShiftTemplates: []ShiftTemplateFixture{{Name: "早班", OpenTime: "09:00", CloseTime: "13:00", Names: map[string]string{"de": "Morgen"}}},
		})
		assert.Error(t, err)
	})
}
