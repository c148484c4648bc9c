package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tunequiz/tunequiz/internal/dependencies/mocks"
	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *Registry
	notified []model.Player
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC))
	s.registry = New(s.clock, testutil.NopLogger())
	s.notified = nil
	s.registry.SetNotify(func(p model.Player) {
		s.notified = append(s.notified, p)
	})
}

func (s *RegistrySuite) TestJoinAssignsUniqueIDs() {
	id1, err := s.registry.Join("alice")
	s.Require().NoError(err)
	id2, err := s.registry.Join("bob")
	s.Require().NoError(err)
	s.NotEqual(id1, id2)
}

func (s *RegistrySuite) TestJoinDuplicateNameRejected() {
	_, err := s.registry.Join("alice")
	s.Require().NoError(err)

	_, err = s.registry.Join("alice")
	s.ErrorIs(err, model.ErrDuplicateName)

	// Case-only differences still count as duplicates
	_, err = s.registry.Join("ALICE")
	s.ErrorIs(err, model.ErrDuplicateName)
}

func (s *RegistrySuite) TestDisconnectedNameCanBeReused() {
	id, err := s.registry.Join("alice")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.MarkDisconnected(id))

	_, err = s.registry.Join("alice")
	s.NoError(err)
}

func (s *RegistrySuite) TestDisconnectKeepsScore() {
	id, err := s.registry.Join("alice")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AddScore(id, 3))

	s.Require().NoError(s.registry.MarkDisconnected(id))

	score, err := s.registry.ScoreFor(id)
	s.Require().NoError(err)
	s.Equal(3, score)
}

func (s *RegistrySuite) TestRejoinRestoresVisibilityOfScore() {
	id, err := s.registry.Join("alice")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AddScore(id, 5))
	s.Require().NoError(s.registry.MarkDisconnected(id))
	s.Empty(s.registry.ListActive())

	s.Require().NoError(s.registry.Rejoin(id))

	active := s.registry.ListActive()
	s.Require().Len(active, 1)
	s.Equal(id, active[0].ID)
	s.Equal(5, active[0].Score)
}

func (s *RegistrySuite) TestAddScoreUnknownPlayer() {
	err := s.registry.AddScore("nope", 1)
	s.ErrorIs(err, model.ErrUnknownPlayer)
}

func (s *RegistrySuite) TestAddScoreRejectsNegativeDelta() {
	id, err := s.registry.Join("alice")
	s.Require().NoError(err)

	err = s.registry.AddScore(id, -1)
	s.ErrorIs(err, ErrNegativeDelta)

	score, err := s.registry.ScoreFor(id)
	s.Require().NoError(err)
	s.Equal(0, score)
}

func (s *RegistrySuite) TestListActiveJoinOrderStable() {
	names := []string{"carol", "alice", "bob"}
	var ids []model.PlayerID
	for _, name := range names {
		id, err := s.registry.Join(name)
		s.Require().NoError(err)
		ids = append(ids, id)
		s.clock.Advance(time.Second)
	}

	for i := 0; i < 3; i++ {
		active := s.registry.ListActive()
		s.Require().Len(active, 3)
		for j, p := range active {
			s.Equal(ids[j], p.ID)
			s.Equal(names[j], p.DisplayName)
		}
	}
}

func (s *RegistrySuite) TestListIncludesDisconnected() {
	id1, err := s.registry.Join("alice")
	s.Require().NoError(err)
	_, err = s.registry.Join("bob")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.MarkDisconnected(id1))

	s.Len(s.registry.ListActive(), 1)
	s.Len(s.registry.List(), 2)
}

func (s *RegistrySuite) TestMutationsNotify() {
	id, err := s.registry.Join("alice")
	s.Require().NoError(err)
	s.Require().NoError(s.registry.AddScore(id, 2))
	s.Require().NoError(s.registry.MarkDisconnected(id))
	s.Require().NoError(s.registry.Rejoin(id))

	s.Require().Len(s.notified, 4)
	s.Equal(0, s.notified[0].Score)
	s.Equal(2, s.notified[1].Score)
	s.Equal(model.StatusDisconnected, s.notified[2].Status)
	s.Equal(model.StatusConnected, s.notified[3].Status)
}
