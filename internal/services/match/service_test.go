package match_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/battleship-client/internal/model"
	"github.com/mcoot/battleship-client/internal/services/match"
	"github.com/mcoot/battleship-client/internal/session/memory"
	"github.com/mcoot/battleship-client/internal/testutil"
	"github.com/mcoot/battleship-client/internal/testutil/fakeapi"
	"github.com/mcoot/battleship-client/internal/transport"
)

type ServiceSuite struct {
	suite.Suite
	api   *fakeapi.Server
	alice *match.Service
	bob   *match.Service
	ctx   context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) newService(token string) *match.Service {
	store := memory.New()
	_ = store.SetToken(context.Background(), token)
	return match.New(transport.New(transport.Config{
		BaseURL: s.api.URL,
		Store:   store,
		Logger:  testutil.NopLogger(),
	}))
}

func (s *ServiceSuite) SetupTest() {
	s.api = fakeapi.New(s.T())
	s.api.Fleet = []model.ShipSpec{{Type: "destroyer", Size: 2}}
	s.api.AddUser(model.User{ID: "u1", Username: "alice", Email: "alice@example.com"}, "pw", "t-alice")
	s.api.AddUser(model.User{ID: "u2", Username: "bob", Email: "bob@example.com"}, "pw", "t-bob")
	s.alice = s.newService("t-alice")
	s.bob = s.newService("t-bob")
	s.ctx = context.Background()
}

// startedMatch creates a match both players have joined and readied
func (s *ServiceSuite) startedMatch() model.MatchID {
	m, err := s.alice.Create(s.ctx)
	s.Require().NoError(err)
	_, err = s.bob.Join(s.ctx, m.ID)
	s.Require().NoError(err)

	ship := model.SetupShipPayload{ShipType: "destroyer", Orientation: model.Horizontal, StartRow: 0, StartCol: 0}
	for _, svc := range []*match.Service{s.alice, s.bob} {
		_, err = svc.PlaceShip(s.ctx, m.ID, ship)
		s.Require().NoError(err)
		_, err = svc.ConfirmSetup(s.ctx, m.ID)
		s.Require().NoError(err)
	}
	return m.ID
}

func (s *ServiceSuite) TestCreate() {
	m, err := s.alice.Create(s.ctx)
	s.Require().NoError(err)

	s.NotEmpty(m.ID)
	s.Equal(model.UserID("u1"), m.Player1.ID)
	s.Nil(m.Player2)
	s.Nil(m.CurrentTurn)
	s.Nil(m.Winner)
	s.Equal(model.PhaseSetup, m.Phase)
	s.Equal(1, s.api.CountRequests(http.MethodPost, "/matches"))
}

func (s *ServiceSuite) TestList() {
	created, _ := s.alice.Create(s.ctx)

	items, err := s.bob.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(created.ID, items[0].ID)
	s.Equal("alice", items[0].Player1)
	s.Nil(items[0].Player2)
}

func (s *ServiceSuite) TestJoin() {
	created, _ := s.alice.Create(s.ctx)

	m, err := s.bob.Join(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(m.Player2)
	s.Equal(model.UserID("u2"), m.Player2.ID)
	s.NotNil(m.CurrentTurn)
}

func (s *ServiceSuite) TestJoinOwnMatchFails() {
	created, _ := s.alice.Create(s.ctx)

	_, err := s.alice.Join(s.ctx, created.ID)
	s.Equal(http.StatusConflict, transport.StatusOf(err))
}

func (s *ServiceSuite) TestGetNotFound() {
	_, err := s.alice.Get(s.ctx, "missing")

	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Equal("Match not found", apiErr.Message)
	s.Equal("MATCH_NOT_FOUND", apiErr.Code)
}

func (s *ServiceSuite) TestPlaceShipReturnsOwnBoard() {
	created, _ := s.alice.Create(s.ctx)
	ship := model.SetupShipPayload{ShipType: "destroyer", Orientation: model.Vertical, StartRow: 2, StartCol: 3}

	m, err := s.alice.PlaceShip(s.ctx, created.ID, ship)
	s.Require().NoError(err)
	s.Require().NotNil(m.Player1.Board)
	s.Require().Len(m.Player1.Board.Ships, 1)
	s.Equal(model.CellShip, m.Player1.Board.Get(model.Position{Row: 3, Col: 3}))

	req, _ := s.api.LastRequest(http.MethodPost, "/matches/"+string(created.ID)+"/setup")
	var body map[string]any
	s.Require().NoError(json.Unmarshal(req.Body, &body))
	s.Equal("destroyer", body["shipType"])
	s.Equal("vertical", body["orientation"])
	s.EqualValues(2, body["startRow"])
	s.EqualValues(3, body["startCol"])
}

func (s *ServiceSuite) TestPlaceShipOutOfBounds() {
	created, _ := s.alice.Create(s.ctx)
	ship := model.SetupShipPayload{ShipType: "destroyer", Orientation: model.Horizontal, StartRow: 0, StartCol: 9}

	_, err := s.alice.PlaceShip(s.ctx, created.ID, ship)
	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal("OUT_OF_BOUNDS", apiErr.Code)
}

func (s *ServiceSuite) TestConfirmSetupStartsPlayWhenBothReady() {
	id := s.startedMatch()

	m, err := s.alice.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(model.PhasePlaying, m.Phase)
	s.True(m.Player1.IsReady)
	s.True(m.Player2.IsReady)
}

func (s *ServiceSuite) TestShootReturnsShotOutcome() {
	id := s.startedMatch()

	result, err := s.alice.Shoot(s.ctx, id, model.ShootPayload{Row: 0, Col: 0})
	s.Require().NoError(err)
	s.True(result.Hit)
	s.False(result.Sunk)
	s.False(result.GameOver)
	s.Nil(result.Winner)
}

func (s *ServiceSuite) TestShootOutOfTurn() {
	id := s.startedMatch()

	_, err := s.bob.Shoot(s.ctx, id, model.ShootPayload{Row: 0, Col: 0})
	apiErr, ok := transport.AsError(err)
	s.Require().True(ok)
	s.Equal("NOT_YOUR_TURN", apiErr.Code)
}

func (s *ServiceSuite) TestShootSinkingLastShipEndsGame() {
	id := s.startedMatch()

	_, err := s.alice.Shoot(s.ctx, id, model.ShootPayload{Row: 0, Col: 0})
	s.Require().NoError(err)
	_, err = s.bob.Shoot(s.ctx, id, model.ShootPayload{Row: 9, Col: 9})
	s.Require().NoError(err)

	result, err := s.alice.Shoot(s.ctx, id, model.ShootPayload{Row: 0, Col: 1})
	s.Require().NoError(err)
	s.True(result.Sunk)
	s.Require().NotNil(result.ShipType)
	s.Equal("destroyer", *result.ShipType)
	s.True(result.GameOver)
	s.Require().NotNil(result.Winner)
	s.Equal(model.UserID("u1"), *result.Winner)
}

func (s *ServiceSuite) TestForfeit() {
	id := s.startedMatch()

	m, err := s.bob.Forfeit(s.ctx, id)
	s.Require().NoError(err)
	s.True(m.IsFinished())
	s.Require().NotNil(m.Winner)
	s.Equal(model.UserID("u1"), *m.Winner)
}

func (s *ServiceSuite) TestForfeitTwiceFails() {
	id := s.startedMatch()
	_, _ = s.bob.Forfeit(s.ctx, id)

	_, err := s.bob.Forfeit(s.ctx, id)
	s.Equal(http.StatusConflict, transport.StatusOf(err))
}

func (s *ServiceSuite) TestTimestampsArePassedThrough() {
	body := `{"id":"m1","player1":{"id":"u1","username":"alice"},"player2":null,` +
		`"currentTurn":null,"phase":"setup","status":"waiting","winner":null,` +
		`"createdAt":"2024-05-01 10:00:00","updatedAt":""}`
	s.api.RespondNext(http.MethodGet, "/matches/m1", http.StatusOK, body)

	m, err := s.alice.Get(s.ctx, "m1")
	s.Require().NoError(err)
	s.Equal("2024-05-01 10:00:00", m.CreatedAt)
	s.Empty(m.UpdatedAt)
	s.Equal(model.StatusWaiting, m.Status)
}

func (s *ServiceSuite) TestListTimestampsArePassedThrough() {
	s.api.RespondNext(http.MethodGet, "/matches", http.StatusOK,
		`[{"id":"m1","player1":"alice","player2":null,"status":"waiting","createdAt":"yesterday"}]`)

	items, err := s.alice.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("yesterday", items[0].CreatedAt)
}
