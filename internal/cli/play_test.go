package cli

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/tunequiz/tunequiz/internal/model"
	"github.com/tunequiz/tunequiz/internal/protocol"
)

type PlayCommandTestSuite struct {
	suite.Suite
}

func TestPlayCommandTestSuite(t *testing.T) {
	suite.Run(t, new(PlayCommandTestSuite))
}

func (s *PlayCommandTestSuite) TestTitleGuess() {
	msg, quit := parseCommand("title Take On Me")
	s.False(quit)
	s.Require().NotNil(msg)
	s.Equal(protocol.TypeSubmit, msg.Type)

	var payload protocol.SubmitPayload
	s.Require().NoError(msg.DecodePayload(&payload))
	s.Equal(model.FieldTitle, payload.Field)
	s.Equal("Take On Me", payload.Text)
}

func (s *PlayCommandTestSuite) TestArtistGuess() {
	msg, quit := parseCommand("artist a-ha")
	s.False(quit)
	s.Require().NotNil(msg)

	var payload protocol.SubmitPayload
	s.Require().NoError(msg.DecodePayload(&payload))
	s.Equal(model.FieldArtist, payload.Field)
	s.Equal("a-ha", payload.Text)
}

func (s *PlayCommandTestSuite) TestControlCommands() {
	msg, quit := parseCommand("repeat")
	s.False(quit)
	s.Require().NotNil(msg)
	s.Equal(protocol.TypeRepeat, msg.Type)

	msg, quit = parseCommand("advance")
	s.False(quit)
	s.Require().NotNil(msg)
	s.Equal(protocol.TypeAdvance, msg.Type)
}

func (s *PlayCommandTestSuite) TestQuit() {
	msg, quit := parseCommand("quit")
	s.True(quit)
	s.Nil(msg)

	msg, quit = parseCommand("exit")
	s.True(quit)
	s.Nil(msg)
}

func (s *PlayCommandTestSuite) TestBlankAndUnknownLines() {
	msg, quit := parseCommand("   ")
	s.False(quit)
	s.Nil(msg)

	msg, quit = parseCommand("dance")
	s.False(quit)
	s.Nil(msg)
}
