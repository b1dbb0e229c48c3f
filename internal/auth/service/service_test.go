package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bisaathi/internal/auth/store"
	jwttoken "bisaathi/internal/jwt_token"
	dErrors "bisaathi/pkg/domain-errors"
)

// ============================================================================
// Test suite
// ============================================================================

type AuthServiceSuite struct {
	suite.Suite
	ctx    context.Context
	users  *store.InMemoryUserStore
	tokens *jwttoken.JWTService
	svc    *Service
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = store.NewMemory()
	s.tokens = jwttoken.NewJWTService("test-signing-key", "bisaathi", "bisaathi-api")

	var err error
	s.svc, err = New(s.users, s.tokens, time.Hour)
	s.Require().NoError(err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

// ============================================================================
// Register
// ============================================================================

func (s *AuthServiceSuite) TestRegister() {
	s.Run("creates the account and signs the user in", func() {
		s.SetupTest()

		session, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		s.NotEmpty(session.Token)
		s.Equal("asha@example.com", session.User.Email)
		s.Equal("user", session.User.Role)

		claims, err := s.tokens.ValidateToken(session.Token)
		s.Require().NoError(err)
		s.Equal(session.User.ID.String(), claims.UserID)
	})

	s.Run("normalizes email case", func() {
		s.SetupTest()

		_, err := s.svc.Register(s.ctx, "Asha Rao", "Asha@Example.COM", "correct-horse")
		s.Require().NoError(err)

		_, err = s.svc.Login(s.ctx, "asha@example.com", "correct-horse")
		s.NoError(err)
	})

	s.Run("rejects a duplicate email", func() {
		s.SetupTest()
		_, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		_, err = s.svc.Register(s.ctx, "Another Asha", "asha@example.com", "different-pass")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects weak passwords and malformed input", func() {
		s.SetupTest()

		cases := []struct {
			name, email, password string
		}{
			{"", "asha@example.com", "correct-horse"},
			{"Asha Rao", "", "correct-horse"},
			{"Asha Rao", "not-an-email", "correct-horse"},
			{"Asha Rao", "asha@example.com", "short"},
		}
		for _, c := range cases {
			_, err := s.svc.Register(s.ctx, c.name, c.email, c.password)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})
}

// ============================================================================
// Login
// ============================================================================

func (s *AuthServiceSuite) TestLogin() {
	s.Run("valid credentials return a session", func() {
		s.SetupTest()
		registered, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		session, err := s.svc.Login(s.ctx, "asha@example.com", "correct-horse")
		s.Require().NoError(err)
		s.Equal(registered.User.ID, session.User.ID)
		s.NotEmpty(session.Token)
	})

	s.Run("wrong password and unknown email fail identically", func() {
		s.SetupTest()
		_, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		_, wrongPass := s.svc.Login(s.ctx, "asha@example.com", "wrong-password")
		_, unknown := s.svc.Login(s.ctx, "nobody@example.com", "correct-horse")

		s.Require().Error(wrongPass)
		s.Require().Error(unknown)
		s.True(dErrors.HasCode(wrongPass, dErrors.CodeUnauthorized))
		s.True(dErrors.HasCode(unknown, dErrors.CodeUnauthorized))
		s.Equal(dErrors.MessageOf(wrongPass), dErrors.MessageOf(unknown))
	})
}

// ============================================================================
// Officer bootstrap
// ============================================================================

func (s *AuthServiceSuite) TestEnsureOfficer() {
	s.Run("creates the officer account once", func() {
		s.SetupTest()

		s.Require().NoError(s.svc.EnsureOfficer(s.ctx, "officer@bis.gov.in", "triage-secret"))

		session, err := s.svc.Login(s.ctx, "officer@bis.gov.in", "triage-secret")
		s.Require().NoError(err)
		s.Equal("officer", session.User.Role)
	})

	s.Run("is idempotent and never overwrites credentials", func() {
		s.SetupTest()
		s.Require().NoError(s.svc.EnsureOfficer(s.ctx, "officer@bis.gov.in", "triage-secret"))

		s.Require().NoError(s.svc.EnsureOfficer(s.ctx, "officer@bis.gov.in", "a-new-secret"))

		_, err := s.svc.Login(s.ctx, "officer@bis.gov.in", "triage-secret")
		s.NoError(err, "the original password still works")
	})

	s.Run("leaves an existing citizen account alone", func() {
		s.SetupTest()
		_, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		s.Require().NoError(s.svc.EnsureOfficer(s.ctx, "asha@example.com", "triage-secret"))

		session, err := s.svc.Login(s.ctx, "asha@example.com", "correct-horse")
		s.Require().NoError(err)
		s.Equal("user", session.User.Role)
	})

	s.Run("rejects empty bootstrap credentials", func() {
		s.SetupTest()
		err := s.svc.EnsureOfficer(s.ctx, "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// ============================================================================
// Profile
// ============================================================================

func (s *AuthServiceSuite) TestProfile() {
	s.Run("returns the stored account", func() {
		s.SetupTest()
		registered, err := s.svc.Register(s.ctx, "Asha Rao", "asha@example.com", "correct-horse")
		s.Require().NoError(err)

		user, err := s.svc.Profile(s.ctx, registered.User.ID)
		s.Require().NoError(err)
		s.Equal("Asha Rao", user.Name)
	})
}
