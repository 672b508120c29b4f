package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type issuerMock struct{ mock.Mock }

func (m *issuerMock) Issue(subject string, role string, now time.Time) (string, time.Time, error) {
	args := m.Called(subject, role, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func hashFor(t *testing.T, plain string) string {
	t.Helper()
	h, err := NewBcryptPasswordHasher(bcrypt.MinCost).Hash(plain)
	require.NoError(t, err)
	return h
}

func TestLogin_Success(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	iss := new(issuerMock)
	iss.On("Issue", "operator", RoleOperator, now).Return("tok", now.Add(15*time.Minute), nil).Once()

	uc := NewLoginUsecase("", hashFor(t, "s3cret"), NewBcryptPasswordVerifier(), iss, fixedClock{now})
	out, err := uc.Execute(context.Background(), LoginInput{Password: "s3cret"})
	require.NoError(t, err)

	assert.Equal(t, "operator", out.Username)
	assert.Equal(t, RoleOperator, out.Role)
	assert.Equal(t, "tok", out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)
	iss.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	now := time.Now()
	iss := new(issuerMock)
	uc := NewLoginUsecase("operator", hashFor(t, "s3cret"), NewBcryptPasswordVerifier(), iss, fixedClock{now})

	_, err := uc.Execute(context.Background(), LoginInput{Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Execute(context.Background(), LoginInput{Username: "someone", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	iss.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_NoHashConfigured(t *testing.T) {
	uc := NewLoginUsecase("operator", "", NewBcryptPasswordVerifier(), new(issuerMock), fixedClock{time.Now()})
	_, err := uc.Execute(context.Background(), LoginInput{Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_IssuerError(t *testing.T) {
	now := time.Now()
	boom := errors.New("sign failed")
	iss := new(issuerMock)
	iss.On("Issue", mock.Anything, mock.Anything, mock.Anything).Return("", time.Time{}, boom)

	uc := NewLoginUsecase("operator", hashFor(t, "pw"), NewBcryptPasswordVerifier(), iss, fixedClock{now})
	_, err := uc.Execute(context.Background(), LoginInput{Password: "pw"})
	assert.ErrorIs(t, err, boom)
}

func TestJWTIssuer_Claims(t *testing.T) {
	now := time.Now()
	signed, exp, err := NewJWTIssuer("secret", time.Hour).Issue("operator", RoleOperator, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	tok, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "operator", claims["sub"])
	assert.Equal(t, RoleOperator, claims["role"])
}
