package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(newTestDB(t)))
}

func TestAuthService_SignupVolunteer(t *testing.T) {
	service := newAuthService(t)

	user, err := service.Signup(SignupInput{
		Email:    "Jamie@Example.com",
		Password: "supersecret",
		Role:     models.RoleVolunteer,
		Name:     "Jamie",
		City:     "Denver",
	})
	require.NoError(t, err)

	// Email is normalized and the role profile exists
	require.Equal(t, "jamie@example.com", user.Email)
	require.Equal(t, models.RoleVolunteer, user.Role)

	loaded, err := service.GetUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Volunteer)
	require.Equal(t, "Jamie", loaded.Volunteer.Name)
	require.Nil(t, loaded.Organization)
}

func TestAuthService_SignupOrganization(t *testing.T) {
	service := newAuthService(t)

	user, err := service.Signup(SignupInput{
		Email:    "org@example.com",
		Password: "supersecret",
		Role:     models.RoleOrganization,
		Name:     "Helping Hands",
	})
	require.NoError(t, err)

	loaded, err := service.GetUser(user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Organization)
	require.Equal(t, "Helping Hands", loaded.Organization.Name)
}

func TestAuthService_SignupValidation(t *testing.T) {
	service := newAuthService(t)

	_, err := service.Signup(SignupInput{
		Email: "a@example.com", Password: "short", Role: models.RoleVolunteer, Name: "A",
	})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = service.Signup(SignupInput{
		Email: "a@example.com", Password: "supersecret", Role: "admin", Name: "A",
	})
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.Signup(SignupInput{
		Email: "a@example.com", Password: "supersecret", Role: models.RoleVolunteer, Name: "  ",
	})
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	service := newAuthService(t)

	input := SignupInput{
		Email:    "taken@example.com",
		Password: "supersecret",
		Role:     models.RoleVolunteer,
		Name:     "First",
	}
	_, err := service.Signup(input)
	require.NoError(t, err)

	input.Name = "Second"
	_, err = service.Signup(input)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_Login(t *testing.T) {
	service := newAuthService(t)

	_, err := service.Signup(SignupInput{
		Email:    "login@example.com",
		Password: "supersecret",
		Role:     models.RoleVolunteer,
		Name:     "Login Lee",
	})
	require.NoError(t, err)

	user, err := service.Login(LoginInput{Email: "LOGIN@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.Equal(t, "login@example.com", user.Email)

	_, err = service.Login(LoginInput{Email: "login@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
