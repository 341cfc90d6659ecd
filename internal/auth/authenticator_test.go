package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/apilab/apilab/internal/model"
	"github.com/apilab/apilab/internal/repository"
)

type fakeUsers struct {
	byID map[int64]*model.User
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

var (
	fixtureOnce sync.Once
	fixture     *fakeUsers
)

func testUsers(t *testing.T) *fakeUsers {
	t.Helper()
	fixtureOnce.Do(func() {
		hash, err := HashPasswordWithParams("test123", testParams)
		if err != nil {
			panic(err)
		}
		fixture = &fakeUsers{byID: map[int64]*model.User{
			2: {ID: 2, Email: "testuser@apilab.dev", PasswordHash: hash, Role: model.RoleUser},
		}}
	})
	return fixture
}

func basicHeader(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func TestAuthenticator_Resolve(t *testing.T) {
	t.Parallel()

	users := testUsers(t)
	issuer := NewTokenIssuer("secret")
	a := NewAuthenticator(users, issuer)

	valid, err := issuer.Issue(2)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	unknown, err := issuer.Issue(99)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantUserID int64
		wantMethod model.AuthMethod
		wantErr    bool
	}{
		{"bearer valid", "Bearer " + valid.Token, 2, model.AuthMethodToken, false},
		{"bearer unknown user", "Bearer " + unknown.Token, 0, "", true},
		{"bearer garbage", "Bearer abc.def.ghi", 0, "", true},
		{"basic valid", basicHeader("testuser@apilab.dev:test123"), 2, model.AuthMethodBasic, false},
		{"basic wrong password", basicHeader("testuser@apilab.dev:nope"), 0, "", true},
		{"basic unknown email", basicHeader("ghost@apilab.dev:test123"), 0, "", true},
		{"basic email case differs", basicHeader("TestUser@apilab.dev:test123"), 0, "", true},
		{"basic no colon", basicHeader("testuser@apilab.dev"), 0, "", true},
		{"basic bad base64", "Basic %%%", 0, "", true},
		{"lowercase scheme", "bearer " + valid.Token, 0, "", true},
		{"empty", "", 0, "", true},
		{"other scheme", "Digest username=x", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := a.Resolve(context.Background(), tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Fatalf("Resolve error = %v, want ErrUnauthenticated", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if id.User.ID != tt.wantUserID {
				t.Errorf("user id = %d, want %d", id.User.ID, tt.wantUserID)
			}
			if id.Method != tt.wantMethod {
				t.Errorf("method = %s, want %s", id.Method, tt.wantMethod)
			}
		})
	}
}

func TestAuthenticator_BasicAndBearerAgree(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret")
	a := NewAuthenticator(testUsers(t), issuer)

	issued, err := issuer.Issue(2)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	viaToken, err := a.Resolve(context.Background(), "Bearer "+issued.Token)
	if err != nil {
		t.Fatalf("bearer: %v", err)
	}
	viaBasic, err := a.Resolve(context.Background(), basicHeader("testuser@apilab.dev:test123"))
	if err != nil {
		t.Fatalf("basic: %v", err)
	}

	if viaToken.User.ID != viaBasic.User.ID {
		t.Errorf("bearer user %d != basic user %d", viaToken.User.ID, viaBasic.User.ID)
	}
}

type failingUsers struct{ err error }

func (f failingUsers) GetUserByID(context.Context, int64) (*model.User, error) { return nil, f.err }
func (f failingUsers) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func TestAuthenticator_CheckCredentials(t *testing.T) {
	t.Parallel()

	errRefused := errors.New("connection refused")

	tests := []struct {
		name        string
		users       UserLookup
		email       string
		password    string
		wantInvalid bool
		wantErr     error
	}{
		{"valid", testUsers(t), "testuser@apilab.dev", "test123", false, nil},
		{"wrong_password", testUsers(t), "testuser@apilab.dev", "nope", true, ErrInvalidCredentials},
		{"unknown_email", testUsers(t), "nobody@apilab.dev", "test123", true, ErrInvalidCredentials},
		{"store_failure", failingUsers{err: errRefused}, "testuser@apilab.dev", "test123", false, errRefused},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := NewAuthenticator(tc.users, NewTokenIssuer("secret"))
			user, err := a.CheckCredentials(context.Background(), tc.email, tc.password)

			if tc.wantErr == nil {
				if err != nil || user == nil {
					t.Fatalf("CheckCredentials() = %v, %v", user, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if got := errors.Is(err, ErrInvalidCredentials); got != tc.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidCredentials) = %v, want %v", got, tc.wantInvalid)
			}
		})
	}

	t.Run("resolve_folds_store_failure", func(t *testing.T) {
		t.Parallel()

		a := NewAuthenticator(failingUsers{err: errRefused}, NewTokenIssuer("secret"))
		_, err := a.Resolve(context.Background(), basicHeader("testuser@apilab.dev:test123"))
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestAuthenticator_TokenSubject(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret")
	a := NewAuthenticator(testUsers(t), issuer)

	issued, err := issuer.Issue(99)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	id, err := a.TokenSubject("Bearer " + issued.Token)
	if err != nil {
		t.Fatalf("TokenSubject failed: %v", err)
	}
	if id != 99 {
		t.Errorf("subject = %d, want 99", id)
	}

	if _, err := a.TokenSubject(basicHeader("testuser@apilab.dev:test123")); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("basic header error = %v, want ErrUnauthenticated", err)
	}
}

func TestParseBasic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		header       string
		wantEmail    string
		wantPassword string
		wantOK       bool
	}{
		{"simple", basicHeader("a@b.c:pw"), "a@b.c", "pw", true},
		{"colon in password", basicHeader("a@b.c:p:w"), "a@b.c", "p:w", true},
		{"empty password", basicHeader("a@b.c:"), "a@b.c", "", true},
		{"no colon", basicHeader("a@b.c"), "", "", false},
		{"invalid utf8", "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, ':', 'x'}), "", "", false},
		{"not basic", "Bearer x", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, password, ok := ParseBasic(tt.header)
			if ok != tt.wantOK || email != tt.wantEmail || password != tt.wantPassword {
				t.Errorf("ParseBasic = (%q, %q, %v), want (%q, %q, %v)",
					email, password, ok, tt.wantEmail, tt.wantPassword, tt.wantOK)
			}
		})
	}
}

func TestMethodFromHeader(t *testing.T) {
	t.Parallel()

	tests := map[string]model.AuthMethod{
		"Bearer x":      model.AuthMethodToken,
		"Basic eA==":    model.AuthMethodBasic,
		"":              model.AuthMethodNone,
		"Token abc":     model.AuthMethodNone,
		"BearerNoSpace": model.AuthMethodNone,
	}

	for header, want := range tests {
		if got := MethodFromHeader(header); got != want {
			t.Errorf("MethodFromHeader(%q) = %s, want %s", header, got, want)
		}
	}
}
