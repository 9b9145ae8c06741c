package echoapi

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/user"
)

func Test_token_roundTrip(t *testing.T) {
	usr := user.User{ID: 42, Username: "a1", Role: user.RoleAdmin}

	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return appJWTConfig.SigningKey, nil
	})
	if err != nil {
		t.Fatalf("ParseWithClaims() failed: %v", err)
	}
	if !parsed.Valid {
		t.Error("token is not valid")
	}
	if claims.UserID != usr.ID || claims.Username != usr.Username || claims.Role != usr.Role {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Subject != strconv.Itoa(usr.ID) {
		t.Errorf("Subject = %q; want %q", claims.Subject, strconv.Itoa(usr.ID))
	}

	wantExp := time.Now().Add(core.Conf.GetDuration("jwtExpirationDelta")).Unix()
	if delta := wantExp - claims.ExpiresAt; delta < 0 || delta > 5 {
		t.Errorf("ExpiresAt = %v; want about %v", claims.ExpiresAt, wantExp)
	}
}

func Test_token_badSignatureRejected(t *testing.T) {
	app := setup(t)
	admin := createUser(t, "admin", user.RoleAdmin)

	// re-sign the claims with the wrong key
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, GetUserClaims(admin))
	token, err := forged.SignedString([]byte("not-the-secret"))
	if err != nil {
		t.Fatalf("SignedString() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/users", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusUnauthorized, rec.Body.String())
	}
}

func Test_token_malformedRejected(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/users", "lol.not.a-token")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusUnauthorized, rec.Body.String())
	}
}
