package restspec

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gopatchy/header"
	"github.com/gopatchy/jsrest"
)

// SetAuthBearerJWT enables bearer authentication with HS256-signed JWTs.
// APIs bound afterwards document a bearerAuth security scheme.
func (app *App) SetAuthBearerJWT(secret []byte) {
	app.authBearer = func(r *http.Request, _ *App) (*http.Request, error) {
		return authBearerJWT(r, secret)
	}
}

func authBearerJWT(r *http.Request, secret []byte) (*http.Request, error) {
	scheme, val := header.ParseAuthorization(r)

	if strings.ToLower(scheme) != "bearer" {
		return r, nil
	}

	token, err := jwt.Parse(
		val,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, jsrest.Errorf(jsrest.ErrUnauthorized, "token parsing failed (%w)", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jsrest.Errorf(jsrest.ErrUnauthorized, "unexpected claims type")
	}

	return r.WithContext(context.WithValue(r.Context(), ContextAuthBearerClaims, claims)), nil
}
