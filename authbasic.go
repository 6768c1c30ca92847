package restspec

import (
	"context"
	"net/http"
	"strings"

	"github.com/gopatchy/header"
	"github.com/gopatchy/jsrest"
	"golang.org/x/crypto/bcrypt"
)

// BasicLookup resolves a username to its bcrypt password hash.
type BasicLookup func(user string) (hash string, ok bool)

// SetAuthBasic enables HTTP basic authentication on the serving pipeline.
// APIs bound afterwards document a basicAuth security scheme.
func (app *App) SetAuthBasic(lookup BasicLookup) {
	app.authBasic = func(r *http.Request, _ *App) (*http.Request, error) {
		return authBasic(r, lookup)
	}
}

func authBasic(r *http.Request, lookup BasicLookup) (*http.Request, error) {
	scheme, val := header.ParseAuthorization(r)

	if strings.ToLower(scheme) != "basic" {
		return r, nil
	}

	reqUser, reqPass, err := header.ParseBasic(val)
	if err != nil {
		return nil, jsrest.Errorf(jsrest.ErrBadRequest, "Authorization Basic data parsing failed (%w)", err)
	}

	hash, ok := lookup(reqUser)
	if !ok {
		return nil, jsrest.Errorf(jsrest.ErrUnauthorized, "user not found")
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(reqPass))
	if err != nil {
		return nil, jsrest.Errorf(jsrest.ErrUnauthorized, "password mismatch (%w)", err)
	}

	return r.WithContext(context.WithValue(r.Context(), ContextAuthBasicUser, reqUser)), nil
}
