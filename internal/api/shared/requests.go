package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/phrazzld/scaffold-api/internal/domain"
	"github.com/phrazzld/scaffold-api/internal/store"
)

// MaxBodyBytes bounds decoded request bodies.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON for a request without a body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// ValidateRequest validates the given struct. Types with a Validate method
// validate themselves; everything else goes through the shared struct
// validator, so request and domain rules agree.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	if err := domain.Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// ParsePage reads the skip and limit query parameters. Missing values take
// store.DefaultPage; malformed or negative ones fail with
// store.ErrInvalidPage.
func ParsePage(r *http.Request) (store.Page, error) {
	page := store.DefaultPage
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"skip", &page.Skip},
		{"limit", &page.Limit},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return store.Page{}, fmt.Errorf("%w: %s must be an integer", store.ErrInvalidPage, p.name)
		}
		*p.dst = n
	}

	if err := page.Validate(); err != nil {
		return store.Page{}, err
	}
	return page, nil
}
