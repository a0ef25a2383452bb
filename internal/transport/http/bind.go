package http

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ajg/form"
	"github.com/go-chi/render"

	apierrors "datacleanr/internal/errors"
	"datacleanr/internal/middleware"
)

// multipartMemory is how much of a multipart body is kept in memory
const multipartMemory = 10 << 20

// requestBinder decodes a request contract from JSON, urlencoded or
// multipart bodies, normalizes it and validates its tags
type requestBinder struct {
	validator *middleware.Validator
}

// bind fills v from the request body. listKeys name the form fields that
// may repeat, so "issue_ids=a&issue_ids=b" decodes into a slice.
func (b requestBinder) bind(r *http.Request, v render.Binder, listKeys ...string) error {
	contentType := r.Header.Get("Content-Type")

	var err error
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err = r.ParseMultipartForm(multipartMemory); err == nil {
			err = decodeForm(v, r.MultipartForm.Value, listKeys)
		}
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		if err = r.ParseForm(); err == nil {
			err = decodeForm(v, r.PostForm, listKeys)
		}
	default:
		err = render.DecodeJSON(r.Body, v)
		if errors.Is(err, io.EOF) {
			// an empty body is an empty object; validation reports what is missing
			err = nil
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return apierrors.InvalidRequestWithError(err)
	}

	if err := v.Bind(r); err != nil {
		return apierrors.InvalidRequestWithError(err)
	}
	return b.validator.ValidateStruct(v)
}

// decodeForm maps form values onto the form tags of v. Empty values are
// dropped and checkbox values "on"/"off" read as booleans. List keys are
// rewritten to indexed paths; other keys keep their first value.
func decodeForm(v interface{}, values url.Values, listKeys []string) error {
	lists := make(map[string]bool, len(listKeys))
	for _, k := range listKeys {
		lists[k] = true
	}

	normalized := url.Values{}
	for key, vals := range values {
		n := 0
		for _, val := range vals {
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "":
				continue
			case "on":
				val = "true"
			case "off":
				val = "false"
			}
			if !lists[key] {
				normalized.Set(key, val)
				break
			}
			normalized.Set(key+"."+strconv.Itoa(n), val)
			n++
		}
	}

	dec := form.NewDecoder(nil)
	dec.IgnoreUnknownKeys(true)
	return dec.DecodeValues(v, normalized)
}
