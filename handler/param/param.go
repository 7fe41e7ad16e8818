package param

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
}

// Binding decodes query values into v, then the json body when one is
// present; body fields win over query fields
func Binding(r *http.Request, v interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	if len(r.Form) > 0 {
		if err := decoder.Decode(v, r.Form); err != nil {
			return err
		}
	}

	if r.Body != nil && r.ContentLength > 0 {
		defer r.Body.Close()
		return json.NewDecoder(r.Body).Decode(v)
	}

	return nil
}
