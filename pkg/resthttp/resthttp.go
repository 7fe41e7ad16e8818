package resthttp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

var runOnce sync.Once
var restyClient *resty.Client

// Client shared resty client
func Client() *resty.Client {
	runOnce.Do(func() {
		restyClient = resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Charset", "utf-8").
			SetTimeout(10 * time.Second)
	})

	return restyClient
}

// Request new resty request bound to ctx
func Request(ctx context.Context) *resty.Request {
	return Client().R().SetContext(ctx)
}

// ParseResponse decode a response body into obj, failing on non-2xx status
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		return errors.New(string(r.Body()))
	}

	if obj != nil {
		return json.Unmarshal(r.Body(), obj)
	}

	return nil
}
