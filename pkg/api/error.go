package api

import (
	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
	"github.com/instaintelli/cli/pkg/client"
)

// CheckResponse checks if response is successful, returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	return client.GetClient().Check(resp, err)
}

// ParseResponseBody parses response body into target interface
func ParseResponseBody(body []byte, target interface{}) error {
	return json.Unmarshal(body, target)
}

// decode checks resp and unmarshals its body into target.
func decode(resp *resty.Response, err error, target interface{}) error {
	if err := CheckResponse(resp, err); err != nil {
		return err
	}
	if target == nil || len(resp.Body()) == 0 {
		return nil
	}
	return ParseResponseBody(resp.Body(), target)
}
