package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"
)

// GetBodyRetry: simple GET with N retries in case of temporary errors
func GetBodyRetry(url string, nbRetries int) ([]byte, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	return GetBodyRetryReq(req, nbRetries)
}

// GetBodyRetryReq executes the request with N retries in case of temporary errors
func GetBodyRetryReq(req *http.Request, nbRetries int) ([]byte, error) {
	return DoBodyRetry(&http.Client{}, req, nbRetries)
}

// DoBodyRetry executes the request on the given client with N retries in case
// of temporary errors. The request body, if any, must have GetBody set
// (http.NewRequest sets it for the usual buffer types).
func DoBodyRetry(client *http.Client, req *http.Request, nbRetries int) ([]byte, error) {
	var e *neturl.Error
	var body []byte
	var err error
	var resp *http.Response

	for i := range nbRetries + 1 {
		time.Sleep(((1 << i) - 1) * time.Second) // Exponential backoff, starting at 0
		if req.GetBody != nil {
			if req.Body, err = req.GetBody(); err != nil {
				return nil, fmt.Errorf("GetBody: %w", err)
			}
		}
		resp, err = client.Do(req)
		if err != nil {
			if !errors.As(err, &e) || !e.Temporary() {
				return nil, err
			}
			continue
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			body, _ = io.ReadAll(resp.Body)
			err = fmt.Errorf("%s: %v", resp.Status, body)
			if TemporaryHTTPCode(resp.StatusCode) {
				err = MakeTemporary(err)
				continue
			}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, MakeFatal(err)
			}
			return nil, err
		}
		if body, err = io.ReadAll(resp.Body); err == nil {
			return body, nil
		}
	}
	return nil, err
}
