package browser

import (
	"encoding/base64"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/teams-token-grabber/internal/logger"
)

// maxPendingResponses bounds the responses waiting for their body to finish loading.
// Entries whose loading never finishes are evicted instead of accumulating.
const maxPendingResponses = 64

// pendingResponse is a wanted response whose body has not finished loading yet.
type pendingResponse struct {
	url    string
	status int
}

// interceptResponses enables the Network domain and forwards wanted responses to observer.
// Listening stops when the session is closed.
func (s *Session) interceptResponses(observer ResponseObserver) error {
	page := s.page.Context(s.ctx)

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return fmt.Errorf("failed to enable network domain: %w", err)
	}

	pending, err := lru.New[proto.NetworkRequestID, pendingResponse](maxPendingResponses)
	if err != nil {
		return fmt.Errorf("failed to create pending response table: %w", err)
	}

	wait := page.EachEvent(
		func(ev *proto.NetworkResponseReceived) {
			if ev.Response == nil || !observer.Wants(ev.Response.URL) {
				return
			}

			pending.Add(ev.RequestID, pendingResponse{
				url:    ev.Response.URL,
				status: ev.Response.Status,
			})
		},
		func(ev *proto.NetworkLoadingFinished) {
			response, ok := pending.Get(ev.RequestID)
			if !ok {
				return
			}

			pending.Remove(ev.RequestID)

			// Body fetches are CDP calls and must not block the event loop.
			s.listeners.Add(1)

			go func() {
				defer s.listeners.Done()

				s.deliverResponse(ev.RequestID, response, observer)
			}()
		},
		func(ev *proto.NetworkLoadingFailed) {
			pending.Remove(ev.RequestID)
		},
	)

	s.listeners.Add(1)

	go func() {
		defer s.listeners.Done()

		wait()
	}()

	return nil
}

func (s *Session) deliverResponse(requestID proto.NetworkRequestID, response pendingResponse, observer ResponseObserver) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf(s.ctx, "Response body fetch panic recovered: %v", r)
		}
	}()

	result, err := proto.NetworkGetResponseBody{RequestID: requestID}.Call(s.page.Context(s.ctx))
	if err != nil {
		logger.Debugf(s.ctx, "Failed to fetch response body of %s: %v", response.url, err)

		return
	}

	body, err := decodeResponseBody(result.Body, result.Base64Encoded)
	if err != nil {
		logger.Debugf(s.ctx, "Failed to decode response body of %s: %v", response.url, err)

		return
	}

	observer.ObserveResponse(s.ctx, Response{
		URL:    response.url,
		Status: response.status,
		Body:   body,
	})
}

func decodeResponseBody(body string, isBase64 bool) ([]byte, error) {
	if !isBase64 {
		return []byte(body), nil
	}

	decoded, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 body: %w", err)
	}

	return decoded, nil
}
