package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttpclient"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
)

type client struct {
	baseURL string
	sender  myhttpclient.HTTPSender
	breaker *gobreaker.CircuitBreaker[IntentResponse]
	logger  mylog.Logger
}

// NewClient creates a Gateway talking to the remote pricing/intent backend.
// A circuit breaker keeps a misbehaving backend from being hammered; a tripped
// breaker surfaces like any other gateway failure and keeps the session in review.
func NewClient(baseURL string) Gateway {
	return &client{
		baseURL: baseURL,
		sender:  myhttpclient.NewJSONHTTPClient(),
		breaker: gobreaker.NewCircuitBreaker[IntentResponse](gobreaker.Settings{
			Name:    "pricing-gateway",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: mylog.New("pricing"),
	}
}

func (g *client) RequestIntent(c context.Context, req IntentRequest) (IntentResponse, error) {
	resp, err := g.breaker.Execute(func() (IntentResponse, error) {
		return g.requestIntent(c, req)
	})
	if err != nil {
		g.logger.Log(c, "", mylog.SeverityWarn, "Pricing gateway call failed: %s", err)
		if gwErr, ok := err.(GatewayError); ok {
			return IntentResponse{}, gwErr
		}
		// breaker-open and other transport-level errors
		return IntentResponse{}, GatewayError{Reason: err.Error()}
	}
	return resp, nil
}

func (g *client) requestIntent(c context.Context, req IntentRequest) (IntentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return IntentResponse{}, GatewayError{Reason: fmt.Sprintf("error marshalling request: %s", err)}
	}

	_, respPayload, err := g.sender.Send(c, http.MethodPost, g.baseURL+"/checkout/intent", body)
	if err != nil {
		return IntentResponse{}, GatewayError{Reason: fmt.Sprintf("error calling pricing gateway: %s", err)}
	}

	resp := IntentResponse{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return IntentResponse{}, GatewayError{Reason: fmt.Sprintf("malformed response: %s", err)}
	}

	// The response is validated as a whole: an error field or a missing
	// handle is a failure regardless of the transport-level status.
	err = validateResponse(resp)
	if err != nil {
		return IntentResponse{}, err
	}

	return resp, nil
}

func validateResponse(resp IntentResponse) error {
	if resp.Error != "" {
		return GatewayError{Reason: resp.Error}
	}
	if resp.ClientSecret == "" {
		return GatewayError{Reason: "response is missing a payment handle"}
	}
	if resp.OrderID == "" {
		return GatewayError{Reason: "response is missing an order identifier"}
	}
	if !resp.Totals.NonNegative() {
		return GatewayError{Reason: "response contains negative totals"}
	}
	return nil
}
