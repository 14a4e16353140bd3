// Package classifier submits cropped hand regions to a hosted sign
// classification service and post-processes the predictions.
package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Prediction is one raw candidate from the hosted service. Box coordinates
// follow the service's center+size convention.
type Prediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// InferenceClient submits an encoded image to one model of the hosted
// classification service.
type InferenceClient interface {
	Infer(ctx context.Context, imageJPEG []byte, modelID string) ([]Prediction, error)
}

// HostedClient is an InferenceClient backed by a Roboflow-style hosted
// inference HTTP API.
type HostedClient struct {
	client *resty.Client
	apiKey string
}

// NewHostedClient creates a client for the given inference API base URL.
func NewHostedClient(apiURL, apiKey string, timeout time.Duration) *HostedClient {
	return &HostedClient{
		client: resty.New().SetBaseURL(apiURL).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

type inferResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// Infer posts the base64-encoded image to the model endpoint and returns
// its predictions. The image is staged entirely in memory.
func (c *HostedClient) Infer(ctx context.Context, imageJPEG []byte, modelID string) ([]Prediction, error) {
	var result inferResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetQueryParam("api_key", c.apiKey).
		SetBody(base64.StdEncoding.EncodeToString(imageJPEG)).
		SetResult(&result).
		Post("/" + modelID)
	if err != nil {
		return nil, fmt.Errorf("infer %s: %w", modelID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("infer %s: server returned %s", modelID, resp.Status())
	}

	return result.Predictions, nil
}
