package ml

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteClassifier delegates scoring to an external model-serving endpoint.
// The remote service owns the model artifact; this client only carries the
// wire contract.
type RemoteClassifier struct {
	base string
	rest *resty.Client
}

// NewRemote creates a client for a remote scoring service.
func NewRemote(baseURL string, timeout time.Duration) *RemoteClassifier {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetRetryCount(2)
	r.SetRetryWaitTime(100 * time.Millisecond)
	return &RemoteClassifier{base: baseURL, rest: r}
}

type remoteScoreReq struct {
	Features []float64 `json:"features"`
}

type remoteScoreResp struct {
	Probability float64 `json:"prob"`
	Error       string  `json:"error,omitempty"`
}

// PredictProbability implements Classifier over HTTP.
func (c *RemoteClassifier) PredictProbability(vector []float64) (float64, error) {
	if err := validateVector(vector, 0); err != nil {
		return 0, err
	}

	out := &remoteScoreResp{}
	resp, err := c.rest.R().
		SetBody(remoteScoreReq{Features: vector}).
		SetResult(out).
		Post(c.base + "/predict")
	if err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("remote predict: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	if out.Error != "" {
		return 0, fmt.Errorf("remote predict: %s", out.Error)
	}
	if out.Probability < 0 || out.Probability > 1 || out.Probability != out.Probability {
		return 0, fmt.Errorf("remote predict: invalid probability %v", out.Probability)
	}
	return out.Probability, nil
}
