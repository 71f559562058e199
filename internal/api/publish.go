package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/blacktop/multipost/internal/multired"
)

type singlePublishRequest struct {
	Text string `json:"text"`
}

type multiPublishRequest struct {
	Text           string   `json:"text"`
	TargetNetworks []string `json:"target_networks"`
}

// PublishSingle posts text to one network's endpoint under the 60-second
// budget. Exactly one HTTP call is issued; there are no retries.
func (c *Client) PublishSingle(ctx context.Context, target multired.Target, text string) (*multired.SingleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.singleTimeout)
	defer cancel()

	var resp multired.SingleResponse
	path := fmt.Sprintf("/api/test/%s", target)
	if err := c.do(ctx, http.MethodPost, path, singlePublishRequest{Text: text}, &resp); err != nil {
		return nil, withBudget(err, c.singleTimeout.String())
	}
	return &resp, nil
}

// PublishMulti posts text plus the ordered target list to the batch endpoint
// under the 180-second budget. One call covers every network; the backend
// fans out server-side.
func (c *Client) PublishMulti(ctx context.Context, text string, targets []multired.Target) (*multired.MultiResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.multiTimeout)
	defer cancel()

	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, string(t))
	}

	var resp multired.MultiResponse
	req := multiPublishRequest{Text: text, TargetNetworks: names}
	if err := c.do(ctx, http.MethodPost, "/api/posts/publish-multi", req, &resp); err != nil {
		return nil, withBudget(err, c.multiTimeout.String())
	}
	return &resp, nil
}

// withBudget annotates timeout errors with the budget that expired.
func withBudget(err error, budget string) error {
	var timeout multired.TimeoutError
	if errors.As(err, &timeout) {
		timeout.Budget = budget
		return timeout
	}
	return err
}
