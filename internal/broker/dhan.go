package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"dhan-signal-trader/internal/config"
	trderrors "dhan-signal-trader/internal/errors"
	"dhan-signal-trader/internal/models"
)

// DhanClient talks to the Dhan v2 REST API for prices and super-order
// submission. Symbol resolution is delegated to the scrip master.
type DhanClient struct {
	*ScripMaster

	clientID    string
	accessToken string
	baseURL     string
	client      *http.Client
	logger      zerolog.Logger
}

// NewDhanClient creates a Dhan broker client.
func NewDhanClient(cfg config.BrokerConfig, logger zerolog.Logger) *DhanClient {
	return &DhanClient{
		ScripMaster: NewScripMaster(cfg.MasterURL, cfg.MasterCache, logger),
		clientID:    cfg.ClientID,
		accessToken: cfg.AccessToken,
		baseURL:     cfg.BaseURL,
		client:      &http.Client{Timeout: 5 * time.Second},
		logger:      logger,
	}
}

func (c *DhanClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("access-token", c.accessToken)
	req.Header.Set("client-id", c.clientID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			ErrorCode    string `json:"errorCode"`
			ErrorMessage string `json:"errorMessage"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return trderrors.NewBrokerError(apiErr.ErrorCode,
			fmt.Sprintf("%s %s returned %s: %s", method, path, resp.Status, apiErr.ErrorMessage), nil)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

// LTP fetches the last traded price for an instrument.
func (c *DhanClient) LTP(ctx context.Context, instrument models.Instrument) (float64, error) {
	secID, err := strconv.Atoi(instrument.SecurityID)
	if err != nil {
		return 0, fmt.Errorf("non-numeric security id %q", instrument.SecurityID)
	}

	payload := map[string][]int{string(instrument.Exchange): {secID}}

	var resp struct {
		Status string `json:"status"`
		Data   map[string]map[string]struct {
			LastPrice float64 `json:"last_price"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/marketfeed/ltp", payload, &resp); err != nil {
		return 0, trderrors.Wrap(err, "ltp fetch failed")
	}

	if resp.Status != "success" {
		return 0, trderrors.Wrapf(trderrors.ErrMarketDataUnavailable, "ltp status %q", resp.Status)
	}

	item, ok := resp.Data[string(instrument.Exchange)][instrument.SecurityID]
	if !ok || item.LastPrice <= 0 {
		return 0, trderrors.Wrapf(trderrors.ErrMarketDataUnavailable, "no price for %s", instrument.SecurityID)
	}
	return item.LastPrice, nil
}

// superOrderRequest is the Dhan super-order payload: entry plus target,
// stop-loss and trailing legs in one request.
type superOrderRequest struct {
	DhanClientID    string  `json:"dhanClientId"`
	TransactionType string  `json:"transactionType"`
	ExchangeSegment string  `json:"exchangeSegment"`
	ProductType     string  `json:"productType"`
	OrderType       string  `json:"orderType"`
	SecurityID      string  `json:"securityId"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	Validity        string  `json:"validity"`
	StopLossPrice   float64 `json:"stopLossPrice"`
	TargetPrice     float64 `json:"targetPrice"`
	TrailingJump    float64 `json:"trailingJump"`
}

// Submit places the execution plan as a Dhan super order.
func (c *DhanClient) Submit(ctx context.Context, plan models.ExecutionPlan) (string, error) {
	req := superOrderRequest{
		DhanClientID:    c.clientID,
		TransactionType: string(plan.Action),
		ExchangeSegment: string(plan.Exchange),
		ProductType:     string(plan.Product),
		OrderType:       string(plan.OrderType),
		SecurityID:      plan.SecurityID,
		Quantity:        plan.Quantity,
		Price:           round2(plan.LimitPrice),
		Validity:        "DAY",
		StopLossPrice:   round2(plan.StopLossPrice),
		TargetPrice:     round2(plan.TargetPrice),
		TrailingJump:    round2(plan.TrailingJump),
	}

	var resp struct {
		Data struct {
			OrderID string `json:"orderId"`
		} `json:"data"`
		OrderID string `json:"orderId"`
	}
	if err := c.do(ctx, http.MethodPost, "/super/orders", req, &resp); err != nil {
		return "", trderrors.Wrap(err, "super order failed")
	}

	orderID := resp.Data.OrderID
	if orderID == "" {
		orderID = resp.OrderID
	}
	if orderID == "" {
		return "", trderrors.Wrap(trderrors.ErrOrderRejected, "no order id in response")
	}

	c.logger.Info().
		Str("order_id", orderID).
		Str("symbol", plan.Symbol).
		Int("quantity", plan.Quantity).
		Msg("Super order placed")
	return orderID, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
