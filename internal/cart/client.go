package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"example.com/event-planner/gateway/internal/models"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	DefaultPrice float64
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client calls the event backend cart and planner endpoints.
type Client struct {
	baseURL      string
	token        string
	defaultPrice float64
	httpClient   *http.Client
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewClient создает клиент корзины с заданными параметрами.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	defaultPrice := opts.DefaultPrice
	if defaultPrice <= 0 {
		defaultPrice = DefaultPrice
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		token:        opts.Token,
		defaultPrice: defaultPrice,
		httpClient:   httpClient,
		validate:     validator.New(),
		logger:       logger,
	}
}

// WithToken возвращает копию клиента с другим bearer-токеном.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// AddItem добавляет услугу поставщика в корзину события. Не повторяется при сбое.
func (c *Client) AddItem(ctx context.Context, eventID, stepID string, vendor models.Vendor) (AddResult, error) {
	const op = "add"

	if err := requireID(op, "event id", eventID); err != nil {
		return AddResult{}, err
	}

	reqBody := addItemRequest{
		VendorID:    vendor.ID,
		ServiceType: stepID,
		ServiceName: vendor.Name,
		Price:       ResolvePrice(vendor, c.defaultPrice),
		Quantity:    1,
		Notes:       "",
	}
	if err := c.validate.Struct(reqBody); err != nil {
		return AddResult{}, &ValidationError{Op: op, Err: err}
	}

	var parsed addItemResponse
	if err := c.do(ctx, op, http.MethodPost, c.eventPath(eventID, "cart", "add"), reqBody, &parsed); err != nil {
		return AddResult{}, err
	}

	result := AddResult{BudgetStatus: models.BudgetStatusOK}
	if parsed.BudgetStatus == string(models.BudgetStatusOverBudget) {
		result.BudgetStatus = models.BudgetStatusOverBudget
	}
	if parsed.Item != nil {
		item := parsed.Item.toModel()
		result.Item = &item
	}

	return result, nil
}

// RemoveItem удаляет позицию корзины; 404 возвращается как RequestError.
func (c *Client) RemoveItem(ctx context.Context, eventID, itemID string) error {
	const op = "remove"

	if err := requireID(op, "event id", eventID); err != nil {
		return err
	}
	if err := requireID(op, "item id", itemID); err != nil {
		return err
	}

	return c.retry(ctx, op, func() error {
		return c.do(ctx, op, http.MethodDelete, c.eventPath(eventID, "cart", "remove", itemID), nil, nil)
	})
}

// ClearCart удаляет все позиции корзины.
func (c *Client) ClearCart(ctx context.Context, eventID string) error {
	const op = "clear"

	if err := requireID(op, "event id", eventID); err != nil {
		return err
	}

	return c.retry(ctx, op, func() error {
		return c.do(ctx, op, http.MethodPost, c.eventPath(eventID, "cart", "clear"), nil, nil)
	})
}

// GetCart загружает актуальное содержимое корзины.
func (c *Client) GetCart(ctx context.Context, eventID string) (CartView, error) {
	const op = "get"

	if err := requireID(op, "event id", eventID); err != nil {
		return CartView{}, err
	}

	var parsed cartResponse
	err := c.retry(ctx, op, func() error {
		parsed = cartResponse{}
		return c.do(ctx, op, http.MethodGet, c.eventPath(eventID, "cart"), nil, &parsed)
	})
	if err != nil {
		return CartView{}, err
	}

	return parsed.toView(), nil
}

// Finalize превращает корзину в бронирования. Не повторяется при сбое.
func (c *Client) Finalize(ctx context.Context, eventID string) (models.FinalizeResult, error) {
	const op = "finalize"

	if err := requireID(op, "event id", eventID); err != nil {
		return models.FinalizeResult{}, err
	}

	var parsed finalizeResponse
	if err := c.do(ctx, op, http.MethodPost, c.eventPath(eventID, "planner", "finalize"), nil, &parsed); err != nil {
		return models.FinalizeResult{}, err
	}

	return parsed.toResult(), nil
}

// SaveProgress сохраняет маркеры прогресса планировщика (без содержимого корзины).
func (c *Client) SaveProgress(ctx context.Context, eventID string, currentStep int, completedSteps []int, stepData map[string]interface{}) error {
	const op = "save progress"

	if err := requireID(op, "event id", eventID); err != nil {
		return err
	}

	if completedSteps == nil {
		completedSteps = []int{}
	}
	if stepData == nil {
		stepData = map[string]interface{}{}
	}

	reqBody := progressRequest{
		CurrentStep:    currentStep,
		CompletedSteps: completedSteps,
		StepData:       stepData,
	}
	if err := c.validate.Struct(reqBody); err != nil {
		return &ValidationError{Op: op, Err: err}
	}

	return c.retry(ctx, op, func() error {
		return c.do(ctx, op, http.MethodPost, c.eventPath(eventID, "planner", "state"), reqBody, nil)
	})
}

func (c *Client) retry(ctx context.Context, op string, call func() error) error {
	err := call()
	if err == nil || !IsNetwork(err) || ctx.Err() != nil {
		return err
	}

	c.logger.LogAttrs(ctx, slog.LevelWarn, "retrying cart request",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)

	return call()
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body interface{}, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("cart %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("cart %s: build request: %w", op, err)
	}

	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &RequestError{Op: op, Status: response.StatusCode, Message: errorMessage(raw)}
	}

	if target == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("cart %s: decode response: %w", op, err)
	}

	return nil
}

func (c *Client) eventPath(eventID string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, "events", url.PathEscape(eventID))
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

func errorMessage(raw []byte) string {
	var apiErr errorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil {
		for _, msg := range []string{apiErr.Error, apiErr.Detail, apiErr.Message} {
			if msg != "" {
				return msg
			}
		}
	}

	return strings.TrimSpace(string(raw))
}

func requireID(op, name, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Op: op, Err: errors.New(name + " is required")}
	}
	return nil
}
