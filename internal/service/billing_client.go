package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BillingChecker 账务状态查询接口
// Answers whether a linked estimate or invoice has been finalized; a sketch
// with a finalized link is archived instead of deleted.
type BillingChecker interface {
	EstimateFinalized(ctx context.Context, estimateID string) (bool, error)
	InvoiceFinalized(ctx context.Context, invoiceID string) (bool, error)
}

// billingStatusResponse 账务服务状态响应
type billingStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Finalized bool   `json:"finalized"`
}

// BillingClient 账务服务 API 客户端
type BillingClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

var _ BillingChecker = (*BillingClient)(nil)

// NewBillingClient 创建账务服务客户端
func NewBillingClient(baseURL string, logger *zap.Logger) *BillingClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BillingClient{
		httpClient: client,
		logger:     logger,
	}
}

// EstimateFinalized 查询报价单是否已定稿
func (c *BillingClient) EstimateFinalized(ctx context.Context, estimateID string) (bool, error) {
	return c.finalized(ctx, "estimate", fmt.Sprintf("/api/v1/estimates/%s/status", estimateID))
}

// InvoiceFinalized 查询发票是否已定稿
func (c *BillingClient) InvoiceFinalized(ctx context.Context, invoiceID string) (bool, error) {
	return c.finalized(ctx, "invoice", fmt.Sprintf("/api/v1/invoices/%s/status", invoiceID))
}

func (c *BillingClient) finalized(ctx context.Context, kind, path string) (bool, error) {
	var response billingStatusResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		Get(path)
	if err != nil {
		c.logger.Error("billing API call failed",
			zap.String("kind", kind),
			zap.Error(err))
		return false, fmt.Errorf("failed to call billing API: %w", err)
	}
	// An unknown document cannot be finalized.
	if resp.StatusCode() == 404 {
		return false, nil
	}
	if resp.IsError() {
		c.logger.Error("billing API returned error",
			zap.String("kind", kind),
			zap.Int("status_code", resp.StatusCode()))
		return false, fmt.Errorf("billing API returned status %d", resp.StatusCode())
	}
	return response.Finalized, nil
}
