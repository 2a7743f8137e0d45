package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/dealscope/models"
)

func main() {
	apiURL := os.Getenv("DEALSCOPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5000"
	}
	apiURL = strings.TrimRight(apiURL, "/")

	s := server.NewMCPServer(
		"dealscope",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	searchTool := mcp.NewTool("search_deals",
		mcp.WithDescription("Search Amazon India, Flipkart and Nykaa for a keyword and return products with prices and discounts. Optionally keep only items at or above a minimum discount."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search term, e.g. 'laptop' or 'lipstick'"),
		),
		mcp.WithNumber("max_products",
			mcp.Description("Maximum products per site (default: 12, max: 100)"),
		),
		mcp.WithString("discount",
			mcp.Description("Minimum discount percentage, e.g. '30' or '30%'. Empty keeps every item."),
		),
	)
	s.AddTool(searchTool, handleSearchDeals(apiURL))

	subscribeTool := mcp.NewTool("subscribe_alert",
		mcp.WithDescription("Save a price-drop alert for a keyword and discount threshold."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("Search term the alert watches"),
		),
		mcp.WithString("contact",
			mcp.Required(),
			mcp.Description("Email address or phone number to notify"),
		),
		mcp.WithString("discount",
			mcp.Description("Minimum discount percentage that triggers the alert"),
		),
		mcp.WithString("method",
			mcp.Description("Notification method (default: 'Email')"),
			mcp.Enum("Email", "SMS", "WhatsApp"),
		),
		mcp.WithString("product_title",
			mcp.Description("Title of a specific product to watch"),
		),
		mcp.WithString("product_url",
			mcp.Description("URL of a specific product to watch"),
		),
	)
	s.AddTool(subscribeTool, handleSubscribe(apiURL))

	listTool := mcp.NewTool("list_alerts",
		mcp.WithDescription("List every saved price-drop alert."),
	)
	s.AddTool(listTool, handleListAlerts(apiURL))

	deleteTool := mcp.NewTool("delete_alert",
		mcp.WithDescription("Delete a saved price-drop alert by ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Alert ID as returned by subscribe_alert or list_alerts"),
		),
	)
	s.AddTool(deleteTool, handleDeleteAlert(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiCall sends a request to the DealScope API and decodes a successful
// response into out. Failed requests surface the API's error message.
func apiCall(ctx context.Context, client *http.Client, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp models.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			if errResp.Code != "" {
				return fmt.Errorf("[%s] %s", errResp.Code, errResp.Error)
			}
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func handleSearchDeals(apiURL string) server.ToolHandlerFunc {
	// A full search drives three browsers through several pages each.
	client := &http.Client{Timeout: 10 * time.Minute}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := request.RequireString("keyword")
		if err != nil || strings.TrimSpace(keyword) == "" {
			return mcp.NewToolResultError("keyword is required"), nil
		}

		payload := map[string]any{
			"keyword":  keyword,
			"discount": request.GetString("discount", ""),
		}
		if n, ok := request.GetArguments()["max_products"]; ok {
			payload["max_products"] = n
		}

		var resp models.ScrapeResponse
		if err := apiCall(ctx, client, http.MethodPost, apiURL+"/api/scrape", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatDeals(&resp)), nil
	}
}

func formatDeals(resp *models.ScrapeResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Keyword: %s\nProducts: %d\n", resp.Keyword, resp.CountAll)

	for site, msg := range resp.SiteErrors {
		fmt.Fprintf(&sb, "Warning: %s failed: %s\n", site, msg)
	}

	for i, item := range resp.Items {
		fmt.Fprintf(&sb, "\n%d. [%s] %s\n", i+1, item.Site, item.Title)
		fmt.Fprintf(&sb, "   Price: ₹%s", item.PriceText)
		if item.OriginalPriceText != "" && item.OriginalPriceText != "N/A" {
			fmt.Fprintf(&sb, " (was ₹%s)", item.OriginalPriceText)
		}
		if item.DiscountPercent != nil {
			fmt.Fprintf(&sb, ", %.0f%% off", *item.DiscountPercent)
		}
		sb.WriteString("\n")
		if item.URL != "" {
			fmt.Fprintf(&sb, "   %s\n", item.URL)
		}
	}
	return sb.String()
}

func handleSubscribe(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := request.RequireString("keyword")
		if err != nil {
			return mcp.NewToolResultError("keyword is required"), nil
		}
		contact, err := request.RequireString("contact")
		if err != nil {
			return mcp.NewToolResultError("contact is required"), nil
		}

		payload := map[string]any{
			"keyword":  keyword,
			"contact":  contact,
			"discount": request.GetString("discount", ""),
			"method":   request.GetString("method", ""),
			"product": map[string]string{
				"title": request.GetString("product_title", ""),
				"url":   request.GetString("product_url", ""),
			},
		}

		var resp models.AlertResponse
		if err := apiCall(ctx, client, http.MethodPost, apiURL+"/api/subscribe", payload, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		a := resp.Alert
		return mcp.NewToolResultText(fmt.Sprintf("Alert %s saved: %q at %s%% via %s to %s",
			a.ID, a.ProductTitle, orAny(a.Discount), a.Method, a.Contact)), nil
	}
}

func handleListAlerts(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var resp models.AlertsResponse
		if err := apiCall(ctx, client, http.MethodGet, apiURL+"/api/alerts", nil, &resp); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if len(resp.Alerts) == 0 {
			return mcp.NewToolResultText("No alerts saved."), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Alerts: %d\n", len(resp.Alerts))
		for _, a := range resp.Alerts {
			fmt.Fprintf(&sb, "\n- %s\n  Keyword: %s\n  Product: %s\n  Discount: %s%%\n  Notify: %s %s\n  Created: %s\n",
				a.ID, a.Keyword, a.ProductTitle, orAny(a.Discount), a.Method, a.Contact, a.CreatedAt)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleDeleteAlert(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		var resp models.DeleteAlertResponse
		err = apiCall(ctx, client, http.MethodPost, apiURL+"/api/alerts/delete", map[string]string{"id": id}, &resp)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if resp.Deleted == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No alert with ID %s.", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted alert %s.", id)), nil
	}
}

func orAny(discount string) string {
	if discount == "" {
		return "any "
	}
	return discount
}
