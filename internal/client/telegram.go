package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"fetcha/internal/misc"
)

// PriceAlert carries everything the delivery side needs to tell a user
// about a significant price movement.
type PriceAlert struct {
	RecipientID   int64
	ProductName   string
	PreviousPrice float64
	NewPrice      float64
	PercentChange float64
	URL           string
}

type telegramSendRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramSendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendPriceAlert delivers a price-change alert through the chat platform's
// send-message API.
func (c Client) SendPriceAlert(ctx context.Context, alert PriceAlert) error {
	arrow := "\U0001F53A" // red up
	if alert.NewPrice < alert.PreviousPrice {
		arrow = "\U0001F53B" // red down
	}
	text := fmt.Sprintf(
		"%s *PRICE CHANGE ALERT*\n\n%s\n$%.2f → $%.2f\n%+.1f%%\n\n[View Product](%s)",
		arrow,
		misc.StringLimit(alert.ProductName, 45),
		alert.PreviousPrice,
		alert.NewPrice,
		alert.PercentChange,
		alert.URL,
	)

	reqBody, err := json.Marshal(telegramSendRequest{
		ChatID:                alert.RecipientID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.Wrapf(err, "SendPriceAlert: error marshalling request for recipient: %d", alert.RecipientID)
	}

	req, err := newRequest(ctx, http.MethodPost, c.TelegramAPIURL+"/bot"+c.TelegramBotToken+"/sendMessage", bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrapf(err, "SendPriceAlert: error creating HTTP request for recipient: %d", alert.RecipientID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "SendPriceAlert: error doing request for recipient: %d", alert.RecipientID)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.Logger.Errorf("SendPriceAlert: error closing response body for recipient: %d, err: %v", alert.RecipientID, err)
		}
	}()

	respBody, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300000))
	if err != nil {
		return errors.Wrapf(err, "SendPriceAlert: error reading response body for recipient: %d", alert.RecipientID)
	}

	var sendResp telegramSendResponse
	if err = json.Unmarshal(respBody, &sendResp); err != nil {
		return errors.Wrapf(err, "SendPriceAlert: error unmarshalling response body for recipient: %d, body: %s", alert.RecipientID, respBody)
	}
	if !sendResp.OK {
		return errors.Errorf("SendPriceAlert: delivery rejected for recipient: %d, description: %s", alert.RecipientID, sendResp.Description)
	}
	c.Logger.Debugf("SendPriceAlert: delivered alert to recipient: %d, product: %s", alert.RecipientID, misc.StringLimit(alert.ProductName, 45))
	return nil
}
