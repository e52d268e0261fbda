package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"fundilink/config"
	"fundilink/models"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	timestampLayout = "20060102150405"
)

// Daraja timestamps are East Africa Time regardless of where this
// server runs.
var nairobi = time.FixedZone("EAT", 3*60*60)

// Client talks to the Safaricom Daraja API. It satisfies the payment
// package's Gateway interface.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passKey        string
	callbackBase   string
	httpClient     *http.Client
}

func NewClient() *Client {
	base := sandboxBaseURL
	if config.AppConfig.MpesaEnvironment == "production" {
		base = productionBaseURL
	}
	return &Client{
		baseURL:        base,
		consumerKey:    config.AppConfig.MpesaConsumerKey,
		consumerSecret: config.AppConfig.MpesaConsumerSecret,
		shortCode:      config.AppConfig.MpesaShortCode,
		passKey:        config.AppConfig.MpesaPassKey,
		callbackBase:   config.AppConfig.CallbackBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	url := c.baseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("access token request returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode access token response: %w", err)
	}
	return tr.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

// STKPush prompts payerPhone for amount (given in the smallest currency
// unit; Daraja bills whole shillings). The returned checkout request id
// is the correlation key the asynchronous callback carries back.
func (c *Client) STKPush(ctx context.Context, amount int64, payerPhone, accountRef, callbackPath, description string) (string, string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", "", err
	}

	ts := time.Now().In(nairobi).Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passKey + ts))

	shillings := amount / 100
	if amount%100 != 0 {
		shillings++
	}
	payload := stkPushRequest{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            shillings,
		PartyA:            payerPhone,
		PartyB:            c.shortCode,
		PhoneNumber:       payerPhone,
		CallBackURL:       c.callbackBase + callbackPath,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	url := c.baseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("stk push request failed: %w", err)
	}
	defer resp.Body.Close()

	var sr stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", "", fmt.Errorf("failed to decode stk push response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := sr.ErrorMessage
		if msg == "" {
			msg = sr.ResponseDescription
		}
		return "", "", fmt.Errorf("stk push returned %d: %s", resp.StatusCode, msg)
	}
	if sr.ResponseCode != "0" {
		return "", "", fmt.Errorf("stk push rejected: %s", sr.ResponseDescription)
	}
	return sr.CheckoutRequestID, sr.MerchantRequestID, nil
}

type callbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback decodes a Daraja STK callback body into the gateway-
// neutral outcome the reconciler consumes. ResultCode 0 means settled;
// anything else is a failure with the desc carried through.
func ParseCallback(body []byte) (*models.PaymentOutcome, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse stk callback: %w", err)
	}
	cb := env.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("stk callback missing CheckoutRequestID")
	}

	outcome := &models.PaymentOutcome{
		CorrelationID: cb.CheckoutRequestID,
		Success:       cb.ResultCode == 0,
		ResultCode:    cb.ResultCode,
		ResultDesc:    cb.ResultDesc,
	}
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok {
				outcome.ReceiptNumber = v
			}
		case "Amount":
			if v, ok := item.Value.(float64); ok {
				outcome.Amount = int64(math.Round(v * 100))
			}
		case "TransactionDate":
			if v, ok := item.Value.(float64); ok {
				if t, err := time.ParseInLocation(timestampLayout, fmt.Sprintf("%.0f", v), nairobi); err == nil {
					outcome.PaidAt = t
				}
			}
		}
	}
	if outcome.Success && outcome.PaidAt.IsZero() {
		outcome.PaidAt = time.Now()
	}
	return outcome, nil
}
