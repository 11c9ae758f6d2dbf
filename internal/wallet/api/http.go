package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
)

const defaultTimeout = 15 * time.Second

var _ Client = (*HTTPClient)(nil)

// HTTPClient talks JSON over HTTP to the ledger service.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a ledger client against baseURL, e.g.
// "http://localhost:8080". A per-request timeout is applied by the underlying
// http.Client; callers may impose shorter deadlines via ctx.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The server writes plain-text errors via http.Error.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Kind:    kindFromStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) CreateWallet(ctx context.Context) (*models.WalletKeys, error) {
	var keys models.WalletKeys
	if err := c.post(ctx, "/wallet/create", nil, &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}

func (c *HTTPClient) FundWallet(ctx context.Context, walletID string, amount int64) (string, error) {
	req := struct {
		WalletID string `json:"wallet_id"`
		Amount   int64  `json:"amount"`
	}{walletID, amount}

	var resp struct {
		UTXOID string `json:"utxo_id"`
	}
	if err := c.post(ctx, "/wallet/fund", req, &resp); err != nil {
		return "", err
	}
	return resp.UTXOID, nil
}

func (c *HTTPClient) GetBalance(ctx context.Context, walletID string) (*models.Snapshot, error) {
	var resp struct {
		Wallet  string        `json:"wallet"`
		Balance int64         `json:"balance"`
		UTXOs   []models.UTXO `json:"utxos"`
	}
	if err := c.get(ctx, "/wallet/balance?wallet="+url.QueryEscape(walletID), &resp); err != nil {
		return nil, err
	}
	return &models.Snapshot{WalletID: resp.Wallet, Balance: resp.Balance, UTXOs: resp.UTXOs}, nil
}

// historyRow matches one row of the wallet history payload. created_at is a
// free-form string from the server's database layer.
type historyRow struct {
	TxID       string `json:"tx_id"`
	SenderID   string `json:"sender_wallet_id"`
	ReceiverID string `json:"receiver_wallet_id"`
	Amount     int64  `json:"amount"`
	Type       string `json:"tx_type"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func (c *HTTPClient) GetHistory(ctx context.Context, walletID string, limit int) ([]models.TransactionRecord, error) {
	path := "/wallet/history?wallet=" + url.QueryEscape(walletID) + "&limit=" + strconv.Itoa(limit)

	var resp struct {
		Wallet       string       `json:"wallet"`
		Transactions []historyRow `json:"transactions"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	records := make([]models.TransactionRecord, 0, len(resp.Transactions))
	for _, row := range resp.Transactions {
		records = append(records, models.TransactionRecord{
			ID:         row.TxID,
			SenderID:   row.SenderID,
			ReceiverID: row.ReceiverID,
			Amount:     row.Amount,
			Type:       row.Type,
			Status:     models.TxStatus(row.Status),
			Timestamp:  parseServerTime(row.CreatedAt),
		})
	}
	return records, nil
}

// parseServerTime parses the server's created_at strings. The format is not
// part of the wire contract, so unknown layouts yield a zero time rather
// than an error.
func parseServerTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

type submitResponse struct {
	Status string `json:"status"`
	TxID   string `json:"txid"`
}

func (c *HTTPClient) SignAndSubmit(ctx context.Context, req SignAndSubmitRequest) (string, error) {
	body := struct {
		SenderID   string `json:"sender_id"`
		ReceiverID string `json:"receiver_id"`
		Amount     int64  `json:"amount"`
		Note       string `json:"note"`
		SenderPub  string `json:"sender_pub"`
		SenderPriv string `json:"sender_priv"`
	}{req.SenderID, req.ReceiverID, req.Amount, req.Note, req.SenderPub, req.SenderPrivKey}

	var resp submitResponse
	if err := c.post(ctx, "/tx/sign-and-submit", body, &resp); err != nil {
		return "", err
	}
	return resp.TxID, nil
}

func (c *HTTPClient) SubmitSigned(ctx context.Context, req SubmitSignedRequest) (string, error) {
	body := struct {
		SenderID   string   `json:"sender_id"`
		ReceiverID string   `json:"receiver_id"`
		Amount     int64    `json:"amount"`
		Note       string   `json:"note"`
		Inputs     []string `json:"inputs"`
		SenderPub  string   `json:"sender_pub"`
		Signature  string   `json:"signature"`
	}{req.SenderID, req.ReceiverID, req.Amount, req.Note, req.Inputs, req.SenderPub, req.Signature}

	var resp submitResponse
	if err := c.post(ctx, "/tx/submit", body, &resp); err != nil {
		return "", err
	}
	return resp.TxID, nil
}

func (c *HTTPClient) GetTransactionDetails(ctx context.Context, txID string) (*models.TransactionDetails, error) {
	var details models.TransactionDetails
	if err := c.get(ctx, "/tx/details?tx_id="+url.QueryEscape(txID), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *HTTPClient) ListBlocks(ctx context.Context) (*models.ChainView, error) {
	var view models.ChainView
	if err := c.get(ctx, "/blockchain/blocks", &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *HTTPClient) Mine(ctx context.Context, minerAddress string) (*models.Block, error) {
	req := struct {
		MinerAddress string `json:"miner_address"`
	}{minerAddress}

	var resp struct {
		Index        int64    `json:"block_index"`
		Hash         string   `json:"block_hash"`
		Nonce        int64    `json:"nonce"`
		Difficulty   int      `json:"difficulty"`
		Transactions []string `json:"transactions"`
		PreviousHash string   `json:"previous_hash"`
		Timestamp    int64    `json:"timestamp"`
	}
	if err := c.post(ctx, "/blockchain/mine", req, &resp); err != nil {
		return nil, err
	}
	return &models.Block{
		Index:        resp.Index,
		Hash:         resp.Hash,
		Nonce:        resp.Nonce,
		Difficulty:   resp.Difficulty,
		Transactions: resp.Transactions,
		PreviousHash: resp.PreviousHash,
		Timestamp:    resp.Timestamp,
	}, nil
}

func (c *HTTPClient) ValidateChain(ctx context.Context) (*models.ChainStatus, error) {
	var status models.ChainStatus
	if err := c.get(ctx, "/blockchain/validate", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) ListPending(ctx context.Context) ([]string, error) {
	var resp struct {
		PendingCount int      `json:"pending_count"`
		PendingTxs   []string `json:"pending_txs"`
	}
	if err := c.get(ctx, "/blockchain/pending", &resp); err != nil {
		return nil, err
	}
	return resp.PendingTxs, nil
}

func (c *HTTPClient) RequestSignupOTP(ctx context.Context, email, fullName, cnic string) error {
	req := struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		CNIC     string `json:"cnic"`
	}{email, fullName, cnic}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/auth/signup", req, &resp)
}

func (c *HTTPClient) ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*models.Registration, error) {
	body := struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		FullName string `json:"full_name"`
		CNIC     string `json:"cnic"`
		Password string `json:"password"`
	}{req.Email, req.Code, req.FullName, req.CNIC, req.Password}

	var reg models.Registration
	if err := c.post(ctx, "/auth/verify-otp", body, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var resp struct {
		UserID     string `json:"user_id"`
		WalletID   string `json:"wallet_id"`
		Email      string `json:"email"`
		FullName   string `json:"full_name"`
		CNIC       string `json:"cnic"`
		PublicKey  string `json:"public_key"`
		PrivateKey string `json:"private_key"`
		Balance    int64  `json:"balance"`
	}
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	return &models.LoginResult{
		Session: models.Session{
			WalletID:   resp.WalletID,
			PublicKey:  resp.PublicKey,
			UserID:     resp.UserID,
			Email:      resp.Email,
			FullName:   resp.FullName,
			CNIC:       resp.CNIC,
			PrivateKey: resp.PrivateKey,
		},
		Balance: resp.Balance,
	}, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, walletID string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.get(ctx, "/profile/get?wallet_id="+url.QueryEscape(walletID), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID, fullName string, zakatEnabled bool) error {
	req := struct {
		UserID       string `json:"user_id"`
		FullName     string `json:"full_name"`
		ZakatEnabled bool   `json:"zakat_enabled"`
	}{userID, fullName, zakatEnabled}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/profile/update", req, &resp)
}

func (c *HTTPClient) ListBeneficiaries(ctx context.Context, userID string) ([]models.Beneficiary, error) {
	var resp struct {
		UserID        string               `json:"user_id"`
		Beneficiaries []models.Beneficiary `json:"beneficiaries"`
	}
	if err := c.get(ctx, "/profile/beneficiaries?user_id="+url.QueryEscape(userID), &resp); err != nil {
		return nil, err
	}
	for i := range resp.Beneficiaries {
		resp.Beneficiaries[i].OwnerUserID = resp.UserID
	}
	return resp.Beneficiaries, nil
}

func (c *HTTPClient) AddBeneficiary(ctx context.Context, userID, walletID, name string) error {
	req := struct {
		UserID          string `json:"user_id"`
		WalletID        string `json:"wallet_id"`
		BeneficiaryName string `json:"beneficiary_name"`
	}{userID, walletID, name}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/profile/beneficiaries/add", req, &resp)
}

func (c *HTTPClient) RemoveBeneficiary(ctx context.Context, beneficiaryID string) error {
	req := struct {
		BeneficiaryID string `json:"beneficiary_id"`
	}{beneficiaryID}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/profile/beneficiaries/remove", req, &resp)
}

func (c *HTTPClient) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	req := struct {
		UserID   string `json:"user_id"`
		NewEmail string `json:"new_email"`
	}{userID, newEmail}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/auth/request-email-change", req, &resp)
}

func (c *HTTPClient) ConfirmEmailChange(ctx context.Context, userID, newEmail, code string) error {
	req := struct {
		UserID   string `json:"user_id"`
		NewEmail string `json:"new_email"`
		Code     string `json:"code"`
	}{userID, newEmail, code}

	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/auth/confirm-email-change", req, &resp)
}

func (c *HTTPClient) ZakatPoolBalance(ctx context.Context) (*models.ZakatPool, error) {
	var pool models.ZakatPool
	if err := c.get(ctx, "/zakat/pool-balance", &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (c *HTTPClient) TriggerZakat(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	return c.post(ctx, "/zakat/trigger", nil, &resp)
}
