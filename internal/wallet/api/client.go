// Package api is the typed client for the remote ledger service. Every
// remote capability is one method with typed input and output; failures are
// mapped to *Error with a status-derived Kind. Retry policy belongs to
// callers, never to this layer.
package api

import (
	"context"

	"github.com/asimjadoon/ledgerwallet/internal/wallet/models"
)

// SignAndSubmitRequest is a transfer signed server-side. The private key
// material travels base64-encoded inside the request body.
type SignAndSubmitRequest struct {
	SenderID      string
	ReceiverID    string
	Amount        int64
	Note          string
	SenderPub     string
	SenderPrivKey string
}

// SubmitSignedRequest is the legacy pre-signed transfer: inputs were selected
// and the payload signed locally before submission.
type SubmitSignedRequest struct {
	SenderID   string
	ReceiverID string
	Amount     int64
	Note       string
	Inputs     []string
	SenderPub  string
	Signature  string
}

// ConfirmSignupRequest completes a registration challenge.
type ConfirmSignupRequest struct {
	Email    string
	Code     string
	FullName string
	CNIC     string
	Password string
}

// Client exposes every remote ledger capability used by the wallet.
type Client interface {
	Health(ctx context.Context) error

	CreateWallet(ctx context.Context) (*models.WalletKeys, error)
	FundWallet(ctx context.Context, walletID string, amount int64) (string, error)
	GetBalance(ctx context.Context, walletID string) (*models.Snapshot, error)
	GetHistory(ctx context.Context, walletID string, limit int) ([]models.TransactionRecord, error)

	SignAndSubmit(ctx context.Context, req SignAndSubmitRequest) (string, error)
	SubmitSigned(ctx context.Context, req SubmitSignedRequest) (string, error)
	GetTransactionDetails(ctx context.Context, txID string) (*models.TransactionDetails, error)

	ListBlocks(ctx context.Context) (*models.ChainView, error)
	Mine(ctx context.Context, minerAddress string) (*models.Block, error)
	ValidateChain(ctx context.Context) (*models.ChainStatus, error)
	ListPending(ctx context.Context) ([]string, error)

	RequestSignupOTP(ctx context.Context, email, fullName, cnic string) error
	ConfirmSignup(ctx context.Context, req ConfirmSignupRequest) (*models.Registration, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)

	GetProfile(ctx context.Context, walletID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID, fullName string, zakatEnabled bool) error
	ListBeneficiaries(ctx context.Context, userID string) ([]models.Beneficiary, error)
	AddBeneficiary(ctx context.Context, userID, walletID, name string) error
	RemoveBeneficiary(ctx context.Context, beneficiaryID string) error
	RequestEmailChange(ctx context.Context, userID, newEmail string) error
	ConfirmEmailChange(ctx context.Context, userID, newEmail, code string) error

	ZakatPoolBalance(ctx context.Context) (*models.ZakatPool, error)
	TriggerZakat(ctx context.Context) error
}
