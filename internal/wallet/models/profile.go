package models

// Profile is the server-side account record joined with its wallet.
type Profile struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	CNIC         string `json:"cnic"`
	WalletID     string `json:"wallet_id"`
	ZakatEnabled bool   `json:"zakat_enabled"`
}

// Beneficiary is a saved recipient address. It has no lifecycle beyond
// explicit add/remove.
type Beneficiary struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"-"`
	WalletID    string `json:"beneficiary_wallet_id"`
	Name        string `json:"beneficiary_name"`
}
