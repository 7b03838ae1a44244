package service

import (
	"crypto/sha512"
	"encoding/hex"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

var SnapClient snap.Client

// Panggil saat bootstrap app (sandbox)
func InitMidtrans(serverKey string) {
	SnapClient.New(serverKey, midtrans.Sandbox)
}

// GenerateSnapToken creates a Snap order for one purchase and returns the
// token + redirect_url the frontend opens.
func GenerateSnapToken(orderID string, amount int, name, email string) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: name,
			Email: email,
		},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}

	return resp.Token, resp.RedirectURL, nil
}

// VerifyWebhookSignature checks the notification signature_key:
// sha512(order_id + status_code + gross_amount + serverKey).
func VerifyWebhookSignature(orderID, statusCode, grossAmount, serverKey, signatureKey string) bool {
	if signatureKey == "" {
		return false
	}
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:]) == signatureKey
}
