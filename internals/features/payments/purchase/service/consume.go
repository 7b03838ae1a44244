package service

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sertifikatku_backend/internals/features/payments/purchase/model"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPurchaseNotPaid  = errors.New("payment not completed")
	ErrPurchaseUsed     = errors.New("purchase already used")
)

// ConsumePurchase flips purchase_used false → true with a single conditional
// update. RowsAffected == 1 is the only success path; a concurrent duplicate
// loses the race and gets ErrPurchaseUsed. Callers MUST call RevertPurchaseUse
// if the work the consumption gates fails afterwards.
func ConsumePurchase(db *gorm.DB, purchaseID uuid.UUID) (*model.PurchaseModel, error) {
	var purchase model.PurchaseModel
	if err := db.Where("purchase_id = ?", purchaseID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	if purchase.PurchaseStatus != model.PurchaseStatusSuccess {
		return nil, ErrPurchaseNotPaid
	}
	if purchase.PurchaseUsed {
		return nil, ErrPurchaseUsed
	}

	res := db.Model(&model.PurchaseModel{}).
		Where("purchase_id = ? AND purchase_used = ? AND purchase_status = ?",
			purchaseID, false, model.PurchaseStatusSuccess).
		Update("purchase_used", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, ErrPurchaseUsed
	}

	purchase.PurchaseUsed = true
	return &purchase, nil
}

// RevertPurchaseUse puts the flag back after a failed render/persist so the
// buyer can retry. Best effort: a failure here is logged, not returned.
func RevertPurchaseUse(db *gorm.DB, purchaseID uuid.UUID) {
	if err := db.Model(&model.PurchaseModel{}).
		Where("purchase_id = ?", purchaseID).
		Update("purchase_used", false).Error; err != nil {
		log.Printf("[ERROR] failed to revert purchase %s usage flag: %v", purchaseID, err)
	}
}
