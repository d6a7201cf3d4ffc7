// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/models"
	"github.com/creolabs/creator-ledger/internal/utils"
)

// PaymentService is the on/off ramp between external money and ledger
// credits. One credit corresponds to one cent charged through Stripe.
type PaymentService struct {
	db     *gorm.DB
	cfg    *config.Config
	ledger *LedgerService
}

type CreateDepositRequest struct {
	Amount int64 `json:"amount" validate:"required,min=100"` // credits
}

type DepositIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

type ConfirmDepositRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type PayoutRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"` // credits
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, ledgerSvc *LedgerService) *PaymentService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		cfg:    cfg,
		ledger: ledgerSvc,
	}
}

// CreateDepositIntent opens a Stripe PaymentIntent for the requested credit
// amount. Credits are not minted until ConfirmDeposit sees the intent
// succeed.
func (s *PaymentService) CreateDepositIntent(address ledger.Address, req *CreateDepositRequest) (*DepositIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount), // 1 credit = 1 cent
		Currency: stripe.String("usd"),
	}
	params.AddMetadata("ledger_address", string(address))

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	transfer := &models.Transfer{
		Address:          string(address),
		Kind:             models.TransferKindDeposit,
		Amount:           req.Amount,
		PaymentReference: pi.ID,
		Status:           models.TransferStatusPending,
	}
	if err := s.db.Create(transfer).Error; err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	return &DepositIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmDeposit checks the PaymentIntent with Stripe and, on success,
// credits the ledger account and completes the journal row.
func (s *PaymentService) ConfirmDeposit(address ledger.Address, req *ConfirmDepositRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var transfer models.Transfer
	if err := s.db.Where("payment_reference = ? AND address = ?", req.PaymentIntentID, string(address)).
		First(&transfer).Error; err != nil {
		return errors.New("deposit not found")
	}

	if transfer.Status == models.TransferStatusCompleted {
		return errors.New("deposit already credited")
	}

	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		if err := s.ledger.Deposit(address, transfer.Amount); err != nil {
			return fmt.Errorf("failed to credit ledger account: %w", err)
		}
		transfer.Status = models.TransferStatusCompleted

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusProcessing:
		transfer.Status = models.TransferStatusPending

	default:
		transfer.Status = models.TransferStatusFailed
	}

	if err := s.db.Save(&transfer).Error; err != nil {
		return fmt.Errorf("failed to update deposit: %w", err)
	}

	if transfer.Status == models.TransferStatusFailed {
		return errors.New("payment did not succeed")
	}
	return nil
}

// RequestPayout debits the ledger account and journals a pending payout for
// the operations team to settle out of band.
func (s *PaymentService) RequestPayout(address ledger.Address, req *PayoutRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if req.Amount < s.cfg.Payment.MinimumPayout {
		return fmt.Errorf("minimum payout is %d credits", s.cfg.Payment.MinimumPayout)
	}

	if s.ledger.Core().BalanceOf(address) < req.Amount {
		return errors.New("insufficient balance for payout")
	}

	// Debit first so a crash cannot pay out credits that were never held.
	if err := s.ledger.Withdraw(address, req.Amount); err != nil {
		return fmt.Errorf("failed to debit ledger account: %w", err)
	}

	transfer := &models.Transfer{
		Address: string(address),
		Kind:    models.TransferKindPayout,
		Amount:  req.Amount,
		Status:  models.TransferStatusPending,
	}
	if err := s.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}

	return nil
}

func (s *PaymentService) GetTransferHistory(address ledger.Address, params utils.PaginationParams) ([]models.Transfer, int64, error) {
	query := s.db.Model(&models.Transfer{}).Where("address = ?", string(address))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transfers []models.Transfer
	if err := query.Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transfers: %w", err)
	}

	return transfers, total, nil
}

func (s *PaymentService) GetBalance(address ledger.Address) map[string]interface{} {
	var pendingPayouts int64
	if s.db != nil {
		s.db.Model(&models.Transfer{}).
			Where("address = ? AND kind = ? AND status = ?",
				string(address), models.TransferKindPayout, models.TransferStatusPending).
			Select("COALESCE(SUM(amount), 0)").Scan(&pendingPayouts)
	}

	return map[string]interface{}{
		"available_balance": s.ledger.Core().BalanceOf(address),
		"pending_payouts":   pendingPayouts,
		"currency":          "credits",
	}
}
