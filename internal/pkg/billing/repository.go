package billing

import (
	"time"

	"github.com/ManuelReschke/SubSync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service. Each
// method is a single atomic point operation; the service never wraps them in
// a multi-statement transaction.
type Repository interface {
	FindUserByEmail(email string) (*models.User, error)
	FindUserByCustomerID(customerID string) (*models.User, error)
	SaveUser(user *models.User) error
	UpsertSubscription(sub *models.Subscription) error
	CreateWebhookEvent(event *models.BillingWebhookEvent) error
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) FindUserByCustomerID(customerID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) SaveUser(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *gormRepository) UpsertSubscription(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"period",
			"start_date",
			"end_date",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ?", sub.UserID).First(sub).Error
}

func (r *gormRepository) CreateWebhookEvent(event *models.BillingWebhookEvent) error {
	return r.db.Create(event).Error
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
