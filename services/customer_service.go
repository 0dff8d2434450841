package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/kendall-kelly/printshop-api/models"
	"gorm.io/gorm"
)

// CustomerInput is the request body for creating or editing a customer
type CustomerInput struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
	TaxID         *string `json:"tax_id"`
	Notes         *string `json:"notes"`
}

// CustomerService manages customers
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a customer service
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// List returns a page of customers sorted by name, optionally filtered by a search term
func (s *CustomerService) List(ctx context.Context, search string, page Page) ([]models.Customer, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{}).Scopes(customerSearch(search))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}
	var customers []models.Customer
	if err := q.Order("name").Scopes(page.Scope).Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// Get loads a customer with its orders, newest first
func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

// Create adds a customer
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, Errorf(ErrValidation, "name is required")
	}
	c := models.Customer{Country: "USA"}
	if err := applyCustomerInput(&c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

// Update edits a customer
func (s *CustomerService) Update(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	if err := applyCustomerInput(&c, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Orders").Save(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return &c, nil
}

func customerSearch(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" {
			return db
		}
		like := "%" + strings.ToLower(term) + "%"
		return db.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
}

func applyCustomerInput(c *models.Customer, in CustomerInput) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Errorf(ErrValidation, "name cannot be empty")
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return Errorf(ErrValidation, "invalid email address %q", email)
			}
		}
		c.Email = email
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.ContactPerson, in.ContactPerson)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.City, in.City)
	set(&c.State, in.State)
	set(&c.PostalCode, in.PostalCode)
	set(&c.Country, in.Country)
	set(&c.TaxID, in.TaxID)
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	return nil
}
