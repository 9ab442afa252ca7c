package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-users-orders/internal/domains/users/domain"
	"github.com/Apurer/go-gin-users-orders/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/go-gin-users-orders/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM. Schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:100;not null"`
	Email     string    `gorm:"column:email;size:320;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user. The email check and the insert share a transaction; the unique index backs it up.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	record := userRecord{Name: clone.Name, Email: clone.Email}
	err := platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, record.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ports.ErrDuplicateEmail
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	return record.toDomain(), nil
}

// Update overwrites name and email of an existing user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	var record userRecord
	err := platformpostgres.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", clone.ID).Error; err != nil {
			return err
		}
		taken, err := emailTaken(tx, clone.Email, clone.ID)
		if err != nil {
			return err
		}
		if taken {
			return ports.ErrDuplicateEmail
		}
		if err := tx.Model(&record).Updates(map[string]any{
			"name":  clone.Name,
			"email": clone.Email,
		}).Error; err != nil {
			return err
		}
		record.Name, record.Email = clone.Name, clone.Email
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return record.toDomain(), nil
}

// GetByID fetches a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := platformpostgres.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return record.toDomain(), nil
}

// Exists reports whether a user with the identifier is stored.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := platformpostgres.Conn(ctx, r.db).Model(&userRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a user by identifier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := platformpostgres.Conn(ctx, r.db).Delete(&userRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List pushes filters, ordering and paging down to SQL.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	page := filter.Page.Normalize()
	query := platformpostgres.Conn(ctx, r.db).Model(&userRecord{})
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.NameContains != "" {
		query = query.Where("name LIKE ? ESCAPE '\\'", "%"+escapeLike(filter.NameContains)+"%")
	}
	var records []userRecord
	if err := query.Order("id ASC").Limit(page.Limit).Offset(page.Offset).Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func emailTaken(tx *gorm.DB, email string, exceptID int64) (bool, error) {
	var count int64
	query := tx.Model(&userRecord{}).Where("email = ?", email)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ports.ErrDuplicateEmail
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:    r.ID,
		Name:  r.Name,
		Email: r.Email,
	}
}
