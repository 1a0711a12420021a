package models

import (
	"time"

	"github.com/mattn/go-nulltype"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID           uint                 `json:"id" gorm:"primaryKey" binding:"required"`
	Email        string               `json:"email" gorm:"uniqueIndex"`
	PasswordHash string               `json:"-"`
	DisplayName  string               `json:"display_name"`
	AvatarPath   string               `json:"-"`
	HomeLat      nulltype.NullFloat64 `json:"home_lat"`
	HomeLng      nulltype.NullFloat64 `json:"home_lng"`
	HomeAddress  nulltype.NullString  `json:"home_address"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"-"`
	DeletedAt    gorm.DeletedAt       `json:"-" gorm:"index"`
}

func (u User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasHome reports whether the user has saved a home location.
func (u User) HasHome() bool {
	return u.HomeLat.Valid() && u.HomeLng.Valid()
}

func UserIDExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where(&User{ID: id}).Limit(1).Count(&count).Error
	return count > 0, err
}

func UserEmailExists(db *gorm.DB, email string) (bool, error) {
	var count int64
	err := db.Model(&User{}).Where(&User{Email: email}).Limit(1).Count(&count).Error
	return count > 0, err
}

func FindUserByID(db *gorm.DB, id uint) (User, error) {
	var user User
	err := db.First(&user, id).Error
	return user, err
}

func FindUserByEmail(db *gorm.DB, email string) (User, error) {
	var user User
	err := db.Where(&User{Email: email}).First(&user).Error
	return user, err
}

func CountUsers(db *gorm.DB) (int, error) {
	var count int64
	err := db.Model(&User{}).Count(&count).Error
	return int(count), err
}

func DeleteUser(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&FavoriteRoute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&ScheduledRoute{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&User{ID: id}).Error
	})
}
