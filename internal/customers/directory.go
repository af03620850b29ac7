package customers

import (
	"errors"
	"strings"

	"bayi-backend/internal/models"

	"gorm.io/gorm"
)

// FindByPhone: Telefonla nokta sorgu.
func FindByPhone(db *gorm.DB, phone string) (*models.Customer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var cust models.Customer
	if err := db.Where("phone = ?", phone).First(&cust).Error; err != nil {
		return nil, err
	}
	return &cust, nil
}

// FindOrCreate: Telefon doluysa ve kayıtlıysa mevcut müşteri döner; satış
// bağlamından gelen isim/email mevcut kaydın üstüne yazılmaz, sadece boş
// email geri doldurulur. Telefon boşsa tekilleştirme anahtarı olmadığı için
// her seferinde yeni müşteri açılır.
func FindOrCreate(db *gorm.DB, name, phone, email string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	if phone != "" {
		existing, err := FindByPhone(db, phone)
		if err == nil {
			if existing.Email == "" && email != "" {
				if err := db.Model(existing).Update("email", email).Error; err != nil {
					return nil, err
				}
				existing.Email = email
			}
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		cust := models.Customer{Name: name, Phone: &phone, Email: email}
		if err := db.Create(&cust).Error; err != nil {
			// Aynı telefonla eşzamanlı ilk satış: unique index'e takıldıysak
			// kaydı yazan kazandı, biz onu kullanırız.
			if existing, ferr := FindByPhone(db, phone); ferr == nil {
				return existing, nil
			}
			return nil, err
		}
		return &cust, nil
	}

	// Telefonsuz müşteri: birleştirilemez, yeni kayıt
	cust := models.Customer{Name: name, Email: email}
	if err := db.Create(&cust).Error; err != nil {
		return nil, err
	}
	return &cust, nil
}
