package seeders

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/internal/devserver"
	"github.com/vperfumes/tracker/pkg/auth"
)

func init() {
	Register("companies", seedCompanies)
	Register("orders", seedOrders)
}

var demoCompanies = []struct {
	username string
	name     string
}{
	{"aroma1", "Aroma Delivery"},
	{"swift1", "Swift Couriers"},
}

// seedCompanies creates two demo company logins with password "secret123".
// Idempotent: existing usernames are left alone.
func seedCompanies(db *gorm.DB) error {
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		return err
	}

	for _, c := range demoCompanies {
		var n int64
		if err := db.Model(&devserver.User{}).Where("username = ?", c.username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		user := devserver.User{
			Username:     c.username,
			PasswordHash: hash,
			Role:         "company",
			CompanyName:  c.name,
			CreatedAt:    time.Now().UTC(),
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedOrders spreads a handful of demo orders over the last three days, one
// of each status per company. Skipped entirely when any orders exist.
func seedOrders(db *gorm.DB) error {
	var n int64
	if err := db.Model(&devserver.OrderRecord{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var companies []devserver.User
	if err := db.Where("role = ?", "company").Find(&companies).Error; err != nil {
		return err
	}

	statuses := models.Statuses()
	customers := []string{"Sara Ahmed", "Omar Khalil", "Lina Haddad"}
	areas := []string{"Al Mansour", "Karrada", "Zayouna"}

	seq := 1
	for _, company := range companies {
		for i, status := range statuses {
			date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")
			order := devserver.OrderRecord{
				OrderNumber:   orderNumber(seq),
				CustomerName:  customers[i%len(customers)],
				CustomerPhone: "07701234567",
				DeliveryArea:  areas[i%len(areas)],
				OrderPrice:    25000 * float64(i+1),
				DeliveryCost:  5000,
				Status:        status,
				OrderDate:     date,
				CompanyID:     company.ID,
				CompanyName:   company.CompanyName,
				CreatedAt:     time.Now().UTC(),
				UpdatedAt:     time.Now().UTC(),
			}
			if err := db.Create(&order).Error; err != nil {
				return err
			}
			seq++
		}
	}
	return nil
}

func orderNumber(seq int) string {
	return fmt.Sprintf("%s-%02d", time.Now().Format("20060102"), seq)
}
