package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vperfumes/tracker/pkg/validate"
)

type orderForm struct {
	OrderNumber string  `json:"order_number" validate:"required"`
	Status      string  `json:"status"       validate:"required,in=جاري,تم,ملغي"`
	OrderDate   string  `json:"order_date"   validate:"required,date"`
	Price       float64 `json:"price"        validate:"min=0"`
}

func TestStructValid(t *testing.T) {
	errs := validate.Struct(orderForm{
		OrderNumber: "1001",
		Status:      "جاري",
		OrderDate:   "2025-03-10",
		Price:       25000,
	})
	assert.False(t, validate.HasErrors(errs))
}

func TestStructRequired(t *testing.T) {
	errs := validate.Struct(orderForm{Status: "تم", OrderDate: "2025-03-10"})
	assert.Contains(t, errs, "order_number")
}

func TestStructInRule(t *testing.T) {
	errs := validate.Struct(orderForm{
		OrderNumber: "1001",
		Status:      "shipped",
		OrderDate:   "2025-03-10",
	})
	assert.Contains(t, errs, "status")
}

func TestStructDateRule(t *testing.T) {
	for _, bad := range []string{"10-03-2025", "2025-13-01", "2025-02-30", "not-a-date"} {
		errs := validate.Struct(orderForm{OrderNumber: "1", Status: "تم", OrderDate: bad})
		assert.Contains(t, errs, "order_date", "date %q should fail", bad)
	}
}

func TestStructPointerInput(t *testing.T) {
	form := &orderForm{OrderNumber: "1", Status: "ملغي", OrderDate: "2025-01-02"}
	assert.False(t, validate.HasErrors(validate.Struct(form)))
}

type passwordForm struct {
	Password string `json:"password" validate:"required,min=6"`
}

func TestStructMinLength(t *testing.T) {
	assert.Contains(t, validate.Struct(passwordForm{Password: "abc"}), "password")
	assert.Empty(t, validate.Struct(passwordForm{Password: "abcdef"}))
}

func TestDate(t *testing.T) {
	assert.True(t, validate.Date("2025-03-10"))
	assert.False(t, validate.Date("2025-3-10"))
	assert.False(t, validate.Date(""))
}

func TestMinLength(t *testing.T) {
	assert.True(t, validate.MinLength("كلمة سر", 6))
	assert.False(t, validate.MinLength("abc", 6))
}
