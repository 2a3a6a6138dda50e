package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/app/view"
)

func sample() []models.Order {
	return []models.Order{
		{ID: "a", OrderNumber: "1001", CustomerName: "Sara Ahmed", CustomerPhone: "07701234567",
			DeliveryArea: "Karrada", Status: models.StatusOngoing, OrderDate: "2025-03-10", CompanyName: "Aroma Delivery"},
		{ID: "b", OrderNumber: "1002", CustomerName: "Omar Khalil", CustomerPhone: "07809876543",
			DeliveryArea: "Al Mansour", Status: models.StatusDone, OrderDate: "2025-03-12", CompanyName: "Swift Couriers"},
		{ID: "c", OrderNumber: "2001", CustomerName: "Lina Haddad", CustomerPhone: "07501112233",
			DeliveryArea: "Zayouna", Status: models.StatusCancelled, OrderDate: "2025-03-11", CompanyName: "Aroma Delivery"},
	}
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestFilterAll(t *testing.T) {
	got := view.Filter(sample(), view.All, view.All, "")
	assert.Len(t, got, 3)
}

func TestFilterStatusAndCompanyAreANDed(t *testing.T) {
	got := view.Filter(sample(), models.StatusOngoing, "Aroma Delivery", "")
	assert.Equal(t, []string{"a"}, ids(got))

	got = view.Filter(sample(), models.StatusDone, "Aroma Delivery", "")
	assert.Empty(t, got)
}

func TestFilterQueryIsORedAcrossFields(t *testing.T) {
	orders := sample()

	assert.Equal(t, []string{"a"}, ids(view.Filter(orders, view.All, view.All, "1001")))
	assert.Equal(t, []string{"b"}, ids(view.Filter(orders, view.All, view.All, "omar")))
	assert.Equal(t, []string{"c"}, ids(view.Filter(orders, view.All, view.All, "zayouna")))
}

func TestFilterPhoneIsRawSubstring(t *testing.T) {
	orders := sample()

	assert.Equal(t, []string{"a"}, ids(view.Filter(orders, view.All, view.All, "0770123")))
	// Phone matching does no normalisation.
	assert.Empty(t, view.Filter(orders, view.All, view.All, "+9647701"))
}

func TestFilterDateSearchedAsWritten(t *testing.T) {
	// Users type dates day-first; stored dates are YYYY-MM-DD.
	got := view.Filter(sample(), view.All, view.All, "10-03-2025")
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestFilterCombinesStatusAndQuery(t *testing.T) {
	got := view.Filter(sample(), models.StatusCancelled, view.All, "lina")
	assert.Equal(t, []string{"c"}, ids(got))

	got = view.Filter(sample(), models.StatusDone, view.All, "lina")
	assert.Empty(t, got)
}

func TestReverseDate(t *testing.T) {
	assert.Equal(t, "10-03-2025", view.ReverseDate("2025-03-10"))
	assert.Equal(t, "notadate", view.ReverseDate("notadate"))
}

func TestSortByDateDesc(t *testing.T) {
	got := view.SortByDateDesc(sample())
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestSortUnparseableDatesSinkToEnd(t *testing.T) {
	orders := append(sample(), models.Order{ID: "d", OrderDate: "bogus"})
	got := view.SortByDateDesc(orders)
	assert.Equal(t, "d", got[len(got)-1].ID)
}

func TestSortIsStableAndPure(t *testing.T) {
	orders := []models.Order{
		{ID: "x", OrderDate: "2025-03-10"},
		{ID: "y", OrderDate: "2025-03-10"},
	}
	got := view.SortByDateDesc(orders)
	require.Equal(t, []string{"x", "y"}, ids(got))

	// Input slice untouched.
	got[0].ID = "mutated"
	assert.Equal(t, "x", orders[0].ID)
}

func TestCompaniesDistinctFirstSeen(t *testing.T) {
	got := view.Companies(sample())
	assert.Equal(t, []string{"Aroma Delivery", "Swift Couriers"}, got)
}

func TestCompaniesSkipsEmptyLabels(t *testing.T) {
	orders := append(sample(), models.Order{ID: "d"})
	assert.Len(t, view.Companies(orders), 2)
}
