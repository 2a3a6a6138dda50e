package devserver

import (
	"net/http"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/auth"
	"github.com/vperfumes/tracker/pkg/logger"
	"github.com/vperfumes/tracker/pkg/response"
)

// handleCompanies lists the company accounts. Admin only.
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.Companies()
	if err != nil {
		response.Internal(w)
		return
	}

	out := make([]models.CompanyAccount, 0, len(companies))
	for _, c := range companies {
		out = append(out, models.CompanyAccount{
			ID:          c.ID,
			Username:    c.Username,
			CompanyName: c.CompanyName,
			CreatedAt:   c.CreatedAt,
		})
	}
	response.OK(w, out)
}

// loadCompany fetches a company account by id or writes the error response.
func (s *Server) loadCompany(w http.ResponseWriter, r *http.Request) *User {
	user, err := s.store.UserByID(pathParam(r, "id"))
	if err != nil {
		response.Internal(w)
		return nil
	}
	if user == nil || user.Role != "company" {
		response.NotFound(w, "Company")
		return nil
	}
	return user
}

// handleDeleteCompany removes the login credential only. The company's
// orders keep their label and stay queryable by admins.
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	company := s.loadCompany(w, r)
	if company == nil {
		return
	}

	if err := s.store.DeleteUser(company.ID); err != nil {
		response.Internal(w)
		return
	}

	logger.Info("devserver: company deleted", "username", company.Username, "company", company.CompanyName)
	response.Message(w, "Company deleted")
}

// handleResetPassword regenerates a company's password and returns the
// plaintext exactly once. Only the bcrypt hash is stored; the plaintext is
// never logged.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	company := s.loadCompany(w, r)
	if company == nil {
		return
	}

	plain, err := auth.RandomPassword(10)
	if err != nil {
		response.Internal(w)
		return
	}
	hash, err := auth.HashPassword(plain)
	if err != nil {
		response.Internal(w)
		return
	}
	if err := s.store.UpdatePassword(company.ID, hash); err != nil {
		response.Internal(w)
		return
	}

	logger.Info("devserver: password reset", "username", company.Username)
	response.OK(w, models.ResetPasswordResult{
		CompanyName: company.CompanyName,
		Username:    company.Username,
		NewPassword: plain,
	})
}
