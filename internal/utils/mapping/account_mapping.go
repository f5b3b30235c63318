package mapping

import (
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		CompanyID:       d.CompanyID,
		Code:            d.Code,
		Name:            d.Name,
		Nature:          string(d.Nature),
		ParentAccountID: d.ParentAccountID,
		IsControl:       d.IsControl,
		OpeningBalance:  d.OpeningBalance,
		Classification:  string(d.Classification),
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		CompanyID:       m.CompanyID,
		Code:            m.Code,
		Name:            m.Name,
		Nature:          domain.AccountNature(m.Nature),
		ParentAccountID: m.ParentAccountID,
		IsControl:       m.IsControl,
		OpeningBalance:  m.OpeningBalance,
		Classification:  domain.Classification(m.Classification),
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
