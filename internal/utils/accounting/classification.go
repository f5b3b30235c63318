package accounting

import (
	"strings"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

var (
	currentAssetKeywords     = []string{"cash", "bank", "receivable", "inventory", "stock", "prepaid", "short", "current"}
	currentLiabilityKeywords = []string{"payable", "short", "accrued", "overdraft", "current"}
)

// Classify places an asset or liability account on the balance sheet. An
// explicit classification always wins; otherwise the account name is matched
// against keywords and anything unmatched falls into the non-current bucket.
// Other natures return Unclassified.
func Classify(account domain.Account) domain.Classification {
	if account.Classification != domain.Unclassified {
		return account.Classification
	}
	var keywords []string
	switch account.Nature {
	case domain.Asset:
		keywords = currentAssetKeywords
	case domain.Liability:
		keywords = currentLiabilityKeywords
	default:
		return domain.Unclassified
	}
	name := strings.ToLower(account.Name)
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return domain.Current
		}
	}
	return domain.NonCurrent
}
