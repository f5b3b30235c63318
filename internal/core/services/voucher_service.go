package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/utils/accounting"
	"github.com/SscSPs/gl_engine/internal/utils/pagination"
)

// voucherService owns the voucher lifecycle. Every mutation runs inside a
// store transaction that holds the voucher row lock, so two operations on
// the same voucher never interleave.
type voucherService struct {
	BaseService
	voucherRepo  portsrepo.VoucherRepositoryFacade
	epsilon      decimal.Decimal
	maxRetries   int
	retryBackoff time.Duration
}

// VoucherServiceOption is a functional option for configuring the voucher service
type VoucherServiceOption func(*voucherService)

// WithEpsilon sets the tolerance used by the debit/credit comparison.
func WithEpsilon(epsilon decimal.Decimal) VoucherServiceOption {
	return func(s *voucherService) {
		s.epsilon = epsilon
	}
}

// WithPostRetry retries Post and Reverse up to maxRetries times on
// transient store failures, waiting backoff*attempt between tries.
func WithPostRetry(maxRetries int, backoff time.Duration) VoucherServiceOption {
	return func(s *voucherService) {
		s.maxRetries = maxRetries
		s.retryBackoff = backoff
	}
}

// WithVoucherClock overrides the clock used for audit and posting timestamps.
func WithVoucherClock(clock func() time.Time) VoucherServiceOption {
	return func(s *voucherService) {
		s.clock = clock
	}
}

// NewVoucherService creates a new voucher service with the provided options
func NewVoucherService(repo portsrepo.VoucherRepositoryFacade, options ...VoucherServiceOption) portssvc.VoucherSvcFacade {
	svc := &voucherService{
		voucherRepo:  repo,
		epsilon:      accounting.DefaultEpsilon,
		maxRetries:   3,
		retryBackoff: 50 * time.Millisecond,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// GetVoucherByID retrieves a voucher with its entries.
func (s *voucherService) GetVoucherByID(ctx context.Context, companyID, voucherID string) (*domain.Voucher, error) {
	voucher, err := s.voucherRepo.FindVoucherByID(ctx, companyID, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}
	return voucher, nil
}

// ListVouchers retrieves a page of voucher headers.
func (s *voucherService) ListVouchers(ctx context.Context, companyID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	filter, err := voucherFilter(params)
	if err != nil {
		return nil, err
	}
	if params.NextToken != nil && *params.NextToken != "" {
		if _, err := pagination.DecodeToken(*params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
	}

	vouchers, next, err := s.voucherRepo.ListVouchers(ctx, companyID, filter, pagination.ClampLimit(params.Limit), params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers", slog.String("company_id", companyID))
		return nil, err
	}

	resp := &dto.ListVouchersResponse{
		Vouchers:  make([]dto.VoucherResponse, len(vouchers)),
		NextToken: next,
	}
	for i := range vouchers {
		resp.Vouchers[i] = dto.ToVoucherResponse(&vouchers[i])
	}
	return resp, nil
}

func voucherFilter(params dto.ListVouchersParams) (domain.VoucherFilter, error) {
	var filter domain.VoucherFilter
	if params.Type != "" {
		vt, err := domain.ParseVoucherType(params.Type)
		if err != nil {
			return filter, err
		}
		filter.Type = &vt
	}
	if params.Status != "" {
		status := domain.VoucherStatus(strings.ToUpper(params.Status))
		if !status.Valid() {
			return filter, fmt.Errorf("%w: unknown voucher status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &status
	}
	if params.FromDate != "" {
		from, err := parseDateParam("from", params.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if params.ToDate != "" {
		to, err := parseDateParam("to", params.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &to
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return filter, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	return filter, nil
}

func parseDateParam(name, value string) (time.Time, error) {
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", apperrors.ErrValidation, name)
	}
	return t, nil
}

// CreateDraft opens an empty draft and reserves its number.
func (s *voucherService) CreateDraft(ctx context.Context, companyID string, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	voucherType, err := domain.ParseVoucherType(string(req.VoucherType))
	if err != nil {
		return nil, err
	}
	voucherDate, err := parseDateParam("voucherDate", req.VoucherDate)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	voucher := domain.Voucher{
		VoucherID:   uuid.NewString(),
		CompanyID:   companyID,
		VoucherType: voucherType,
		VoucherDate: voucherDate,
		Status:      domain.Draft,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Narration:   strings.TrimSpace(req.Narration),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err = s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
		n, err := tx.NextVoucherNumber(ctx, companyID, voucherType)
		if err != nil {
			return err
		}
		voucher.VoucherNo = domain.FormatVoucherNo(voucherType, n)
		return tx.InsertVoucher(ctx, voucher)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create draft voucher", slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Draft voucher created",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("voucher_no", voucher.VoucherNo))
	return &voucher, nil
}

// UpdateDraft changes a draft's date or narration.
func (s *voucherService) UpdateDraft(ctx context.Context, companyID, voucherID string, req dto.UpdateVoucherRequest, userID string) (*domain.Voucher, error) {
	var updated *domain.Voucher
	err := s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
		voucher, err := tx.FindVoucherForUpdate(ctx, companyID, voucherID)
		if err != nil {
			return err
		}
		if err := voucher.RequireDraft(); err != nil {
			return err
		}
		if req.VoucherDate != nil {
			date, err := parseDateParam("voucherDate", *req.VoucherDate)
			if err != nil {
				return err
			}
			voucher.VoucherDate = date
		}
		if req.Narration != nil {
			voucher.Narration = strings.TrimSpace(*req.Narration)
		}
		voucher.LastUpdatedAt = s.Now()
		voucher.LastUpdatedBy = userID
		if err := tx.UpdateVoucherHeader(ctx, *voucher); err != nil {
			return err
		}
		updated = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddEntry appends one line to a draft. The draft's totals are kept in step.
func (s *voucherService) AddEntry(ctx context.Context, companyID, voucherID string, req dto.AddEntryRequest, userID string) (*domain.VoucherEntry, error) {
	now := s.Now()
	entry := domain.VoucherEntry{
		EntryID:      uuid.NewString(),
		VoucherID:    voucherID,
		AccountID:    req.AccountID,
		DebitAmount:  req.DebitAmount,
		CreditAmount: req.CreditAmount,
		Narration:    strings.TrimSpace(req.Narration),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
		voucher, err := tx.FindVoucherForUpdate(ctx, companyID, voucherID)
		if err != nil {
			return err
		}
		if err := voucher.RequireDraft(); err != nil {
			return err
		}
		if err := entry.Validate(); err != nil {
			return err
		}

		accounts, err := tx.FindAccountsByIDs(ctx, companyID, []string{entry.AccountID})
		if err != nil {
			return err
		}
		account, ok := accounts[entry.AccountID]
		if !ok {
			return apperrors.NewNotFoundError("account " + entry.AccountID)
		}
		if err := account.Postable(); err != nil {
			return err
		}

		entry.LineNo = nextLineNo(voucher.Entries)
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return err
		}

		voucher.Entries = append(voucher.Entries, entry)
		voucher.TotalDebit, voucher.TotalCredit = accounting.Totals(voucher.Entries)
		voucher.LastUpdatedAt = now
		voucher.LastUpdatedBy = userID
		return tx.UpdateVoucherHeader(ctx, *voucher)
	})
	if err != nil {
		if !isRuleViolation(err) {
			s.LogError(ctx, err, "Failed to add voucher entry", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Voucher entry added",
		slog.String("voucher_id", voucherID),
		slog.String("entry_id", entry.EntryID),
		slog.String("account_id", entry.AccountID))
	return &entry, nil
}

func nextLineNo(entries []domain.VoucherEntry) int {
	maxNo := 0
	for _, e := range entries {
		if e.LineNo > maxNo {
			maxNo = e.LineNo
		}
	}
	return maxNo + 1
}

// RemoveEntry deletes one line from a draft.
func (s *voucherService) RemoveEntry(ctx context.Context, companyID, voucherID, entryID, userID string) error {
	return s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
		voucher, err := tx.FindVoucherForUpdate(ctx, companyID, voucherID)
		if err != nil {
			return err
		}
		if err := voucher.RequireDraft(); err != nil {
			return err
		}

		removed, err := tx.DeleteEntry(ctx, voucherID, entryID)
		if err != nil {
			return err
		}
		if !removed {
			return apperrors.NewNotFoundError("voucher entry " + entryID)
		}

		remaining := voucher.Entries[:0:0]
		for _, e := range voucher.Entries {
			if e.EntryID != entryID {
				remaining = append(remaining, e)
			}
		}
		voucher.Entries = remaining
		voucher.TotalDebit, voucher.TotalCredit = accounting.Totals(remaining)
		voucher.LastUpdatedAt = s.Now()
		voucher.LastUpdatedBy = userID
		return tx.UpdateVoucherHeader(ctx, *voucher)
	})
}

// Post moves a balanced draft to POSTED. A voucher that is already posted
// is returned as stored, so retries after a lost response are safe.
func (s *voucherService) Post(ctx context.Context, companyID, voucherID, actorID string) (*domain.Voucher, error) {
	var posted *domain.Voucher
	err := s.withRetry(ctx, "post", voucherID, func() error {
		return s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
			voucher, err := tx.FindVoucherForUpdate(ctx, companyID, voucherID)
			if err != nil {
				return err
			}
			if voucher.Status == domain.Posted {
				s.LogDebug(ctx, "Voucher already posted", slog.String("voucher_id", voucherID))
				posted = voucher
				return nil
			}
			if err := s.postLocked(ctx, tx, voucher, actorID); err != nil {
				return err
			}
			posted = voucher
			return nil
		})
	})
	if err != nil {
		if !isRuleViolation(err) {
			s.LogError(ctx, err, "Failed to post voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Voucher posted",
		slog.String("voucher_id", posted.VoucherID),
		slog.String("voucher_no", posted.VoucherNo),
		slog.String("total", posted.TotalDebit.String()))
	return posted, nil
}

// postLocked validates a draft held under the row lock and marks it posted.
// It updates voucher in place.
func (s *voucherService) postLocked(ctx context.Context, tx portsrepo.VoucherTx, voucher *domain.Voucher, actorID string) error {
	if len(voucher.Entries) == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEmptyVoucher, voucher.VoucherNo)
	}
	for _, e := range voucher.Entries {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	debit, credit := accounting.Totals(voucher.Entries)
	if !accounting.WithinEpsilon(debit, credit, s.epsilon) {
		return fmt.Errorf("%w: %s debit %s credit %s", apperrors.ErrUnbalanced, voucher.VoucherNo, debit, credit)
	}

	ids := make([]string, 0, len(voucher.Entries))
	for _, e := range voucher.Entries {
		ids = append(ids, e.AccountID)
	}
	accounts, err := tx.FindAccountsByIDs(ctx, voucher.CompanyID, ids)
	if err != nil {
		return err
	}
	for _, e := range voucher.Entries {
		account, ok := accounts[e.AccountID]
		if !ok {
			return apperrors.NewNotFoundError("account " + e.AccountID)
		}
		if err := account.Postable(); err != nil {
			return err
		}
	}

	now := s.Now()
	voucher.Status = domain.Posted
	voucher.TotalDebit = debit
	voucher.TotalCredit = credit
	voucher.PostedBy = &actorID
	voucher.PostedAt = &now
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = actorID
	return tx.MarkPosted(ctx, *voucher)
}

// Reverse creates and posts a JOURNAL voucher whose lines mirror the
// original's. A voucher can be reversed once; reversals themselves cannot
// be reversed.
func (s *voucherService) Reverse(ctx context.Context, companyID, voucherID string, req dto.ReverseVoucherRequest, actorID string) (*domain.Voucher, error) {
	var reversalDate *time.Time
	if req.VoucherDate != nil {
		date, err := parseDateParam("voucherDate", *req.VoucherDate)
		if err != nil {
			return nil, err
		}
		reversalDate = &date
	}

	var reversal *domain.Voucher
	err := s.withRetry(ctx, "reverse", voucherID, func() error {
		return s.voucherRepo.WithTx(ctx, func(ctx context.Context, tx portsrepo.VoucherTx) error {
			original, err := tx.FindVoucherForUpdate(ctx, companyID, voucherID)
			if err != nil {
				return err
			}
			if original.Status != domain.Posted {
				return fmt.Errorf("%w: %s", apperrors.ErrVoucherNotPosted, original.VoucherNo)
			}
			if original.ReversesVoucherID != nil {
				return fmt.Errorf("%w: %s is itself a reversal", apperrors.ErrConflict, original.VoucherNo)
			}
			existing, err := tx.FindReversal(ctx, companyID, voucherID)
			if err != nil {
				return err
			}
			if existing != nil {
				return fmt.Errorf("%w: %s by %s", apperrors.ErrAlreadyReversed, original.VoucherNo, existing.VoucherNo)
			}

			v, err := s.insertReversal(ctx, tx, original, reversalDate, req.Narration, actorID)
			if err != nil {
				return err
			}
			if err := s.postLocked(ctx, tx, v, actorID); err != nil {
				return err
			}
			reversal = v
			return nil
		})
	})
	if err != nil {
		if !isRuleViolation(err) {
			s.LogError(ctx, err, "Failed to reverse voucher", slog.String("voucher_id", voucherID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Voucher reversed",
		slog.String("voucher_id", voucherID),
		slog.String("reversal_id", reversal.VoucherID),
		slog.String("reversal_no", reversal.VoucherNo))
	return reversal, nil
}

func (s *voucherService) insertReversal(ctx context.Context, tx portsrepo.VoucherTx, original *domain.Voucher, date *time.Time, narration *string, actorID string) (*domain.Voucher, error) {
	n, err := tx.NextVoucherNumber(ctx, original.CompanyID, domain.Journal)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actorID, LastUpdatedAt: now, LastUpdatedBy: actorID}
	originalID := original.VoucherID
	v := &domain.Voucher{
		VoucherID:         uuid.NewString(),
		CompanyID:         original.CompanyID,
		VoucherNo:         domain.FormatVoucherNo(domain.Journal, n),
		VoucherType:       domain.Journal,
		VoucherDate:       domain.DateOnly(now),
		Status:            domain.Draft,
		Narration:         "Reversal of " + original.VoucherNo,
		ReversesVoucherID: &originalID,
		AuditFields:       audit,
	}
	if date != nil {
		v.VoucherDate = *date
	}
	if narration != nil && strings.TrimSpace(*narration) != "" {
		v.Narration = strings.TrimSpace(*narration)
	}
	v.TotalDebit, v.TotalCredit = accounting.Totals(original.Entries)
	v.TotalDebit, v.TotalCredit = v.TotalCredit, v.TotalDebit

	if err := tx.InsertVoucher(ctx, *v); err != nil {
		return nil, err
	}
	for i, e := range original.Entries {
		line := e.Reversed()
		line.EntryID = uuid.NewString()
		line.VoucherID = v.VoucherID
		line.LineNo = i + 1
		line.AuditFields = audit
		if err := tx.InsertEntry(ctx, line); err != nil {
			return nil, err
		}
		v.Entries = append(v.Entries, line)
	}
	return v, nil
}

// withRetry reruns fn while it fails with a transient store error.
func (s *voucherService) withRetry(ctx context.Context, op, voucherID string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, apperrors.ErrTransient) || attempt >= s.maxRetries {
			return err
		}
		s.LogWarn(ctx, "Retrying voucher operation after transient failure",
			slog.String("op", op),
			slog.String("voucher_id", voucherID),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", apperrors.ErrTransient, ctx.Err())
		case <-time.After(s.retryBackoff * time.Duration(attempt+1)):
		}
	}
}

// isRuleViolation reports errors that are the caller's fault and are not
// worth an error log line.
func isRuleViolation(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrDuplicate)
}
