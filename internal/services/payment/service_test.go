package payment

import (
	"context"
	"testing"
	"time"

	apperr "ibank/internal/errors"
	"ibank/internal/models"
	"ibank/internal/repositories"
	"ibank/internal/services/otp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ExecuteInTransaction(fn func(repositories.PaymentRepository) error) error {
	args := m.Called(fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockPaymentRepository) CreateTransaction(tx *models.Transaction) error {
	args := m.Called(tx)
	return args.Error(0)
}

func (m *MockPaymentRepository) SetTransactionGroup(id, groupID uint) error {
	args := m.Called(id, groupID)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetTransactionByID(id uint) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) GetTransactionForUpdate(id uint) (*models.Transaction, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) ListPendingGroupMembers(groupID uint) ([]models.Transaction, error) {
	args := m.Called(groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) ConfirmTransactions(ids []uint, at time.Time) error {
	args := m.Called(ids, at)
	return args.Error(0)
}

func (m *MockPaymentRepository) CancelTransactions(ids []uint) error {
	args := m.Called(ids)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteTransaction(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetOTPForUpdate(transactionID uint) (*models.OneTimeCode, error) {
	args := m.Called(transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OneTimeCode), args.Error(1)
}

func (m *MockPaymentRepository) ActiveDigestExists(digest string, now time.Time) (bool, error) {
	args := m.Called(digest, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) UpsertOTP(code *models.OneTimeCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateOTPAttempts(id uint, attempts int) error {
	args := m.Called(id, attempts)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkOTPUsed(transactionID uint) error {
	args := m.Called(transactionID)
	return args.Error(0)
}

func (m *MockPaymentRepository) LockUser(userID uint) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockPaymentRepository) DebitBalance(userID uint, amountCents int64) (int64, error) {
	args := m.Called(userID, amountCents)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) GetBalance(userID uint) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) MarkTuitionPaid(tuitionID uint, amountCents int64, at time.Time) (int64, error) {
	args := m.Called(tuitionID, amountCents, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) ListByPayer(ctx context.Context, payerID uint, limit int, dest interface{}) error {
	args := m.Called(ctx, payerID, limit, dest)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) GetByMSSV(mssv string) (*models.Student, error) {
	args := m.Called(mssv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) ListPendingTuitions(studentID uint) ([]models.Tuition, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tuition), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOtp(to, code string, ttl time.Duration) error {
	args := m.Called(to, code, ttl)
	return args.Error(0)
}

func (m *MockMailer) SendConfirmation(to, details string) error {
	args := m.Called(to, details)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateUser(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

const testSecret = "test-otp-secret"

type testEnv struct {
	repo     *MockPaymentRepository
	students *MockStudentRepository
	users    *MockUserRepository
	mailer   *MockMailer
	cache    *MockCache
	svc      Service
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, Config{})
}

func newTestEnvWithConfig(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:     new(MockPaymentRepository),
		students: new(MockStudentRepository),
		users:    new(MockUserRepository),
		mailer:   new(MockMailer),
		cache:    new(MockCache),
	}
	env.svc = NewService(env.repo, env.students, env.users, env.mailer, env.cache, testSecret, cfg)
	return env
}

func pendingTuitions(amounts ...int64) []models.Tuition {
	out := make([]models.Tuition, len(amounts))
	for i, a := range amounts {
		out[i] = models.Tuition{
			StudentID:    1,
			AcademicYear: 2025,
			Semester:     len(amounts) - i,
			AmountCents:  a,
			Status:       models.TuitionStatusPending,
		}
		out[i].ID = uint(100 + i)
	}
	return out
}

func TestStartSingleTuition(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV001", FullName: "Nguyen Van A"}
	student.ID = 1
	env.students.On("GetByMSSV", "SV001").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(1)).Return(pendingTuitions(500000, 300000), nil)

	payer := &models.User{Email: "payer@example.com", BalanceCents: 1000000}
	payer.ID = 7
	env.users.On("GetByID", uint(7)).Return(payer, nil)

	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("CreateTransaction", mock.AnythingOfType("*models.Transaction")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Transaction).ID = 42
		}).Return(nil)
	env.repo.On("ActiveDigestExists", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(false, nil)
	env.repo.On("UpsertOTP", mock.AnythingOfType("*models.OneTimeCode")).Return(nil)

	var sentCode string
	env.mailer.On("SendOtp", "payer@example.com", mock.AnythingOfType("string"), DefaultOTPTTL).
		Run(func(args mock.Arguments) { sentCode = args.String(1) }).Return(nil)

	result, err := env.svc.Start(context.Background(), 7, "SV001", 1)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.TransactionID)
	assert.WithinDuration(t, time.Now().Add(DefaultOTPTTL), result.OTPExpiresAt, 2*time.Second)
	assert.Len(t, sentCode, 6)

	env.repo.AssertNumberOfCalls(t, "CreateTransaction", 1)
	env.repo.AssertNotCalled(t, "SetTransactionGroup", mock.Anything, mock.Anything)
}

func TestStartCombinedPayment(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV002", FullName: "Tran Thi B", CombinedBilling: true}
	student.ID = 2
	env.students.On("GetByMSSV", "SV002").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(2)).Return(pendingTuitions(500000, 300000, 200000), nil)

	payer := &models.User{Email: "payer@example.com", BalanceCents: 2000000}
	payer.ID = 7
	env.users.On("GetByID", uint(7)).Return(payer, nil)

	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	var nextID uint = 42
	var created []models.Transaction
	env.repo.On("CreateTransaction", mock.AnythingOfType("*models.Transaction")).
		Run(func(args mock.Arguments) {
			trans := args.Get(0).(*models.Transaction)
			trans.ID = nextID
			nextID++
			created = append(created, *trans)
		}).Return(nil)
	env.repo.On("SetTransactionGroup", uint(42), uint(42)).Return(nil)
	env.repo.On("ActiveDigestExists", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(false, nil)
	env.repo.On("UpsertOTP", mock.MatchedBy(func(c *models.OneTimeCode) bool {
		return c.TransactionID == 42
	})).Return(nil)
	env.mailer.On("SendOtp", "payer@example.com", mock.AnythingOfType("string"), DefaultOTPTTL).Return(nil)

	result, err := env.svc.Start(context.Background(), 7, "SV002", 0)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.TransactionID)

	require.Len(t, created, 3)
	for _, trans := range created[1:] {
		require.NotNil(t, trans.GroupID)
		assert.Equal(t, uint(42), *trans.GroupID)
	}
}

func TestStartCombinedRejectsIndividual(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV002", CombinedBilling: true}
	student.ID = 2
	env.students.On("GetByMSSV", "SV002").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(2)).Return(pendingTuitions(500000, 300000), nil)

	_, err := env.svc.Start(context.Background(), 7, "SV002", 1)
	assert.ErrorIs(t, err, apperr.ErrIndividualPaymentNotAllowed)
	env.repo.AssertNotCalled(t, "ExecuteInTransaction", mock.Anything)
}

func TestStartCombinedIDRequiresCombinedBilling(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV001"}
	student.ID = 1
	env.students.On("GetByMSSV", "SV001").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(1)).Return(pendingTuitions(500000, 300000), nil)

	_, err := env.svc.Start(context.Background(), 7, "SV001", 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidTuitionID)
}

func TestStartTuitionIDOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV001"}
	student.ID = 1
	env.students.On("GetByMSSV", "SV001").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(1)).Return(pendingTuitions(500000), nil)

	_, err := env.svc.Start(context.Background(), 7, "SV001", 5)
	assert.ErrorIs(t, err, apperr.ErrTuitionNotFoundForStudent)
}

func TestStartStudentNotFound(t *testing.T) {
	env := newTestEnv(t)

	env.students.On("GetByMSSV", "NOPE").Return(nil, repositories.ErrStudentNotFound)

	_, err := env.svc.Start(context.Background(), 7, "NOPE", 1)
	assert.ErrorIs(t, err, apperr.ErrTuitionNotFoundForStudent)
}

func TestStartMissingStudentID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Start(context.Background(), 7, "   ", 1)
	assert.ErrorIs(t, err, apperr.ErrMissingStudentID)
}

func TestStartInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV001"}
	student.ID = 1
	env.students.On("GetByMSSV", "SV001").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(1)).Return(pendingTuitions(500000), nil)

	payer := &models.User{Email: "payer@example.com", BalanceCents: 100}
	payer.ID = 7
	env.users.On("GetByID", uint(7)).Return(payer, nil)

	_, err := env.svc.Start(context.Background(), 7, "SV001", 1)
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
	env.repo.AssertNotCalled(t, "ExecuteInTransaction", mock.Anything)
}

func TestStartCodeCollisionFallsBackToToken(t *testing.T) {
	env := newTestEnv(t)

	student := &models.Student{MSSV: "SV001"}
	student.ID = 1
	env.students.On("GetByMSSV", "SV001").Return(student, nil)
	env.students.On("ListPendingTuitions", uint(1)).Return(pendingTuitions(500000), nil)

	payer := &models.User{Email: "payer@example.com", BalanceCents: 1000000}
	payer.ID = 7
	env.users.On("GetByID", uint(7)).Return(payer, nil)

	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("CreateTransaction", mock.AnythingOfType("*models.Transaction")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*models.Transaction).ID = 42
		}).Return(nil)
	// Every 6-digit candidate collides, forcing the longer fallback token.
	env.repo.On("ActiveDigestExists", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(true, nil)
	env.repo.On("UpsertOTP", mock.AnythingOfType("*models.OneTimeCode")).Return(nil)

	var sentCode string
	env.mailer.On("SendOtp", "payer@example.com", mock.AnythingOfType("string"), DefaultOTPTTL).
		Run(func(args mock.Arguments) { sentCode = args.String(1) }).Return(nil)

	_, err := env.svc.Start(context.Background(), 7, "SV001", 1)
	require.NoError(t, err)
	assert.Len(t, sentCode, 8)
	env.repo.AssertNumberOfCalls(t, "ActiveDigestExists", DefaultCodeRetries)
}

func pendingVerifyFixture(env *testEnv, code string) (*models.Transaction, *models.OneTimeCode) {
	trans := &models.Transaction{
		ID:          42,
		PayerUserID: 7,
		TuitionID:   100,
		AmountCents: 500000,
		Status:      models.TransactionStatusPending,
	}
	otpRow := &models.OneTimeCode{
		ID:            9,
		TransactionID: 42,
		CodeDigest:    otp.Digest(code, testSecret),
		ExpiresAt:     time.Now().Add(time.Minute),
	}
	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("GetTransactionForUpdate", uint(42)).Return(trans, nil)
	env.repo.On("GetOTPForUpdate", uint(42)).Return(otpRow, nil)
	return trans, otpRow
}

func TestVerifySuccess(t *testing.T) {
	env := newTestEnv(t)
	pendingVerifyFixture(env, "123456")

	payer := &models.User{Email: "payer@example.com", BalanceCents: 1000000}
	payer.ID = 7
	env.repo.On("LockUser", uint(7)).Return(payer, nil)
	env.repo.On("DebitBalance", uint(7), int64(500000)).Return(int64(1), nil)
	env.repo.On("MarkTuitionPaid", uint(100), int64(500000), mock.AnythingOfType("time.Time")).Return(int64(1), nil)
	env.repo.On("ConfirmTransactions", []uint{42}, mock.AnythingOfType("time.Time")).Return(nil)
	env.repo.On("MarkOTPUsed", uint(42)).Return(nil)
	env.repo.On("GetBalance", uint(7)).Return(int64(500000), nil)
	env.cache.On("InvalidateUser", mock.Anything, uint(7)).Return(nil)
	env.mailer.On("SendConfirmation", "payer@example.com", mock.AnythingOfType("string")).Return(nil)

	result, err := env.svc.Verify(context.Background(), 42, "123456")
	require.NoError(t, err)
	assert.Equal(t, int64(500000), result.NewBalanceCents)
	env.repo.AssertExpectations(t)
	env.cache.AssertExpectations(t)
}

func TestVerifyWrongCodeIncrementsAttempts(t *testing.T) {
	env := newTestEnv(t)
	pendingVerifyFixture(env, "123456")

	env.repo.On("UpdateOTPAttempts", uint(9), 1).Return(nil)

	_, err := env.svc.Verify(context.Background(), 42, "654321")
	assert.ErrorIs(t, err, apperr.ErrInvalidOTP)
	env.repo.AssertCalled(t, "UpdateOTPAttempts", uint(9), 1)
	env.repo.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything)
	env.repo.AssertNotCalled(t, "CancelTransactions", mock.Anything)
}

func TestVerifyThirdWrongAttemptCancelsGroup(t *testing.T) {
	env := newTestEnv(t)
	trans, otpRow := pendingVerifyFixture(env, "123456")
	otpRow.Attempts = 2
	gid := uint(42)
	trans.GroupID = &gid

	members := []models.Transaction{*trans, {ID: 43, PayerUserID: 7, TuitionID: 101, AmountCents: 300000, Status: models.TransactionStatusPending, GroupID: &gid}}
	env.repo.On("UpdateOTPAttempts", uint(9), 3).Return(nil)
	env.repo.On("ListPendingGroupMembers", uint(42)).Return(members, nil)
	env.repo.On("CancelTransactions", []uint{42, 43}).Return(nil)

	_, err := env.svc.Verify(context.Background(), 42, "654321")
	assert.ErrorIs(t, err, apperr.ErrOTPAttemptsExceeded)
	env.repo.AssertCalled(t, "CancelTransactions", []uint{42, 43})
	env.repo.AssertNotCalled(t, "DebitBalance", mock.Anything, mock.Anything)
}

func TestVerifyHonorsConfiguredAttemptLimit(t *testing.T) {
	env := newTestEnvWithConfig(t, Config{MaxOTPAttempts: 5})
	_, otpRow := pendingVerifyFixture(env, "123456")
	otpRow.Attempts = 2

	// Third wrong code is only attempt 3 of 5; the group must survive.
	env.repo.On("UpdateOTPAttempts", uint(9), 3).Return(nil)

	_, err := env.svc.Verify(context.Background(), 42, "654321")
	assert.ErrorIs(t, err, apperr.ErrInvalidOTP)
	env.repo.AssertNotCalled(t, "CancelTransactions", mock.Anything)

	otpRow.Attempts = 4
	env.repo.On("UpdateOTPAttempts", uint(9), 5).Return(nil)
	env.repo.On("CancelTransactions", []uint{42}).Return(nil)

	_, err = env.svc.Verify(context.Background(), 42, "654321")
	assert.ErrorIs(t, err, apperr.ErrOTPAttemptsExceeded)
	env.repo.AssertCalled(t, "CancelTransactions", []uint{42})
}

func TestVerifyExpired(t *testing.T) {
	env := newTestEnv(t)
	_, otpRow := pendingVerifyFixture(env, "123456")
	otpRow.ExpiresAt = time.Now().Add(-time.Minute)

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrOTPExpired)
	env.repo.AssertNotCalled(t, "UpdateOTPAttempts", mock.Anything, mock.Anything)
}

func TestVerifyAlreadyUsed(t *testing.T) {
	env := newTestEnv(t)
	_, otpRow := pendingVerifyFixture(env, "123456")
	otpRow.Used = true

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrOTPAlreadyUsed)
}

func TestVerifyTransactionNotPending(t *testing.T) {
	env := newTestEnv(t)
	trans, _ := pendingVerifyFixture(env, "123456")
	trans.Status = models.TransactionStatusCancelled

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrTransactionNotPending)
}

func TestVerifyTransactionNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("GetTransactionForUpdate", uint(42)).Return(nil, repositories.ErrTransactionNotFound)

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)
}

func TestVerifyInsufficientAtFinalize(t *testing.T) {
	env := newTestEnv(t)
	pendingVerifyFixture(env, "123456")

	payer := &models.User{Email: "payer@example.com", BalanceCents: 100}
	payer.ID = 7
	env.repo.On("LockUser", uint(7)).Return(payer, nil)
	env.repo.On("DebitBalance", uint(7), int64(500000)).Return(int64(0), nil)

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalanceAtFinalize)
	env.repo.AssertNotCalled(t, "MarkTuitionPaid", mock.Anything, mock.Anything, mock.Anything)
	env.repo.AssertNotCalled(t, "MarkOTPUsed", mock.Anything)
}

func TestVerifyTuitionModifiedRollsBack(t *testing.T) {
	env := newTestEnv(t)
	pendingVerifyFixture(env, "123456")

	payer := &models.User{Email: "payer@example.com", BalanceCents: 1000000}
	payer.ID = 7
	env.repo.On("LockUser", uint(7)).Return(payer, nil)
	env.repo.On("DebitBalance", uint(7), int64(500000)).Return(int64(1), nil)
	env.repo.On("MarkTuitionPaid", uint(100), int64(500000), mock.AnythingOfType("time.Time")).Return(int64(0), nil)

	_, err := env.svc.Verify(context.Background(), 42, "123456")
	assert.ErrorIs(t, err, apperr.ErrTuitionAlreadyPaidOrModified)
	env.repo.AssertNotCalled(t, "ConfirmTransactions", mock.Anything, mock.Anything)
}

func TestVerifyMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Verify(context.Background(), 0, "123456")
	assert.ErrorIs(t, err, apperr.ErrMissingFields)

	_, err = env.svc.Verify(context.Background(), 42, "")
	assert.ErrorIs(t, err, apperr.ErrMissingFields)
}

func TestResendReplacesCode(t *testing.T) {
	env := newTestEnv(t)

	trans := &models.Transaction{ID: 42, PayerUserID: 7, Status: models.TransactionStatusPending}
	env.repo.On("GetTransactionByID", uint(42)).Return(trans, nil)
	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("ActiveDigestExists", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(false, nil)

	var upserted *models.OneTimeCode
	env.repo.On("UpsertOTP", mock.AnythingOfType("*models.OneTimeCode")).
		Run(func(args mock.Arguments) { upserted = args.Get(0).(*models.OneTimeCode) }).Return(nil)

	payer := &models.User{Email: "payer@example.com"}
	payer.ID = 7
	env.users.On("GetByID", uint(7)).Return(payer, nil)
	env.mailer.On("SendOtp", "payer@example.com", mock.AnythingOfType("string"), DefaultOTPTTL).Return(nil)

	result, err := env.svc.Resend(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.TransactionID)

	require.NotNil(t, upserted)
	assert.Equal(t, uint(42), upserted.TransactionID)
	assert.Zero(t, upserted.Attempts)
	assert.False(t, upserted.Used)
	assert.True(t, upserted.ExpiresAt.After(time.Now()))
}

func TestResendHidesForeignTransaction(t *testing.T) {
	env := newTestEnv(t)

	trans := &models.Transaction{ID: 42, PayerUserID: 99, Status: models.TransactionStatusPending}
	env.repo.On("GetTransactionByID", uint(42)).Return(trans, nil)

	_, err := env.svc.Resend(context.Background(), 7, 42)
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)
}

func TestResendNotPending(t *testing.T) {
	env := newTestEnv(t)

	trans := &models.Transaction{ID: 42, PayerUserID: 7, Status: models.TransactionStatusConfirmed}
	env.repo.On("GetTransactionByID", uint(42)).Return(trans, nil)

	_, err := env.svc.Resend(context.Background(), 7, 42)
	assert.ErrorIs(t, err, apperr.ErrTransactionNotPending)
}

func TestCancelGroup(t *testing.T) {
	env := newTestEnv(t)

	gid := uint(42)
	trans := &models.Transaction{ID: 42, PayerUserID: 7, Status: models.TransactionStatusPending, GroupID: &gid}
	members := []models.Transaction{*trans, {ID: 43, PayerUserID: 7, Status: models.TransactionStatusPending, GroupID: &gid}}

	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("GetTransactionForUpdate", uint(42)).Return(trans, nil)
	env.repo.On("ListPendingGroupMembers", uint(42)).Return(members, nil)
	env.repo.On("CancelTransactions", []uint{42, 43}).Return(nil)
	env.repo.On("MarkOTPUsed", uint(42)).Return(nil)

	err := env.svc.Cancel(context.Background(), 7, 42)
	require.NoError(t, err)
	env.repo.AssertExpectations(t)
}

func TestCancelForbidden(t *testing.T) {
	env := newTestEnv(t)

	trans := &models.Transaction{ID: 42, PayerUserID: 99, Status: models.TransactionStatusPending}
	env.repo.On("ExecuteInTransaction", mock.Anything).Return(nil)
	env.repo.On("GetTransactionForUpdate", uint(42)).Return(trans, nil)

	err := env.svc.Cancel(context.Background(), 7, 42)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	env.repo.AssertNotCalled(t, "CancelTransactions", mock.Anything)
}

func TestDeleteStatusRules(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr error
	}{
		{"pending must be cancelled first", models.TransactionStatusPending, apperr.ErrTransactionPendingCannotDelete},
		{"confirmed is immutable", models.TransactionStatusConfirmed, apperr.ErrTransactionConfirmedCannotDelete},
		{"cancelled is deletable", models.TransactionStatusCancelled, nil},
		{"failed is deletable", models.TransactionStatusFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			trans := &models.Transaction{ID: 42, PayerUserID: 7, Status: tt.status}
			env.repo.On("GetTransactionByID", uint(42)).Return(trans, nil)
			if tt.wantErr == nil {
				env.repo.On("DeleteTransaction", uint(42)).Return(nil)
			}

			err := env.svc.Delete(context.Background(), 7, 42)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				env.repo.AssertNotCalled(t, "DeleteTransaction", mock.Anything)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeleteForbidden(t *testing.T) {
	env := newTestEnv(t)

	trans := &models.Transaction{ID: 42, PayerUserID: 99, Status: models.TransactionStatusCancelled}
	env.repo.On("GetTransactionByID", uint(42)).Return(trans, nil)

	err := env.svc.Delete(context.Background(), 7, 42)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)

	env.repo.On("ListByPayer", mock.Anything, uint(7), DefaultHistoryLimit, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(3).(*[]HistoryEntry)
			*dest = []HistoryEntry{{ID: 42, AmountCents: 500000, Status: models.TransactionStatusConfirmed}}
		}).Return(nil)

	entries, err := env.svc.History(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(42), entries[0].ID)
}
