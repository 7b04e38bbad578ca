package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Altair788/DigitalBazaar/pkg/health"
	"github.com/Altair788/DigitalBazaar/pkg/httputil"
	pkgkafka "github.com/Altair788/DigitalBazaar/pkg/kafka"
	"github.com/Altair788/DigitalBazaar/pkg/middleware"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/auth"
	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/event"
	"github.com/Altair788/DigitalBazaar/internal/notify"
	"github.com/Altair788/DigitalBazaar/internal/repository"
	"github.com/Altair788/DigitalBazaar/internal/service"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, p pagination.Params) ([]domain.User, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, token *domain.UserToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.UserToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserToken), args.Error(1)
}

func (m *mockTokenRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteByUserAndPurpose(ctx context.Context, userID int64, purpose string) error {
	args := m.Called(ctx, userID, purpose)
	return args.Error(0)
}

type mockAdRepo struct {
	mock.Mock
}

func (m *mockAdRepo) Create(ctx context.Context, ad *domain.Ad) error {
	args := m.Called(ctx, ad)
	return args.Error(0)
}

func (m *mockAdRepo) GetByID(ctx context.Context, id int64) (*domain.Ad, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ad), args.Error(1)
}

func (m *mockAdRepo) List(ctx context.Context, f repository.AdFilter, p pagination.Params) ([]domain.Ad, int64, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Ad), args.Get(1).(int64), args.Error(2)
}

func (m *mockAdRepo) Update(ctx context.Context, ad *domain.Ad) error {
	args := m.Called(ctx, ad)
	return args.Error(0)
}

func (m *mockAdRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) List(ctx context.Context, f repository.ReviewFilter, p pagination.Params) ([]domain.Review, int64, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Get(1).(int64), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNodeRepo struct {
	mock.Mock
}

func (m *mockNodeRepo) Create(ctx context.Context, node *domain.NetworkNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *mockNodeRepo) GetByID(ctx context.Context, id int64) (*domain.NetworkNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NetworkNode), args.Error(1)
}

func (m *mockNodeRepo) List(ctx context.Context, f repository.NodeFilter, p pagination.Params) ([]domain.NetworkNode, int64, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.NetworkNode), args.Get(1).(int64), args.Error(2)
}

func (m *mockNodeRepo) Update(ctx context.Context, node *domain.NetworkNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *mockNodeRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNodeRepo) ClearDebt(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) ListByNode(ctx context.Context, nodeID int64, p pagination.Params) ([]domain.Product, int64, error) {
	args := m.Called(ctx, nodeID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ============================================================================
// Test Environment
// ============================================================================

// testEnv wires every mock repository into the production router so tests
// exercise the real middleware chain, role gates, and error mapping.
type testEnv struct {
	userRepo    *mockUserRepo
	tokenRepo   *mockTokenRepo
	adRepo      *mockAdRepo
	reviewRepo  *mockReviewRepo
	nodeRepo    *mockNodeRepo
	productRepo *mockProductRepo
	jwtManager  *auth.JWTManager
	router      http.Handler
}

func routerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := routerTestLogger()
	jwtManager := auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)

	// Broker is unreachable on purpose. Publish failures are logged by the
	// services, never surfaced to callers.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:19092"}), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	env := &testEnv{
		userRepo:    new(mockUserRepo),
		tokenRepo:   new(mockTokenRepo),
		adRepo:      new(mockAdRepo),
		reviewRepo:  new(mockReviewRepo),
		nodeRepo:    new(mockNodeRepo),
		productRepo: new(mockProductRepo),
		jwtManager:  jwtManager,
	}

	svcs := Services{
		Users:    service.NewUserService(env.userRepo, env.tokenRepo, jwtManager, producer, notify.NewLogMailer(logger), logger),
		Ads:      service.NewAdService(env.adRepo, nil, logger),
		Reviews:  service.NewReviewService(env.reviewRepo, env.adRepo, logger),
		Nodes:    service.NewNodeService(env.nodeRepo, producer, logger),
		Products: service.NewProductService(env.productRepo, env.nodeRepo, logger),
	}

	env.router = NewRouter(svcs, jwtManager, health.NewHandler(), logger, middleware.DefaultCORSConfig())
	return env
}

func (e *testEnv) memberToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(userID, "member@example.com", domain.RoleMember)
	require.NoError(t, err)
	return token
}

func (e *testEnv) adminToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(userID, "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	return token
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
