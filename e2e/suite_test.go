package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/anithaparamashivam/oas-e2e/clients"
	"github.com/anithaparamashivam/oas-e2e/common/logger"
	"github.com/anithaparamashivam/oas-e2e/config"
	"github.com/anithaparamashivam/oas-e2e/fixtures"
	aws_pkg "github.com/anithaparamashivam/oas-e2e/pkg/aws"
	"github.com/anithaparamashivam/oas-e2e/stub"
	"github.com/anithaparamashivam/oas-e2e/stub/services"
)

// baseSuite bootstraps the environment once and hands every test a fresh
// Fixture. Unless RUN_E2E_REMOTE=true the specs run against an in-process
// orders stub.
type baseSuite struct {
	suite.Suite
	env    *Environment
	server *httptest.Server
	// eventsURL is set when the in-process stub publishes to STUB_EVENTS_QUEUE.
	eventsURL string

	ctx context.Context
	f   *Fixture
}

func (s *baseSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load()
	s.Require().NoError(err)

	env, err := Bootstrap(context.Background(), cfg)
	s.Require().NoError(err)
	s.env = env

	if cfg.RunRemote {
		return
	}

	catalog, err := fixtures.NewTestData(env.Source).LoadCatalog(context.Background())
	s.Require().NoError(err)
	s.server = httptest.NewServer(stub.NewRouter(stub.Config{
		Products:  stub.ProductsFromCatalog(catalog),
		SlowDelay: cfg.StubSlowDelay,
		JWTSecret: cfg.APIJWTSecret,
		Publisher: s.eventsPublisher(cfg),
		Logger:    env.Logger.Named("stub"),
	}))
	cfg.APIBaseURL = s.server.URL
}

// eventsPublisher sends stub order events to STUB_EVENTS_QUEUE when the queue
// specs are enabled.
func (s *baseSuite) eventsPublisher(cfg *config.Config) services.EventPublisher {
	if !cfg.RunQueueSpecs || cfg.StubEventsQueue == "" {
		return nil
	}
	queue := aws_pkg.NewQueueClient(s.env.AWS, aws_pkg.WithQueueLogger(s.env.Logger))
	url, err := queue.GetQueueURL(context.Background(), cfg.StubEventsQueue)
	if err != nil {
		s.env.Logger.Warn("Events queue unavailable, stub events disabled",
			zap.String("queue", cfg.StubEventsQueue), zap.Error(err))
		return nil
	}
	s.eventsURL = url
	return services.NewQueuePublisher(queue, url)
}

func (s *baseSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.env != nil {
		_ = s.env.Logger.Sync()
	}
}

func (s *baseSuite) SetupTest() {
	s.ctx = logger.WithRequestID(context.Background(), "")
	s.f = s.env.NewFixture()
}

// createOrder posts order and requires a 201 with an id.
func (s *baseSuite) createOrder(order any) string {
	resp, err := s.f.API.Post(s.ctx, "/orders", order)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.Status, "create failed: %s", resp.Body)

	id, _ := resp.Object()["id"].(string)
	s.Require().NotEmpty(id)
	return id
}

func (s *baseSuite) getOrder(id string) map[string]any {
	resp, err := s.f.API.Get(s.ctx, "/orders/"+id)
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.Status)
	return resp.Object()
}

func (s *baseSuite) enrich(id string) *clients.Response {
	resp, err := s.f.API.Post(s.ctx, "/orders/"+id+"/enrich", map[string]any{})
	s.Require().NoError(err)
	return resp
}

// requireErrorBody asserts the response body is an object with an "error" property.
func (s *baseSuite) requireErrorBody(resp *clients.Response) {
	s.Require().NotNil(resp.Object(), "expected a JSON object, got %q", resp.Body)
	s.Contains(resp.Object(), "error")
}
