package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/2beens/gymcycle/internal/config"
	"github.com/2beens/gymcycle/internal/cycle"
	"github.com/2beens/gymcycle/internal/gymcycle"
	"github.com/2beens/gymcycle/internal/middleware"
	"github.com/2beens/gymcycle/internal/recommendation"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

const (
	integrationDBName   = "gymcycle"
	integrationDBPass   = "secret"
	integrationStateKey = "gymcycle-test::cycle-state"
)

// IntegrationTestSuite runs the whole service against real postgres and redis
// containers. Needs a docker daemon, so it only runs with GYMCYCLE_INTEGRATION=1.
type IntegrationTestSuite struct {
	suite.Suite

	dockerPool   *dockertest.Pool
	redisPort    string
	postgresPort string
	server       *Server
	httpClient   *http.Client
	teardown     []func()
}

func TestIntegrationTestSuite(t *testing.T) {
	if os.Getenv("GYMCYCLE_INTEGRATION") != "1" {
		t.Skip("set GYMCYCLE_INTEGRATION=1 to run the integration test suite")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

// runs before all tests are executed
func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.teardown = make([]func(), 0)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	var err error
	s.dockerPool, err = dockertest.NewPool("")
	s.Require().NoError(err, "could not create new dockertest pool")
	s.Require().NoError(s.dockerPool.Client.Ping(), "could not ping dockertest pool")
	s.dockerPool.MaxWait = time.Minute

	s.redisPort, err = s.redisSetup()
	if err != nil {
		s.cleanup()
		s.FailNow("failed to setup redis", err.Error())
	}
	log.Debugln("redis setup successful")

	s.postgresPort, err = s.postgresSetup(ctx)
	if err != nil {
		s.cleanup()
		s.FailNow("failed to setup postgres", err.Error())
	}
	log.Debugln("postgres setup successful")

	s.server = s.startServer(ctx)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *IntegrationTestSuite) cleanup() {
	if s.server != nil {
		s.shutdownServer(s.server)
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func (s *IntegrationTestSuite) testConfig() *config.Config {
	return &config.Config{
		Host:                      "127.0.0.1",
		Storage:                   config.StoragePostgres,
		PostgresHost:              "localhost",
		PostgresPort:              s.postgresPort,
		PostgresDBName:            integrationDBName,
		RedisHost:                 "localhost",
		RedisPort:                 s.redisPort,
		PrometheusMetricsHost:     "127.0.0.1",
		PrometheusMetricsPort:     "0",
		Timezone:                  "UTC",
		CycleStateKey:             integrationStateKey,
		CycleCacheTTLSeconds:      5,
		CompletionRateLimitPerMin: 100,
	}
}

func (s *IntegrationTestSuite) startServer(ctx context.Context) *Server {
	server, err := NewServer(ctx, NewServerParams{
		Config:           s.testConfig(),
		AppSecret:        testAppSecret,
		VersionInfo:      "integration",
		PostgresUser:     "postgres",
		PostgresPassword: integrationDBPass,
	})
	s.Require().NoError(err)
	s.Require().NoError(server.Serve("127.0.0.1", 0))
	return server
}

func (s *IntegrationTestSuite) shutdownServer(server *Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.GracefulShutdown(ctx); err != nil {
		s.T().Logf("graceful shutdown: %s", err)
	}
}

func (s *IntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(redisResource); err != nil {
			s.T().Logf("redis teardown: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *IntegrationTestSuite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=" + integrationDBPass,
			"POSTGRES_DB=" + integrationDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := s.dockerPool.Purge(pgResource); err != nil {
			s.T().Logf("postgres teardown: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf(
		"postgres://postgres:%s@localhost:%s/%s?sslmode=disable",
		integrationDBPass, pgPort, integrationDBName,
	)

	// wait until postgres accepts connections, the server only pings once
	if err := s.dockerPool.Retry(func() error {
		db, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping(ctx)
	}); err != nil {
		return "", fmt.Errorf("connect to db: %w", err)
	}

	return pgPort, nil
}

func (s *IntegrationTestSuite) doRequest(server *Server, method, path string, body any) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		s.Require().NoError(err)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("http://%s%s", server.listenAddr, path), bodyReader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.AuthTokenHeader, testAppSecret)

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *IntegrationTestSuite) decode(resp *http.Response, v any) {
	defer func() {
		s.NoError(resp.Body.Close())
	}()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *IntegrationTestSuite) recommend(server *Server) recommendation.Recommendation {
	resp := s.doRequest(server, "POST", "/cycle/recommendation", gymcycle.RecommendationRequest{
		WeeklyPlan: []string{"Push", "Pull", "Legs"},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var rec recommendation.Recommendation
	s.decode(resp, &rec)
	return rec
}

func (s *IntegrationTestSuite) TestCycleFlow() {
	rec := s.recommend(s.server)
	s.Equal(0, rec.WorkoutIndex)
	s.Equal(recommendation.SituationNewUser, rec.Situation)

	end := time.Now().UTC()
	resp := s.doRequest(s.server, "POST", "/workouts", map[string]any{
		"workoutName":  rec.WorkoutName,
		"workoutIndex": rec.WorkoutIndex,
		"endTime":      end,
		"exercises": []map[string]any{{
			"name": "Bench Press",
			"sets": []map[string]any{
				{"completed": true, "actualWeight": 60, "actualReps": 8, "type": "working"},
				{"completed": false, "actualWeight": 60, "actualReps": 8, "type": "working"},
			},
		}},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var saved gymcycle.SaveWorkoutResponse
	s.decode(resp, &saved)
	s.Positive(saved.ID)
	s.Equal(480.0, saved.Stats.TotalVolume)
	s.Equal(50, saved.Stats.ProgressPercentage)

	resp = s.doRequest(s.server, "POST", "/cycle/completed", gymcycle.WorkoutCompletedRequest{WorkoutIndex: &rec.WorkoutIndex})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)
	s.NoError(resp.Body.Close())

	// same day, so the same workout comes back
	rec = s.recommend(s.server)
	s.Equal(0, rec.WorkoutIndex)
	s.Equal(recommendation.SituationSameDay, rec.Situation)

	resp = s.doRequest(s.server, "GET", "/workouts/history", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var list gymcycle.HistoryListResponse
	s.decode(resp, &list)
	s.Require().Equal(1, list.Total)
	s.Equal("Push", list.Workouts[0].WorkoutName)

	// the state lives in redis, so a new server instance picks it up
	s.shutdownServer(s.server)
	s.server = s.startServer(context.Background())

	resp = s.doRequest(s.server, "GET", "/cycle/state?day=Push&day=Pull&day=Legs", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var state cycle.State
	s.decode(resp, &state)
	s.Equal(1, state.TotalWorkoutsCompleted)
	s.Equal(0, state.CurrentDayInWeek)
	s.NotEmpty(state.LastWorkoutDate)
}
