package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handler "github.com/vncsmyrnk/election/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/election/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/election/internal/core/domain"
	"github.com/vncsmyrnk/election/internal/core/ports"
	"github.com/vncsmyrnk/election/internal/core/services"
	"github.com/vncsmyrnk/election/internal/logging"
)

const testSecret = "test-secret"

type TestApp struct {
	DB           *sql.DB
	Server       *httptest.Server
	Client       *http.Client
	Votes        ports.VoteService
	Ballots      ports.BallotRepository
	ReconcileSvc ports.ReconcileService
	DBContainer  testcontainers.Container
}

// MockVerifier accepts "valid_token" as a Google credential for email.
type MockVerifier struct {
	email string
}

func (v *MockVerifier) Verify(ctx context.Context, token string, clientID string) (*ports.TokenPayload, error) {
	if token == "valid_token" {
		return &ports.TokenPayload{Email: v.email, Name: "Test User"}, nil
	}
	return nil, assert.AnError
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL, 20)
	require.NoError(t, err)

	err = repo.Migrate(ctx, db)
	require.NoError(t, err)

	log := logging.Discard()
	catalogRepo := repo.NewCatalogRepository(db)
	ballotRepo := repo.NewBallotRepository(db)
	auditRepo := repo.NewAuditRepository(db)
	userRepo := repo.NewUserRepository(db)

	auditSvc := services.NewAuditService(auditRepo, log)
	electionSvc := services.NewElectionService(catalogRepo, log)
	eligibilitySvc := services.NewEligibilityService(catalogRepo, ballotRepo)
	voteSvc := services.NewVoteService(catalogRepo, ballotRepo, auditSvc, log)
	tallySvc := services.NewTallyService(repo.NewTallyRepository(db), log)
	reconcileSvc := services.NewReconcileService(catalogRepo, ballotRepo, auditSvc, log)
	authRepo := repo.NewAuthRepository(db)
	authSvc := services.NewAuthService(userRepo, authRepo, auditSvc,
		&MockVerifier{email: "test@example.com"}, testSecret, "client-id", log)

	router := handler.NewHandler(handler.Handlers{
		Election: handler.NewElectionHandler(electionSvc, eligibilitySvc, log),
		Vote:     handler.NewVoteHandler(voteSvc),
		Results:  handler.NewResultsHandler(tallySvc, log),
		Audit:    handler.NewAuditHandler(auditSvc),
		Auth:     handler.NewAuthHandler(authSvc, "https://example.com/redirect", "", http.SameSiteLaxMode),
		User:     handler.NewUserHandler(services.NewUserService(userRepo, authRepo)),
	}, []byte(testSecret), log)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:           db,
		Server:       server,
		Client:       server.Client(),
		Votes:        voteSvc,
		Ballots:      ballotRepo,
		ReconcileSvc: reconcileSvc,
		DBContainer:  dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// createUserAndToken stores a user with the given role and signs an access
// token for it.
func (app *TestApp) createUserAndToken(t *testing.T, role domain.Role) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", userID)
	name := fmt.Sprintf("User %s", userID)
	_, err := app.DB.Exec("INSERT INTO users (id, email, name, role) VALUES ($1, $2, $3, $4)", userID, email, name, string(role))
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"role":  string(role),
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return userID, signedToken
}

func (app *TestApp) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, app.Server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	return resp
}

// createElection creates an election open for the next hour with the given
// positions, each mapped to its candidate names.
func (app *TestApp) createElection(t *testing.T, adminToken string, positions map[string][]string) *domain.Election {
	t.Helper()

	var reqPositions []map[string]any
	for title, names := range positions {
		var candidates []map[string]any
		for _, name := range names {
			candidates = append(candidates, map[string]any{"name": name, "party": "Independent"})
		}
		reqPositions = append(reqPositions, map[string]any{"title": title, "candidates": candidates})
	}

	resp := app.request(t, http.MethodPost, "/api/elections", adminToken, map[string]any{
		"title":     "Integration Election",
		"starts_at": time.Now().Add(-time.Minute),
		"ends_at":   time.Now().Add(time.Hour),
		"active":    true,
		"positions": reqPositions,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var election domain.Election
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&election))
	return &election
}

func findPosition(election *domain.Election, title string) domain.Position {
	for _, p := range election.Positions {
		if p.Title == title {
			return p
		}
	}
	return domain.Position{}
}

func findCandidate(position domain.Position, name string) domain.Candidate {
	for _, c := range position.Candidates {
		if c.Name == name {
			return c
		}
	}
	return domain.Candidate{}
}
