//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adveron/messaging-backend/internal/models"
	"github.com/adveron/messaging-backend/internal/repository"
)

// DatabaseIntegrationTestSuite tests repository behavior against a real
// PostgreSQL instance, in particular the concurrency guarantees the in-memory
// SQLite suites cannot exercise faithfully.
type DatabaseIntegrationTestSuite struct {
	suite.Suite
	container        testcontainers.Container
	db               *gorm.DB
	participantRepo  repository.ParticipantRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
}

// SetupSuite starts PostgreSQL container and initializes database
func (s *DatabaseIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "messaging_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(s.T(), err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=messaging_test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	s.db = db

	err = db.AutoMigrate(&models.Participant{}, &models.Conversation{}, &models.Message{}, &models.Attachment{})
	require.NoError(s.T(), err)

	s.participantRepo = repository.NewParticipantRepository(db)
	s.conversationRepo = repository.NewConversationRepository(db)
	s.messageRepo = repository.NewMessageRepository(db)
}

// TearDownSuite terminates the container
func (s *DatabaseIntegrationTestSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

// SetupTest cleans all tables
func (s *DatabaseIntegrationTestSuite) SetupTest() {
	s.db.Exec("TRUNCATE attachments, messages, conversations, participants RESTART IDENTITY CASCADE")
}

// TestDatabaseIntegrationTestSuite runs the test suite
func TestDatabaseIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}

func (s *DatabaseIntegrationTestSuite) createPair() (*models.Participant, *models.Participant) {
	alice := &models.Participant{DisplayName: "Alice", Email: "alice@example.com", Role: "advertiser"}
	bob := &models.Participant{DisplayName: "Bob", Email: "bob@example.com", Role: "partner"}
	require.NoError(s.T(), s.participantRepo.Create(context.Background(), alice))
	require.NoError(s.T(), s.participantRepo.Create(context.Background(), bob))
	return alice, bob
}

// ==================== Pair Uniqueness ====================

func (s *DatabaseIntegrationTestSuite) TestPairUniqueness_EnforcedByIndex() {
	alice, bob := s.createPair()

	_, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
	require.NoError(s.T(), err)

	_, err = s.conversationRepo.Create(context.Background(), bob.ID, alice.ID)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)
}

func (s *DatabaseIntegrationTestSuite) TestPairUniqueness_ConcurrentCreates() {
	alice, bob := s.createPair()

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, conflicted int
	for err := range results {
		switch {
		case err == nil:
			created++
		case assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry):
			conflicted++
		}
	}

	// Exactly one winner, everyone else saw the conflict
	assert.Equal(s.T(), 1, created)
	assert.Equal(s.T(), workers-1, conflicted)

	var count int64
	s.db.Model(&models.Conversation{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

// ==================== Counter Atomicity ====================

func (s *DatabaseIntegrationTestSuite) TestIncrementUnread_ConcurrentIncrementsDoNotLoseUpdates() {
	alice, bob := s.createPair()
	conversation, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
	require.NoError(s.T(), err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.conversationRepo.IncrementUnread(context.Background(), conversation.ID, 1)
		}()
	}
	wg.Wait()

	result, err := s.conversationRepo.GetByID(context.Background(), conversation.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), workers, result.UnreadCount)
}

// ==================== MarkRead Under Concurrency ====================

func (s *DatabaseIntegrationTestSuite) TestMarkRead_ConcurrentCallsTransitionEachRowOnce() {
	alice, bob := s.createPair()
	conversation, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
	require.NoError(s.T(), err)

	const messageCount = 10
	for i := 0; i < messageCount; i++ {
		message := &models.Message{
			ConversationID: conversation.ID,
			SenderID:       alice.ID,
			RecipientID:    bob.ID,
			Content:        fmt.Sprintf("message %d", i),
		}
		require.NoError(s.T(), s.messageRepo.Create(context.Background(), message))
	}

	const workers = 4
	var wg sync.WaitGroup
	transitions := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.messageRepo.MarkRead(context.Background(), conversation.ID, bob.ID)
			if err == nil {
				transitions <- n
			}
		}()
	}
	wg.Wait()
	close(transitions)

	// Every message transitions exactly once across all callers
	var total int64
	for n := range transitions {
		total += n
	}
	assert.Equal(s.T(), int64(messageCount), total)

	count, err := s.messageRepo.CountUnread(context.Background(), conversation.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), count)
}

// ==================== Client Token Uniqueness ====================

func (s *DatabaseIntegrationTestSuite) TestClientToken_ConcurrentResendsCreateOneRow() {
	alice, bob := s.createPair()
	conversation, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
	require.NoError(s.T(), err)

	token := "tok-concurrent"
	const workers = 6
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			message := &models.Message{
				ConversationID: conversation.ID,
				SenderID:       alice.ID,
				RecipientID:    bob.ID,
				Content:        "resend",
				ClientToken:    &token,
			}
			results <- s.messageRepo.Create(context.Background(), message)
		}()
	}
	wg.Wait()
	close(results)

	var created int
	for err := range results {
		if err == nil {
			created++
		}
	}
	assert.Equal(s.T(), 1, created)

	var count int64
	s.db.Model(&models.Message{}).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

// ==================== Cascade Delete ====================

func (s *DatabaseIntegrationTestSuite) TestCascade_MessageDeleteRemovesAttachments() {
	alice, bob := s.createPair()
	conversation, err := s.conversationRepo.Create(context.Background(), alice.ID, bob.ID)
	require.NoError(s.T(), err)

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       alice.ID,
		RecipientID:    bob.ID,
		Content:        "with attachment",
	}
	attachments := []models.Attachment{
		{Filename: "doc.pdf", ContentType: "application/pdf", FilePath: "ab/doc.pdf", SizeBytes: 100},
	}
	require.NoError(s.T(), s.messageRepo.CreateWithAttachments(context.Background(), message, attachments))

	s.db.Delete(&models.Message{}, message.ID)

	var count int64
	s.db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}
